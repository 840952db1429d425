package snapshot

import "text/template"

// Column order of the COPY blocks. Rows must match these exactly.
var (
	CategoryColumns = []string{"id", "name", "slug", "icon", "sort"}

	VariationGroupColumns = []string{"id", "product_id", "name", "external_id", "default_value", "show", "required"}

	VariationColumns = []string{"id", "group_id", "external_id", "default_value", "show", "name"}

	ProductColumns = []string{
		"id", "external_id", "name", "slug", "description", "price", "weight",
		"category_id", "sort", "hidden", "alcohol", "sold", "image",
	}

	MigrationColumns = []string{"version", "dirty"}
)

var preambleTmpl = template.Must(template.New("preamble").Parse(`--
-- PostgreSQL database dump
--

SET statement_timeout = 0;
SET lock_timeout = 0;
SET idle_in_transaction_session_timeout = 0;
SET client_encoding = 'UTF8';
SET standard_conforming_strings = on;
SELECT pg_catalog.set_config('search_path', '', false);
SET check_function_bodies = false;
SET xmloption = content;
SET client_min_messages = warning;
SET row_security = off;

CREATE EXTENSION IF NOT EXISTS "uuid-ossp" WITH SCHEMA public;

COMMENT ON EXTENSION "uuid-ossp" IS 'generate universally unique identifiers (UUIDs)';

SET default_tablespace = '';

SET default_table_access_method = heap;

DROP TABLE IF EXISTS public.products CASCADE;
DROP TABLE IF EXISTS public.product_variations CASCADE;
DROP TABLE IF EXISTS public.product_variation_groups CASCADE;
DROP TABLE IF EXISTS public.categories CASCADE;
DROP TABLE IF EXISTS public.schema_migrations CASCADE;

CREATE TABLE public.categories (
    id uuid DEFAULT public.uuid_generate_v4() NOT NULL,
    name character varying(255) NOT NULL,
    slug character varying(255) NOT NULL,
    icon character varying(255),
    sort integer DEFAULT 0
);
{{if .Owner}}
ALTER TABLE public.categories OWNER TO {{.Owner}};
{{end}}
CREATE TABLE public.product_variation_groups (
    id uuid DEFAULT gen_random_uuid() NOT NULL,
    product_id uuid NOT NULL,
    name character varying(255) NOT NULL,
    external_id character varying(100) NOT NULL,
    default_value integer,
    show boolean DEFAULT true,
    required boolean DEFAULT false
);
{{if .Owner}}
ALTER TABLE public.product_variation_groups OWNER TO {{.Owner}};
{{end}}
CREATE TABLE public.product_variations (
    id uuid DEFAULT gen_random_uuid() NOT NULL,
    group_id uuid NOT NULL,
    external_id character varying(100) NOT NULL,
    default_value integer,
    show boolean DEFAULT true,
    name character varying(255) NOT NULL
);
{{if .Owner}}
ALTER TABLE public.product_variations OWNER TO {{.Owner}};
{{end}}
CREATE TABLE public.products (
    id uuid DEFAULT public.uuid_generate_v4() NOT NULL,
    external_id character varying(100) NOT NULL,
    name character varying(255) NOT NULL,
    slug character varying(255) NOT NULL,
    description text,
    price numeric(10,2) NOT NULL,
    weight numeric(10,3) DEFAULT 0,
    category_id uuid,
    sort integer DEFAULT 0,
    hidden boolean DEFAULT false,
    alcohol boolean DEFAULT false,
    sold boolean DEFAULT false,
    image character varying(255) NOT NULL,
    CONSTRAINT products_price_check CHECK ((price >= (0)::numeric))
);
{{if .Owner}}
ALTER TABLE public.products OWNER TO {{.Owner}};
{{end}}
CREATE TABLE public.schema_migrations (
    version bigint NOT NULL,
    dirty boolean NOT NULL
);
{{if .Owner}}
ALTER TABLE public.schema_migrations OWNER TO {{.Owner}};
{{end}}
`))

var constraintsTmpl = template.Must(template.New("constraints").Parse(`{{range .Constraints}}
--
-- Name: {{.Name}}; Type: {{.Kind}}; Schema: public; Owner: {{$.OwnerLabel}}
--

{{.SQL}}

{{end}}
--
-- PostgreSQL database dump complete
--
`))

type constraint struct {
	Name string
	Kind string
	SQL  string
}

var constraints = []constraint{
	{"categories categories_pkey", "CONSTRAINT", "ALTER TABLE ONLY public.categories\n    ADD CONSTRAINT categories_pkey PRIMARY KEY (id);"},
	{"categories categories_slug_key", "CONSTRAINT", "ALTER TABLE ONLY public.categories\n    ADD CONSTRAINT categories_slug_key UNIQUE (slug);"},
	{"product_variation_groups product_variation_groups_pkey", "CONSTRAINT", "ALTER TABLE ONLY public.product_variation_groups\n    ADD CONSTRAINT product_variation_groups_pkey PRIMARY KEY (id);"},
	{"product_variations product_variations_pkey", "CONSTRAINT", "ALTER TABLE ONLY public.product_variations\n    ADD CONSTRAINT product_variations_pkey PRIMARY KEY (id);"},
	{"products products_external_id_key", "CONSTRAINT", "ALTER TABLE ONLY public.products\n    ADD CONSTRAINT products_external_id_key UNIQUE (external_id);"},
	{"products products_pkey", "CONSTRAINT", "ALTER TABLE ONLY public.products\n    ADD CONSTRAINT products_pkey PRIMARY KEY (id);"},
	{"products products_slug_key", "CONSTRAINT", "ALTER TABLE ONLY public.products\n    ADD CONSTRAINT products_slug_key UNIQUE (slug);"},
	{"schema_migrations schema_migrations_pkey", "CONSTRAINT", "ALTER TABLE ONLY public.schema_migrations\n    ADD CONSTRAINT schema_migrations_pkey PRIMARY KEY (version);"},
	{"product_variation_groups uq_product_variation_groups_product_external_id", "CONSTRAINT", "ALTER TABLE ONLY public.product_variation_groups\n    ADD CONSTRAINT uq_product_variation_groups_product_external_id UNIQUE (product_id, external_id);"},
	{"product_variations uq_product_variations_group_external_id", "CONSTRAINT", "ALTER TABLE ONLY public.product_variations\n    ADD CONSTRAINT uq_product_variations_group_external_id UNIQUE (group_id, external_id);"},
	{"idx_product_variation_groups_product_id", "INDEX", "CREATE INDEX idx_product_variation_groups_product_id ON public.product_variation_groups USING btree (product_id);"},
	{"idx_product_variations_group_id", "INDEX", "CREATE INDEX idx_product_variations_group_id ON public.product_variations USING btree (group_id);"},
	{"idx_products_category", "INDEX", "CREATE INDEX idx_products_category ON public.products USING btree (category_id);"},
	{"idx_products_slug", "INDEX", "CREATE INDEX idx_products_slug ON public.products USING btree (slug);"},
	{"product_variation_groups product_variation_groups_product_id_fkey", "FK CONSTRAINT", "ALTER TABLE ONLY public.product_variation_groups\n    ADD CONSTRAINT product_variation_groups_product_id_fkey FOREIGN KEY (product_id) REFERENCES public.products(id) ON DELETE CASCADE;"},
	{"product_variations product_variations_group_id_fkey", "FK CONSTRAINT", "ALTER TABLE ONLY public.product_variations\n    ADD CONSTRAINT product_variations_group_id_fkey FOREIGN KEY (group_id) REFERENCES public.product_variation_groups(id) ON DELETE CASCADE;"},
	{"products products_category_id_fkey", "FK CONSTRAINT", "ALTER TABLE ONLY public.products\n    ADD CONSTRAINT products_category_id_fkey FOREIGN KEY (category_id) REFERENCES public.categories(id) ON DELETE CASCADE;"},
}
