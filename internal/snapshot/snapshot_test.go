package snapshot

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tonysxn/brobar.delivery/internal/models"
)

func testCatalog() *models.Catalog {
	burgers := models.Category{ID: uuid.New(), Name: "Бургери", Slug: "burgers", Sort: 0}
	drinks := models.Category{ID: uuid.New(), Name: "Напої", Slug: "drinks", Sort: 10}
	return &models.Catalog{
		Categories: []models.Category{burgers, drinks},
		Products: []models.Product{
			{
				ID:          uuid.New(),
				ExternalID:  "a1b2c3d4",
				Name:        "Чізбургер",
				Slug:        "cheeseburger",
				Description: `Булка\nсир`,
				Price:       decimal.RequireFromString("189"),
				Weight:      decimal.RequireFromString("0.35"),
				CategoryID:  burgers.ID,
				Image:       "cheeseburger.jpg",
			},
			{
				ID:         uuid.New(),
				ExternalID: "e5f6a7b8",
				Name:       "Cola",
				Slug:       "cola",
				Price:      decimal.RequireFromString("45.5"),
				CategoryID: drinks.ID,
				Alcohol:    true,
			},
		},
	}
}

func render(t *testing.T, catalog *models.Catalog, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(&buf, catalog, opts); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

// copyBlock returns the data rows between the COPY header of table and the
// terminator.
func copyBlock(t *testing.T, doc, table string) []string {
	t.Helper()
	header := "COPY public." + table + " ("
	start := strings.Index(doc, header)
	if start < 0 {
		t.Fatalf("no COPY block for %s", table)
	}
	body := doc[start:]
	body = body[strings.Index(body, "\n")+1:]
	end := strings.Index(body, "\\.\n")
	if end < 0 {
		t.Fatalf("COPY block for %s is not terminated", table)
	}
	body = body[:end]
	if body == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(body, "\n"), "\n")
}

func TestProductRow(t *testing.T) {
	c := testCatalog()
	row := ProductRow(c.Products[0])

	if len(row) != len(ProductColumns) {
		t.Fatalf("len(row) = %d, want %d", len(row), len(ProductColumns))
	}
	want := map[string]string{
		"external_id": "a1b2c3d4",
		"price":       "189.00",
		"weight":      "0.350",
		"hidden":      "f",
		"alcohol":     "f",
		"sold":        "f",
		"image":       "cheeseburger.jpg",
		"category_id": c.Categories[0].ID.String(),
	}
	for i, col := range ProductColumns {
		if w, ok := want[col]; ok && row[i] != w {
			t.Errorf("%s = %q, want %q", col, row[i], w)
		}
	}

	row = ProductRow(c.Products[1])
	if row[10] != "t" {
		t.Errorf("alcohol = %q, want t", row[10])
	}
	if row[6] != "0.000" {
		t.Errorf("weight = %q, want 0.000", row[6])
	}
	if row[12] != "" {
		t.Errorf("image = %q, want empty", row[12])
	}
}

func TestRender(t *testing.T) {
	c := testCatalog()
	doc := render(t, c, Options{Owner: "sanin", SchemaVersion: 3})

	t.Run("sections in order", func(t *testing.T) {
		markers := []string{
			"-- PostgreSQL database dump",
			"CREATE TABLE public.categories",
			"CREATE TABLE public.products",
			"COPY public.categories",
			"COPY public.product_variation_groups",
			"COPY public.product_variations",
			"COPY public.products",
			"COPY public.schema_migrations",
			"ADD CONSTRAINT categories_pkey",
			"ADD CONSTRAINT products_category_id_fkey",
			"-- PostgreSQL database dump complete",
		}
		last := -1
		for _, m := range markers {
			i := strings.Index(doc, m)
			if i < 0 {
				t.Fatalf("missing %q", m)
			}
			if i < last {
				t.Errorf("%q out of order", m)
			}
			last = i
		}
	})

	t.Run("categories", func(t *testing.T) {
		rows := copyBlock(t, doc, "categories")
		if len(rows) != 2 {
			t.Fatalf("got %d category rows, want 2", len(rows))
		}
		for i, want := range []string{"0", "10"} {
			fields := strings.Split(rows[i], "\t")
			if len(fields) != len(CategoryColumns) {
				t.Fatalf("row %d has %d fields", i, len(fields))
			}
			if fields[4] != want {
				t.Errorf("row %d sort = %q, want %q", i, fields[4], want)
			}
		}
	})

	t.Run("products", func(t *testing.T) {
		rows := copyBlock(t, doc, "products")
		if len(rows) != 2 {
			t.Fatalf("got %d product rows, want 2", len(rows))
		}
		for i, r := range rows {
			if n := len(strings.Split(r, "\t")); n != 13 {
				t.Errorf("row %d has %d fields, want 13", i, n)
			}
		}
		if !strings.Contains(rows[0], `Булка\nсир`) {
			t.Errorf("escaped description not preserved: %q", rows[0])
		}
	})

	t.Run("empty blocks", func(t *testing.T) {
		for _, table := range []string{"product_variation_groups", "product_variations"} {
			if rows := copyBlock(t, doc, table); rows != nil {
				t.Errorf("%s has rows %q", table, rows)
			}
		}
	})

	t.Run("schema migrations", func(t *testing.T) {
		rows := copyBlock(t, doc, "schema_migrations")
		if len(rows) != 1 || rows[0] != "3\tf" {
			t.Errorf("schema_migrations rows = %q", rows)
		}
	})

	t.Run("owner", func(t *testing.T) {
		if !strings.Contains(doc, "ALTER TABLE public.products OWNER TO sanin;") {
			t.Error("missing OWNER TO")
		}
		if !strings.Contains(doc, "Owner: sanin") {
			t.Error("missing owner label")
		}
	})
}

func TestRenderWithoutOwner(t *testing.T) {
	doc := render(t, testCatalog(), Options{SchemaVersion: 1})
	if strings.Contains(doc, "OWNER TO") {
		t.Error("OWNER TO rendered without owner")
	}
	if !strings.Contains(doc, "Owner: -") {
		t.Error("missing placeholder owner label")
	}
}

func TestRenderEmptyCatalog(t *testing.T) {
	doc := render(t, &models.Catalog{}, Options{SchemaVersion: 3})
	if rows := copyBlock(t, doc, "categories"); rows != nil {
		t.Errorf("categories rows = %q", rows)
	}
	if rows := copyBlock(t, doc, "products"); rows != nil {
		t.Errorf("products rows = %q", rows)
	}
}

func TestRenderRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *models.Catalog)
		want   error
	}{
		{
			name:   "raw newline in description",
			mutate: func(c *models.Catalog) { c.Products[0].Description = "line\nbreak" },
			want:   ErrUnescapedField,
		},
		{
			name:   "tab in name",
			mutate: func(c *models.Catalog) { c.Products[1].Name = "Co\tla" },
			want:   ErrUnescapedField,
		},
		{
			name:   "carriage return in category",
			mutate: func(c *models.Catalog) { c.Categories[0].Name = "Бур\rгери" },
			want:   ErrUnescapedField,
		},
		{
			name:   "backslash in product slug",
			mutate: func(c *models.Catalog) { c.Products[0].Slug = `cheese\burger` },
			want:   ErrUnescapedField,
		},
		{
			name:   "backslash in image filename",
			mutate: func(c *models.Catalog) { c.Products[0].Image = `cheese\burger.jpg` },
			want:   ErrUnescapedField,
		},
		{
			name:   "backslash in category slug",
			mutate: func(c *models.Catalog) { c.Categories[1].Slug = `dri\nks` },
			want:   ErrUnescapedField,
		},
		{
			name:   "unknown category",
			mutate: func(c *models.Catalog) { c.Products[0].CategoryID = uuid.New() },
			want:   ErrUnknownCategory,
		},
		{
			name:   "negative price",
			mutate: func(c *models.Catalog) { c.Products[0].Price = decimal.NewFromInt(-1) },
			want:   ErrNegativePrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCatalog()
			tt.mutate(c)
			var buf bytes.Buffer
			err := Render(&buf, c, Options{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Render() error = %v, want %v", err, tt.want)
			}
			if buf.Len() != 0 {
				t.Errorf("wrote %d bytes before failing", buf.Len())
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "backup_product_db.sql")

	if err := WriteFile(path, testCatalog(), Options{SchemaVersion: 3}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "-- PostgreSQL database dump complete\n--\n") {
		t.Error("snapshot is not complete")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestWriteFileKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup_product_db.sql")
	if err := os.WriteFile(path, []byte("previous"), 0644); err != nil {
		t.Fatal(err)
	}

	bad := testCatalog()
	bad.Products[0].CategoryID = uuid.New()
	if err := WriteFile(path, bad, Options{}); err == nil {
		t.Fatal("WriteFile() error = nil")
	}

	data, _ := os.ReadFile(path)
	if string(data) != "previous" {
		t.Errorf("snapshot overwritten: %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}
