// Package snapshot renders a scraped catalog as a pg_dump-compatible SQL
// document: schema, COPY data blocks, then constraints and indexes.
//
// Text fields are expected to be COPY-escaped already. Rendering refuses a
// row that would break the format rather than escaping it a second time.
package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tonysxn/brobar.delivery/internal/models"
)

var (
	// ErrUnescapedField means a field still holds a COPY delimiter.
	ErrUnescapedField = errors.New("field contains an unescaped delimiter")
	// ErrUnknownCategory means a product references a category that is not
	// part of the snapshot.
	ErrUnknownCategory = errors.New("product references unknown category")
	// ErrNegativePrice violates products_price_check.
	ErrNegativePrice = errors.New("negative price")
)

// Options tune the parts of the document that are not catalog data.
type Options struct {
	// Owner is written into ALTER TABLE ... OWNER TO; empty skips those lines.
	Owner string
	// SchemaVersion is the single schema_migrations row, marked clean.
	SchemaVersion int
}

// CategoryRow returns the COPY fields of c in CategoryColumns order.
func CategoryRow(c models.Category) []string {
	return []string{
		c.ID.String(),
		c.Name,
		c.Slug,
		c.Icon,
		strconv.Itoa(c.Sort),
	}
}

// ProductRow returns the COPY fields of p in ProductColumns order.
func ProductRow(p models.Product) []string {
	return []string{
		p.ID.String(),
		p.ExternalID,
		p.Name,
		p.Slug,
		p.Description,
		p.Price.StringFixed(2),
		p.Weight.StringFixed(3),
		p.CategoryID.String(),
		strconv.Itoa(p.Sort),
		boolToken(p.Hidden),
		boolToken(p.Alcohol),
		boolToken(p.Sold),
		p.Image,
	}
}

func boolToken(b bool) string {
	if b {
		return "t"
	}
	return "f"
}

type block struct {
	table   string
	columns []string
	rows    [][]string
}

// Render writes the complete document to w. The catalog is validated
// before the first byte is written.
func Render(w io.Writer, catalog *models.Catalog, opts Options) error {
	blocks, err := buildBlocks(catalog, opts)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if err := preambleTmpl.Execute(bw, opts); err != nil {
		return fmt.Errorf("render schema: %w", err)
	}
	for _, b := range blocks {
		writeBlock(bw, b, ownerLabel(opts.Owner))
	}
	err = constraintsTmpl.Execute(bw, struct {
		OwnerLabel  string
		Constraints []constraint
	}{ownerLabel(opts.Owner), constraints})
	if err != nil {
		return fmt.Errorf("render constraints: %w", err)
	}
	return bw.Flush()
}

func buildBlocks(catalog *models.Catalog, opts Options) ([]block, error) {
	known := make(map[uuid.UUID]bool, len(catalog.Categories))

	cats := block{table: "categories", columns: CategoryColumns}
	for i, c := range catalog.Categories {
		row := CategoryRow(c)
		if err := checkRow(row); err != nil {
			return nil, fmt.Errorf("category %d (%s): %w", i, c.Slug, err)
		}
		if err := checkKeys(c.Slug, c.Icon); err != nil {
			return nil, fmt.Errorf("category %d (%s): %w", i, c.Slug, err)
		}
		known[c.ID] = true
		cats.rows = append(cats.rows, row)
	}

	products := block{table: "products", columns: ProductColumns}
	for i, p := range catalog.Products {
		if !known[p.CategoryID] {
			return nil, fmt.Errorf("product %d (%s): %w %s", i, p.Slug, ErrUnknownCategory, p.CategoryID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %d (%s): %w %s", i, p.Slug, ErrNegativePrice, p.Price)
		}
		row := ProductRow(p)
		if err := checkRow(row); err != nil {
			return nil, fmt.Errorf("product %d (%s): %w", i, p.Slug, err)
		}
		if err := checkKeys(p.Slug, p.Image); err != nil {
			return nil, fmt.Errorf("product %d (%s): %w", i, p.Slug, err)
		}
		products.rows = append(products.rows, row)
	}

	migrations := block{
		table:   "schema_migrations",
		columns: MigrationColumns,
		rows:    [][]string{{strconv.Itoa(opts.SchemaVersion), boolToken(false)}},
	}

	return []block{
		cats,
		{table: "product_variation_groups", columns: VariationGroupColumns},
		{table: "product_variations", columns: VariationColumns},
		products,
		migrations,
	}, nil
}

func checkRow(row []string) error {
	for i, f := range row {
		if strings.ContainsAny(f, "\t\n\r") {
			return fmt.Errorf("%w: field %d %q", ErrUnescapedField, i, f)
		}
	}
	return nil
}

// checkKeys rejects a backslash in slugs and filenames. COPY would read it
// as an escape, and the stored key would no longer match the image base
// name used by the update statements, which are written unescaped.
func checkKeys(keys ...string) error {
	for _, k := range keys {
		if strings.Contains(k, `\`) {
			return fmt.Errorf("%w: backslash in key %q", ErrUnescapedField, k)
		}
	}
	return nil
}

func writeBlock(w *bufio.Writer, b block, owner string) {
	fmt.Fprintf(w, "--\n-- Data for Name: %s; Type: TABLE DATA; Schema: public; Owner: %s\n--\n\n", b.table, owner)
	fmt.Fprintf(w, "COPY public.%s (%s) FROM stdin;\n", b.table, strings.Join(b.columns, ", "))
	for _, row := range b.rows {
		w.WriteString(strings.Join(row, "\t"))
		w.WriteByte('\n')
	}
	w.WriteString("\\.\n\n\n")
}

func ownerLabel(owner string) string {
	if owner == "" {
		return "-"
	}
	return owner
}

// WriteFile renders the document and replaces path with it in one rename,
// so a failed run never leaves a truncated snapshot behind.
func WriteFile(path string, catalog *models.Catalog, opts Options) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Render(tmp, catalog, opts); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
