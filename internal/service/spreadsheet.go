package service

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const productsSheet = "Products"

var productColumns = []string{
	"category_id", "slug", "name", "description", "original_price", "price",
	"stock_quantity", "is_featured", "is_new", "is_active", "image_url",
}

// ImportSpreadsheet reads products from the first sheet of an xlsx workbook.
// The first row is a header naming the columns; column order is free.
func (s *CatalogService) ImportSpreadsheet(ctx context.Context, r io.ReaderAt, size int64) (*transport.BulkResponse, error) {
	file, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, invalid("cannot parse xlsx file")
	}
	if len(file.Sheets) == 0 || file.Sheets[0].MaxRow < 2 {
		return nil, invalid("xlsx file is empty or missing header row")
	}

	sheet := file.Sheets[0]
	header := map[string]int{}
	for i, cell := range sheet.Rows[0].Cells {
		header[strings.ToLower(strings.TrimSpace(cell.String()))] = i
	}
	for _, col := range []string{"name", "slug", "price", "category_id"} {
		if _, ok := header[col]; !ok {
			return nil, invalid("xlsx header is missing column %q", col)
		}
	}

	rows := make([]bulkRow, 0, sheet.MaxRow-1)
	for i := 1; i < sheet.MaxRow && i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		if row == nil || blankRow(row) {
			continue
		}
		parsed := parseProductRow(header, row)
		parsed.sheetRow = i + 1
		rows = append(rows, parsed)
	}
	if len(rows) == 0 {
		return nil, invalid("xlsx file has no product rows")
	}

	return s.runBulk(ctx, rows), nil
}

func blankRow(row *xlsx.Row) bool {
	for _, c := range row.Cells {
		if strings.TrimSpace(c.String()) != "" {
			return false
		}
	}
	return true
}

func parseProductRow(header map[string]int, row *xlsx.Row) bulkRow {
	get := func(col string) string {
		idx, ok := header[col]
		if !ok || idx >= len(row.Cells) {
			return ""
		}
		return strings.TrimSpace(row.Cells[idx].String())
	}

	in := transport.ProductInput{
		Slug:        get("slug"),
		Name:        get("name"),
		Description: get("description"),
		ImageURL:    get("image_url"),
	}

	var err error
	fail := func(col string, e error) {
		if e != nil && err == nil {
			err = invalid("invalid %s", col)
		}
	}

	if v := get("category_id"); v != "" {
		id, e := strconv.ParseUint(v, 10, 64)
		fail("category_id", e)
		in.CategoryID = uint(id)
	}
	if v := get("price"); v != "" {
		f, e := strconv.ParseFloat(v, 64)
		fail("price", e)
		in.Price = f
	}
	if v := get("original_price"); v != "" {
		f, e := strconv.ParseFloat(v, 64)
		fail("original_price", e)
		in.OriginalPrice = f
	}
	if v := get("stock_quantity"); v != "" {
		n, e := strconv.Atoi(v)
		fail("stock_quantity", e)
		in.StockQuantity = n
	}
	if v := get("is_featured"); v != "" {
		b, e := strconv.ParseBool(v)
		fail("is_featured", e)
		in.IsFeatured = b
	}
	if v := get("is_new"); v != "" {
		b, e := strconv.ParseBool(v)
		fail("is_new", e)
		in.IsNew = b
	}
	if v := get("is_active"); v != "" {
		b, e := strconv.ParseBool(v)
		fail("is_active", e)
		in.IsActive = &b
	}

	return bulkRow{input: in, err: err}
}

// ExportSpreadsheet writes every product as an xlsx workbook with the same
// columns ImportSpreadsheet accepts.
func (s *CatalogService) ExportSpreadsheet(ctx context.Context, w io.Writer) error {
	prods, err := s.Repo.AllProducts(ctx)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(productsSheet)
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range append([]string{"id"}, productColumns...) {
		headerRow.AddCell().SetString(h)
	}
	for _, p := range prods {
		row := sheet.AddRow()
		for _, v := range productRecord(p) {
			row.AddCell().SetString(v)
		}
	}

	return file.Write(w)
}

func productRecord(p models.Product) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		strconv.FormatUint(uint64(p.ID), 10),
		strconv.FormatUint(uint64(p.CategoryID), 10),
		p.Slug,
		p.Name,
		p.Description,
		f(p.OriginalPrice),
		f(p.Price),
		strconv.Itoa(p.StockQuantity),
		strconv.FormatBool(p.IsFeatured),
		strconv.FormatBool(p.IsNew),
		strconv.FormatBool(p.IsActive),
		p.ImageURL,
	}
}
