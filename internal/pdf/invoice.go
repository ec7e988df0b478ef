// Package pdf renders committed sales as PDF documents. All monetary fields
// arrive as already-rounded strings; this package formats and never computes.
package pdf

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
)

type Line struct {
	Code     string
	Name     string
	Qty      string
	Price    string
	Subtotal string
}

type SaleDocument struct {
	Number       string
	Date         string
	CustomerName string
	CustomerNIT  string
	CustomerDUI  string
	IssuedBy     string
	PaidWith     string
	Lines        []Line
	Subtotal     string
	TaxTotal     string
	Total        string
}

// Render produces the invoice PDF bytes.
func Render(doc SaleDocument) ([]byte, error) {
	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()

	p.SetFont("Arial", "B", 16)
	p.Cell(0, 10, "Factura "+doc.Number)
	p.Ln(12)

	p.SetFont("Arial", "", 10)
	p.Cell(0, 6, "Fecha: "+doc.Date)
	p.Ln(6)
	p.Cell(0, 6, "Cliente: "+doc.CustomerName)
	p.Ln(6)
	if doc.CustomerNIT != "" {
		p.Cell(0, 6, "NIT: "+doc.CustomerNIT)
		p.Ln(6)
	}
	if doc.CustomerDUI != "" {
		p.Cell(0, 6, "DUI: "+doc.CustomerDUI)
		p.Ln(6)
	}
	p.Cell(0, 6, "Atendido por: "+doc.IssuedBy)
	p.Ln(6)
	p.Cell(0, 6, "Forma de pago: "+doc.PaidWith)
	p.Ln(10)

	// line items table
	p.SetFont("Arial", "B", 10)
	p.CellFormat(30, 7, "Codigo", "1", 0, "L", false, 0, "")
	p.CellFormat(70, 7, "Producto", "1", 0, "L", false, 0, "")
	p.CellFormat(25, 7, "Cantidad", "1", 0, "R", false, 0, "")
	p.CellFormat(30, 7, "Precio", "1", 0, "R", false, 0, "")
	p.CellFormat(35, 7, "Subtotal", "1", 1, "R", false, 0, "")
	p.SetFont("Arial", "", 10)
	for _, ln := range doc.Lines {
		p.CellFormat(30, 6, ln.Code, "1", 0, "L", false, 0, "")
		p.CellFormat(70, 6, ln.Name, "1", 0, "L", false, 0, "")
		p.CellFormat(25, 6, ln.Qty, "1", 0, "R", false, 0, "")
		p.CellFormat(30, 6, ln.Price, "1", 0, "R", false, 0, "")
		p.CellFormat(35, 6, ln.Subtotal, "1", 1, "R", false, 0, "")
	}

	p.Ln(4)
	p.SetFont("Arial", "B", 10)
	p.CellFormat(155, 6, "Subtotal", "", 0, "R", false, 0, "")
	p.CellFormat(35, 6, doc.Subtotal, "", 1, "R", false, 0, "")
	p.CellFormat(155, 6, "IVA", "", 0, "R", false, 0, "")
	p.CellFormat(35, 6, doc.TaxTotal, "", 1, "R", false, 0, "")
	p.SetFont("Arial", "B", 12)
	p.CellFormat(155, 8, "Total", "", 0, "R", false, 0, "")
	p.CellFormat(35, 8, doc.Total, "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
