package quote

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 15.0
	lineHeight = 6.0
)

var tableColumns = []struct {
	title string
	width float64
	align string
}{
	{"Pozycja", 78, "L"},
	{"Ilość", 22, "R"},
	{"J.m.", 14, "C"},
	{"Cena jedn.", 32, "R"},
	{"Wartość", 34, "R"},
}

// RenderPDF renders the document as an A4 PDF. All text is transliterated
// because the core PDF fonts only cover Latin-1.
func RenderPDF(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(Transliterate("Wycena "+doc.Number), false)
	pdf.SetAuthor(Transliterate(doc.Company.Name), false)
	pdf.SetCreationDate(doc.IssuedAt)

	tr := Transliterate

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		footer := fmt.Sprintf("%s | %s | %s", doc.Company.Phone, doc.Company.Email, doc.Company.Website)
		pdf.CellFormat(0, 5, tr(footer), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, tr(doc.Company.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if doc.Company.Address != "" {
		pdf.CellFormat(0, 5, tr(doc.Company.Address), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr("Wycena nr "+doc.Number), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, lineHeight, tr("Data wystawienia: "+doc.IssuedAt.Format("02.01.2006")), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	summary := [][2]string{
		{"Pomieszczenie", doc.RoomType},
		{"Stan podłoża", doc.ConcreteState},
		{"Wymiary", doc.DimensionSummary()},
		{"Obwód", perimeterText(doc.Perimeter)},
		{"Powierzchnia", doc.Surface},
		{"Kolor", colorText(doc)},
	}
	for _, row := range summary {
		if row[1] == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, lineHeight, tr(row[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, lineHeight, tr(row[1]), "", 1, "L", false, 0, "")
	}
	if doc.SurfaceDescription != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, tr(doc.SurfaceDescription), "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range tableColumns {
		pdf.CellFormat(col.width, 7, tr(col.title), "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range doc.Lines {
		cells := []string{
			line.Name,
			FormatQuantity(line.Quantity),
			line.Unit,
			FormatMoney(line.UnitPrice),
			FormatMoney(line.Total),
		}
		for i, col := range tableColumns {
			pdf.CellFormat(col.width, lineHeight, tr(cells[i]), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	labelWidth := tableColumns[0].width + tableColumns[1].width + tableColumns[2].width + tableColumns[3].width
	pdf.CellFormat(labelWidth, 7, tr("Razem netto"), "1", 0, "R", true, 0, "")
	pdf.CellFormat(tableColumns[4].width, 7, tr(FormatMoney(doc.Totals.Total)), "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(labelWidth, lineHeight, tr("Cena za m²"), "", 0, "R", false, 0, "")
	pdf.CellFormat(tableColumns[4].width, lineHeight, tr(FormatMoney(doc.Totals.PerArea)), "", 1, "R", false, 0, "")

	if len(doc.Included) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr("W cenie: "+strings.Join(doc.Included, ", ")), "", "L", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.MultiCell(0, 4, tr("Wycena ma charakter orientacyjny i nie stanowi oferty w rozumieniu Kodeksu cywilnego. "+
		"Ostateczna cena zostanie ustalona po oględzinach podłoża."), "", "L", false)

	if pdf.Err() {
		return nil, fmt.Errorf("build pdf: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func perimeterText(v float64) string {
	if v <= 0 {
		return ""
	}
	return FormatQuantity(v) + " mb"
}

func colorText(doc Document) string {
	if doc.ColorCode != "" && doc.ColorCode != doc.Color {
		return doc.Color + " (" + doc.ColorCode + ")"
	}
	return doc.Color
}
