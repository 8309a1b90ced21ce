package quote

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Wycena"

// Label written left of the grand total.
const xlsxTotalLabel = "Razem netto"

// RenderXLSX renders the document as a single-sheet workbook. Spreadsheets keep
// the original Polish text.
func RenderXLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create bold style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	w := sheetWriter{f: f}
	w.set("A1", doc.Company.Name)
	w.style("A1", "A1", bold)
	w.set("A2", "Wycena nr")
	w.set("B2", doc.Number)
	w.set("A3", "Data wystawienia")
	w.set("B3", doc.IssuedAt.Format("2006-01-02"))
	w.set("A4", "Pomieszczenie")
	w.set("B4", doc.RoomType)
	w.set("A5", "Stan podłoża")
	w.set("B5", doc.ConcreteState)
	w.set("A6", "Wymiary")
	w.set("B6", doc.DimensionSummary())
	w.set("A7", "Powierzchnia [m²]")
	w.set("B7", doc.Area)
	w.set("A8", "Specyfikacja")
	w.set("B8", doc.Specification())
	w.style("A2", "A8", bold)

	const headerRow = 10
	for i, title := range []string{"Pozycja", "Ilość", "J.m.", "Cena jedn.", "Wartość"} {
		w.set(cell(i+1, headerRow), title)
	}
	w.style(cell(1, headerRow), cell(5, headerRow), header)

	row := headerRow + 1
	for _, line := range doc.Lines {
		w.set(cell(1, row), line.Name)
		w.set(cell(2, row), line.Quantity)
		w.set(cell(3, row), line.Unit)
		w.set(cell(4, row), line.UnitPrice)
		w.set(cell(5, row), line.Total)
		row++
	}
	w.style(cell(4, headerRow+1), cell(5, row), money)

	w.set(cell(4, row), xlsxTotalLabel)
	w.set(cell(5, row), doc.Totals.Total)
	w.style(cell(4, row), cell(4, row), bold)
	row++
	w.set(cell(4, row), "Cena za m²")
	w.set(cell(5, row), doc.Totals.PerArea)
	w.style(cell(5, row), cell(5, row), money)

	if len(doc.Included) > 0 {
		row += 2
		w.set(cell(1, row), "W cenie")
		for i, name := range doc.Included {
			w.set(cell(2, row+i), name)
		}
	}

	if w.err == nil {
		w.err = f.SetColWidth(xlsxSheet, "A", "A", 42)
	}
	if w.err == nil {
		w.err = f.SetColWidth(xlsxSheet, "B", "E", 16)
	}
	if w.err != nil {
		return nil, fmt.Errorf("fill workbook: %w", w.err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so cell writes can be chained.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) set(axis string, v any) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(xlsxSheet, axis, v)
}

func (w *sheetWriter) style(from, to string, style int) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(xlsxSheet, from, to, style)
}

func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(err)
	}
	return name
}
