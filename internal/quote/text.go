package quote

import (
	"fmt"
	"strings"
)

// RenderText renders the document as plain text, used for the email body and
// the admin text view.
func RenderText(doc Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Wycena nr %s\n", doc.Number)
	fmt.Fprintf(&b, "Data wystawienia: %s\n\n", doc.IssuedAt.Format("02.01.2006"))

	b.WriteString("Zakres prac:\n")
	if doc.RoomType != "" {
		fmt.Fprintf(&b, "- Pomieszczenie: %s\n", doc.RoomType)
	}
	if doc.ConcreteState != "" {
		fmt.Fprintf(&b, "- Stan podłoża: %s\n", doc.ConcreteState)
	}
	fmt.Fprintf(&b, "- Wymiary: %s\n", doc.DimensionSummary())
	if p := perimeterText(doc.Perimeter); p != "" {
		fmt.Fprintf(&b, "- Obwód: %s\n", p)
	}
	fmt.Fprintf(&b, "- Specyfikacja: %s\n\n", doc.Specification())

	b.WriteString("Pozycje:\n")
	for _, line := range doc.Lines {
		fmt.Fprintf(&b, "- %s: %s %s × %s = %s\n",
			line.Name, FormatQuantity(line.Quantity), line.Unit, FormatMoney(line.UnitPrice), FormatMoney(line.Total))
	}
	if len(doc.Included) > 0 {
		fmt.Fprintf(&b, "W cenie: %s\n", strings.Join(doc.Included, ", "))
	}

	fmt.Fprintf(&b, "\nRazem netto: %s\n", FormatMoney(doc.Totals.Total))
	fmt.Fprintf(&b, "Cena za m²: %s\n", FormatMoney(doc.Totals.PerArea))

	c := doc.Company
	if c.Name != "" {
		fmt.Fprintf(&b, "\n%s\n", c.Name)
	}
	for _, v := range []string{c.Address, c.Phone, c.Email, c.Website} {
		if v != "" {
			fmt.Fprintf(&b, "%s\n", v)
		}
	}
	return b.String()
}

// Summary is the short key/value digest sent alongside delivery and
// notifications.
func (d Document) Summary() map[string]string {
	return map[string]string{
		"number":        d.Number,
		"issuedAt":      d.IssuedAt.Format("2006-01-02"),
		"roomType":      d.RoomType,
		"dimensions":    d.DimensionSummary(),
		"specification": d.Specification(),
		"total":         FormatMoney(d.Totals.Total),
		"perArea":       FormatMoney(d.Totals.PerArea),
	}
}
