package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/posadzki/internal/calculator"
	"github.com/Simplici0/posadzki/internal/pricing"
)

// Company is the static contact boilerplate printed on every quote.
type Company struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
	Address string `json:"address"`
}

// Document is the structured quote handed to renderers and delivery.
type Document struct {
	ID       string    `json:"id"`
	Number   string    `json:"number"`
	IssuedAt time.Time `json:"issuedAt"`

	RoomType      string  `json:"roomType"`
	ConcreteState string  `json:"concreteState,omitempty"`
	Mode          string  `json:"dimensionMode"`
	Length        float64 `json:"length,omitempty"`
	Width         float64 `json:"width,omitempty"`
	Area          float64 `json:"area"`
	Perimeter     float64 `json:"perimeter,omitempty"`

	Surface            string   `json:"surface"`
	SurfaceDescription string   `json:"surfaceDescription,omitempty"`
	SurfaceProperties  []string `json:"surfaceProperties,omitempty"`
	Color              string   `json:"color"`
	ColorCode          string   `json:"colorCode,omitempty"`

	Lines     []pricing.LineItem `json:"lines"`
	Included  []string           `json:"included,omitempty"`
	Breakdown pricing.Breakdown  `json:"breakdown"`
	Totals    pricing.Totals     `json:"totals"`

	Company Company `json:"company"`
}

// Build assembles the document for a snapshot. It reports false when the
// selection has no area, surface or color yet.
func Build(snap calculator.Snapshot, company Company, now time.Time) (Document, bool) {
	if !snap.Price.Ready || snap.SurfaceType == nil || snap.Color == nil {
		return Document{}, false
	}

	id := uuid.New()
	doc := Document{
		ID:        id.String(),
		Number:    NewNumber(id, now),
		IssuedAt:  now,
		Mode:      string(snap.Selection.Dimensions.Mode),
		Length:    snap.Dimensions.Length,
		Width:     snap.Dimensions.Width,
		Area:      snap.Dimensions.Area,
		Perimeter: snap.Perimeter,

		Surface:            snap.SurfaceType.Name,
		SurfaceDescription: snap.SurfaceType.Description,
		SurfaceProperties:  append([]string(nil), snap.SurfaceType.Properties...),
		Color:              snap.Color.Name,
		ColorCode:          snap.Color.RALCode,

		Lines:     append([]pricing.LineItem(nil), snap.Price.Lines...),
		Included:  append([]string(nil), snap.Price.Included...),
		Breakdown: snap.Price.Breakdown,
		Totals:    snap.Price.Totals,
		Company:   company,
	}
	if snap.RoomType != nil {
		doc.RoomType = snap.RoomType.Name
	}
	if snap.ConcreteState != nil && snap.Steps.Present(calculator.StepConcreteState) {
		doc.ConcreteState = snap.ConcreteState.Name
	}
	if doc.Mode != string(calculator.ModePaired) {
		doc.Length, doc.Width = 0, 0
	}
	return doc, true
}

// NewNumber formats a human readable quote number: WYC/<date>/<8 hex digits>.
func NewNumber(id uuid.UUID, now time.Time) string {
	return fmt.Sprintf("WYC/%s/%s", now.Format("20060102"), strings.ToUpper(id.String()[:8]))
}

// FileName turns the quote number into a download name.
func FileName(number, ext string) string {
	return "wycena-" + strings.ReplaceAll(number, "/", "-") + "." + ext
}

// DimensionSummary describes the floor size, e.g. "5 m × 4 m = 20 m²".
func (d Document) DimensionSummary() string {
	if d.Length > 0 && d.Width > 0 {
		return fmt.Sprintf("%s m × %s m = %s m²", FormatQuantity(d.Length), FormatQuantity(d.Width), FormatQuantity(d.Area))
	}
	return FormatQuantity(d.Area) + " m²"
}

// Specification is the surface and color line, e.g. "Gładka, Antracyt (RAL 7016)".
func (d Document) Specification() string {
	return d.Surface + ", " + colorText(d)
}

// FormatMoney renders an amount with two decimals, a space thousands separator
// and a decimal comma, e.g. "4 160,00 zł".
func FormatMoney(v float64) string {
	return formatDecimal(pricing.Round2(v), 2) + " zł"
}

// FormatQuantity prints a number with a decimal comma and no trailing zeros.
func FormatQuantity(v float64) string {
	s := formatDecimal(v, 2)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ",")
}

func formatDecimal(v float64, places int) string {
	neg := v < 0
	if neg {
		v = -v
	}
	raw := fmt.Sprintf("%.*f", places, v)
	intPart, frac, _ := strings.Cut(raw, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}
