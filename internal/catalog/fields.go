package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is a loosely typed catalog row as delivered by a source.
type Record = map[string]any

// lookup returns the first present key. Sources use either camelCase or
// snake_case column names.
func lookup(rec Record, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// number coerces v to a finite float64; anything non-numeric becomes zero.
func number(v any) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if n {
			return 1
		}
		return 0
	case []byte:
		return number(string(n))
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// optionalNumber is number for nullable fields: nil or blank stays absent.
func optionalNumber(v any) *float64 {
	switch s := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(s) == "" {
			return nil
		}
	case []byte:
		if strings.TrimSpace(string(s)) == "" {
			return nil
		}
	}
	f := number(v)
	return &f
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case []byte:
		return strings.TrimSpace(string(s))
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// flag reads a boolean; def is returned when v is nil or unrecognized.
func flag(v any, def bool) bool {
	switch b := v.(type) {
	case nil:
		return def
	case bool:
		return b
	case int, int32, int64, float32, float64, json.Number:
		return number(b) != 0
	case []byte:
		return flag(string(b), def)
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "t", "1", "yes":
			return true
		case "false", "f", "0", "no":
			return false
		}
	}
	return def
}

// isActive passes records whose isActive is missing, truthy or unrecognized.
// Only a false value excludes: false, its textual forms and 0, the form a
// BOOLEAN column takes in SQLite.
func isActive(rec Record) bool {
	v, ok := lookup(rec, "isActive", "is_active", "active")
	if !ok {
		return true
	}
	return flag(v, true)
}

// decodeList accepts an already structured list or a JSON encoded string. Parse
// failures yield an empty list.
func decodeList(v any) []any {
	switch l := v.(type) {
	case nil:
		return nil
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out
	case []byte:
		return decodeList(string(l))
	case string:
		s := strings.TrimSpace(l)
		if s == "" {
			return nil
		}
		var out []any
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil
		}
		return out
	}
	return nil
}

func stringList(v any) []string {
	items := decodeList(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := text(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func priceRanges(v any) []PriceRange {
	items := decodeList(v)
	out := make([]PriceRange, 0, len(items))
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			continue
		}
		r := PriceRange{}
		if lo, ok := lookup(rec, "min", "minArea", "min_area"); ok {
			r.Min = number(lo)
		}
		if hi, ok := lookup(rec, "max", "maxArea", "max_area"); ok {
			r.Max = optionalNumber(hi)
		}
		if price, ok := lookup(rec, "price", "pricePerM2", "price_per_m2", "flatPrice", "flat_price"); ok {
			r.Price = number(price)
		}
		if fr, ok := lookup(rec, "isFlatRate", "is_flat_rate", "flatRate"); ok {
			r.IsFlatRate = flag(fr, false)
		}
		out = append(out, r)
	}
	return out
}

func numberField(rec Record, keys ...string) float64 {
	v, _ := lookup(rec, keys...)
	return number(v)
}

func textField(rec Record, keys ...string) string {
	v, _ := lookup(rec, keys...)
	return text(v)
}

func flagField(rec Record, def bool, keys ...string) bool {
	v, ok := lookup(rec, keys...)
	if !ok {
		return def
	}
	return flag(v, def)
}
