package catalog

import (
	"encoding/json"
	"strings"
)

// ColumnType is how a record value is stored in its table column.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnNumber
	ColumnFlag
	// ColumnList holds a JSON encoded array in a TEXT column.
	ColumnList
)

// Column maps record keys onto one table column. The first column of a kind is
// its primary key.
type Column struct {
	Name    string
	Keys    []string
	Type    ColumnType
	Default bool // for ColumnFlag
}

var kindColumns = map[Kind][]Column{
	KindSurfaceTypes: {
		{Name: "id", Keys: []string{"id"}},
		{Name: "name", Keys: []string{"name"}},
		{Name: "description", Keys: []string{"description"}},
		{Name: "base_price", Keys: []string{"basePrice", "base_price", "pricePerM2", "price_per_m2"}, Type: ColumnNumber},
		{Name: "price_ranges", Keys: []string{"priceRanges", "price_ranges"}, Type: ColumnList},
		{Name: "image", Keys: []string{"image", "imageUrl", "image_url"}},
		{Name: "properties", Keys: []string{"properties"}, Type: ColumnList},
		{Name: "is_active", Keys: []string{"isActive", "is_active", "active"}, Type: ColumnFlag, Default: true},
	},
	KindColors: {
		{Name: "id", Keys: []string{"id"}},
		{Name: "name", Keys: []string{"name"}},
		{Name: "ral_code", Keys: []string{"ralCode", "ral_code", "ral"}},
		{Name: "additional_price", Keys: []string{"additionalPrice", "additional_price"}, Type: ColumnNumber},
		{Name: "thumbnail", Keys: []string{"thumbnail", "thumbnailUrl", "thumbnail_url"}},
		{Name: "preview", Keys: []string{"preview", "previewUrl", "preview_url"}},
		{Name: "is_active", Keys: []string{"isActive", "is_active", "active"}, Type: ColumnFlag, Default: true},
	},
	KindServices: {
		{Name: "id", Keys: []string{"id"}},
		{Name: "name", Keys: []string{"name"}},
		{Name: "description", Keys: []string{"description"}},
		{Name: "category", Keys: []string{"category"}},
		{Name: "price_per_m2", Keys: []string{"pricePerM2", "price_per_m2"}, Type: ColumnNumber},
		{Name: "price_per_mb", Keys: []string{"pricePerMb", "price_per_mb"}, Type: ColumnNumber},
		{Name: "fixed_price", Keys: []string{"fixedPrice", "fixed_price"}, Type: ColumnNumber},
		{Name: "included_in_base", Keys: []string{"includedInBase", "included_in_base"}, Type: ColumnFlag},
		{Name: "is_mandatory", Keys: []string{"mandatory", "isMandatory", "is_mandatory"}, Type: ColumnFlag},
		{Name: "default_selected", Keys: []string{"defaultSelected", "default_selected"}, Type: ColumnFlag},
		{Name: "properties", Keys: []string{"properties"}, Type: ColumnList},
		{Name: "is_active", Keys: []string{"isActive", "is_active", "active"}, Type: ColumnFlag, Default: true},
	},
	KindRoomTypes: {
		{Name: "id", Keys: []string{"id"}},
		{Name: "name", Keys: []string{"name"}},
		{Name: "description", Keys: []string{"description"}},
		{Name: "icon", Keys: []string{"icon"}},
		{Name: "available", Keys: []string{"available", "isAvailable", "is_available"}, Type: ColumnFlag, Default: true},
		{Name: "is_active", Keys: []string{"isActive", "is_active", "active"}, Type: ColumnFlag, Default: true},
	},
	KindConcreteStates: {
		{Name: "id", Keys: []string{"id"}},
		{Name: "name", Keys: []string{"name"}},
		{Name: "description", Keys: []string{"description"}},
		{Name: "additional_price", Keys: []string{"additionalPrice", "additional_price"}, Type: ColumnNumber},
		{Name: "show_price", Keys: []string{"showPrice", "show_price"}, Type: ColumnFlag},
		{Name: "is_active", Keys: []string{"isActive", "is_active", "active"}, Type: ColumnFlag, Default: true},
	},
	KindSteps: {
		{Name: "step_id", Keys: []string{"stepId", "step_id", "id"}},
		{Name: "label", Keys: []string{"label", "name"}},
		{Name: "visible", Keys: []string{"visible", "isVisible", "is_visible"}, Type: ColumnFlag, Default: true},
		{Name: "can_be_hidden", Keys: []string{"canBeHidden", "can_be_hidden"}, Type: ColumnFlag},
		{Name: "is_active", Keys: []string{"isActive", "is_active", "active"}, Type: ColumnFlag, Default: true},
	},
}

// Columns lists the table columns of kind, key first.
func (k Kind) Columns() []Column {
	return kindColumns[k]
}

// Value extracts the column value from rec with the same coercions the
// normalizer applies on load.
func (c Column) Value(rec Record) any {
	v, ok := lookup(rec, c.Keys...)
	switch c.Type {
	case ColumnNumber:
		return number(v)
	case ColumnFlag:
		if !ok {
			return c.Default
		}
		return flag(v, c.Default)
	case ColumnList:
		return encodeList(v)
	default:
		return text(v)
	}
}

// Records returns the raw records of kind.
func (r Raw) Records(kind Kind) []Record {
	switch kind {
	case KindSurfaceTypes:
		return r.SurfaceTypes
	case KindColors:
		return r.Colors
	case KindServices:
		return r.Services
	case KindRoomTypes:
		return r.RoomTypes
	case KindConcreteStates:
		return r.ConcreteStates
	case KindSteps:
		return r.Steps
	}
	return nil
}

// SetRecords replaces the raw records of kind.
func (r *Raw) SetRecords(kind Kind, records []Record) {
	switch kind {
	case KindSurfaceTypes:
		r.SurfaceTypes = records
	case KindColors:
		r.Colors = records
	case KindServices:
		r.Services = records
	case KindRoomTypes:
		r.RoomTypes = records
	case KindConcreteStates:
		r.ConcreteStates = records
	case KindSteps:
		r.Steps = records
	}
}

func encodeList(v any) string {
	switch l := v.(type) {
	case nil:
		return "[]"
	case string:
		if s := strings.TrimSpace(l); s != "" {
			return s
		}
		return "[]"
	case []byte:
		return encodeList(string(l))
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}
