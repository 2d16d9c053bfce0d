package filterstate

import (
	"strings"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

// Select models a dropdown whose first option is "all" (the empty value).
type Select struct {
	value   string
	options []string
}

// Value returns the current selection.
func (s *Select) Value() string { return s.value }

// SetValue selects v. Values not yet offered are kept so that state read
// from the URL survives until the first facet list arrives.
func (s *Select) SetValue(v string) { s.value = strings.TrimSpace(v) }

// Options returns the offered values, excluding the leading "all".
func (s *Select) Options() []string { return append([]string(nil), s.options...) }

// SetOptions replaces the offered values. Values are trimmed, blanks and
// duplicates dropped. The selection is kept when still offered, otherwise
// reset to "all".
func (s *Select) SetOptions(values []string) {
	seen := map[string]struct{}{"": {}}
	opts := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		opts = append(opts, v)
	}
	s.options = opts

	if _, ok := seen[s.value]; !ok {
		s.value = ""
	}
}

// Controls is the full set of filter inputs.
type Controls struct {
	Vendor Select
	Color  Select
	Size   Select
	Tag    Select
	Type   Select
	Min    string
	Max    string
}

// State reads the controls.
func (c *Controls) State() ClientFilterState {
	return ClientFilterState{
		Vendor: c.Vendor.Value(),
		Color:  c.Color.Value(),
		Size:   c.Size.Value(),
		Tag:    c.Tag.Value(),
		Type:   c.Type.Value(),
		Min:    strings.TrimSpace(c.Min),
		Max:    strings.TrimSpace(c.Max),
	}
}

// SetState writes every control.
func (c *Controls) SetState(s ClientFilterState) {
	c.Vendor.SetValue(s.Vendor)
	c.Color.SetValue(s.Color)
	c.Size.SetValue(s.Size)
	c.Tag.SetValue(s.Tag)
	c.Type.SetValue(s.Type)
	c.Min = s.Min
	c.Max = s.Max
}

// Hydrate repopulates the dropdowns from a facet set.
func (c *Controls) Hydrate(f domain.FacetSet) {
	c.Vendor.SetOptions(f.Vendors)
	c.Color.SetOptions(f.Colors)
	c.Size.SetOptions(f.Sizes)
	c.Tag.SetOptions(f.Tags)
	c.Type.SetOptions(f.Types)
}

// Field names accepted by Set.
const (
	FieldVendor = "vendor"
	FieldColor  = "color"
	FieldSize   = "size"
	FieldTag    = "tag"
	FieldType   = "type"
	FieldMin    = "min"
	FieldMax    = "max"
)

// Set updates one control by field name and reports whether the name is known.
func (c *Controls) Set(field, value string) bool {
	switch field {
	case FieldVendor:
		c.Vendor.SetValue(value)
	case FieldColor:
		c.Color.SetValue(value)
	case FieldSize:
		c.Size.SetValue(value)
	case FieldTag:
		c.Tag.SetValue(value)
	case FieldType:
		c.Type.SetValue(value)
	case FieldMin:
		c.Min = value
	case FieldMax:
		c.Max = value
	default:
		return false
	}
	return true
}
