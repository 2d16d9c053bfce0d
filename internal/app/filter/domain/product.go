package domain

import "strings"

// Option is a product-level variant axis such as Color or Size.
type Option struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// ProductRecord is a read-only catalog product fetched for a single request.
type ProductRecord struct {
	Handle      string   `json:"handle"`
	Vendor      string   `json:"vendor"`
	ProductType string   `json:"productType"`
	Tags        []string `json:"tags"`
	Options     []Option `json:"options"`
}

// OptionAliases groups option names that denote the same axis.
type OptionAliases []string

var (
	// ColorAliases are the option names treated as color.
	ColorAliases = OptionAliases{"color", "colour"}
	// SizeAliases are the option names treated as size.
	SizeAliases = OptionAliases{"size"}
)

// Matches reports whether the option name belongs to the alias set.
func (a OptionAliases) Matches(name string) bool {
	n := NormalizeValue(name)
	for _, alias := range a {
		if n == alias {
			return true
		}
	}
	return false
}

// NormalizeValue trims and lower-cases a name or value for comparison.
func NormalizeValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// HasOptionValue reports whether any option named by aliases carries a value
// equal to wanted after normalization. Substrings never match.
func (p *ProductRecord) HasOptionValue(aliases OptionAliases, wanted string) bool {
	w := NormalizeValue(wanted)
	for _, opt := range p.Options {
		if !aliases.Matches(opt.Name) {
			continue
		}
		for _, v := range opt.Values {
			if NormalizeValue(v) == w {
				return true
			}
		}
	}
	return false
}
