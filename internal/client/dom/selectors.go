package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Selector matches a single element.
type Selector func(*html.Node) bool

// Tag matches elements by name.
func Tag(name string) Selector {
	return func(n *html.Node) bool { return n.Data == name }
}

// ID matches elements by id.
func ID(id string) Selector {
	return func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == id
	}
}

// Class matches elements carrying class.
func Class(class string) Selector {
	return func(n *html.Node) bool { return HasClass(n, class) }
}

// AttrEquals matches [key="val"].
func AttrEquals(key, val string) Selector {
	return func(n *html.Node) bool {
		v, ok := Attr(n, key)
		return ok && v == val
	}
}

// AttrContains matches [key*="sub"].
func AttrContains(key, sub string) Selector {
	return func(n *html.Node) bool {
		v, ok := Attr(n, key)
		return ok && strings.Contains(v, sub)
	}
}

// HasAttr matches [key].
func HasAttr(key string) Selector {
	return func(n *html.Node) bool {
		_, ok := Attr(n, key)
		return ok
	}
}

// And matches when every selector matches.
func And(sels ...Selector) Selector {
	return func(n *html.Node) bool {
		for _, s := range sels {
			if !s(n) {
				return false
			}
		}
		return true
	}
}

// gridSelectors are tried in order; the first hit is the product grid.
var gridSelectors = []Selector{
	And(Tag("ul"), AttrEquals("data-testid", "product-grid")),
	ID("product-grid"),
	And(Tag("ul"), Class("product-grid")),
	Class("product-grid"),
	And(Tag("ul"), Class("grid")),
}

// productLink matches a[href*="/products/"].
var productLink = And(Tag("a"), AttrContains("href", "/products/"))

// resultsList matches the theme's results container.
var resultsList = Tag("results-list")

// Grid locates the product grid, or nil when the theme has not rendered one.
func (d *Document) Grid() *html.Node {
	for _, sel := range gridSelectors {
		if n := First(d.root, sel); n != nil {
			return n
		}
	}
	return nil
}

// ObservedScope is the subtree whose structural changes mean the theme
// re-rendered results: the results-list container when present, otherwise
// the grid's parent, otherwise the body.
func (d *Document) ObservedScope() *html.Node {
	if grid := d.Grid(); grid != nil {
		if rl := Closest(grid, resultsList); rl != nil {
			return rl
		}
		if grid.Parent != nil {
			return grid.Parent
		}
		return grid
	}
	if rl := First(d.root, resultsList); rl != nil {
		return rl
	}
	return First(d.root, Tag("body"))
}
