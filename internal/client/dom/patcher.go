package dom

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EmptyAttr marks the "no products" placeholder item.
const EmptyAttr = "data-facet-empty"

const emptyPlaceholderHTML = `<div style="padding:40px;text-align:center;width:100%;">` +
	`<strong>No products found</strong>` +
	`<div style="margin-top:8px;opacity:.75;">Try changing your filters.</div>` +
	`</div>`

var handlePattern = regexp.MustCompile(`/products/([^/?#]+)`)

// PatchResult summarises one Apply.
type PatchResult struct {
	GridFound  bool
	Visible    int
	Hidden     int
	EmptyShown bool
}

// Patcher shows and hides existing grid items. It never builds product markup.
type Patcher struct {
	doc   *Document
	guard *Guard
}

// NewPatcher creates a Patcher whose mutations are wrapped in guard.
func NewPatcher(doc *Document, guard *Guard) *Patcher {
	return &Patcher{doc: doc, guard: guard}
}

// Items returns grid list items that link to a product.
func Items(grid *html.Node) []*html.Node {
	return FindAll(grid, func(n *html.Node) bool {
		return n.Data == "li" && First(n, productLink) != nil
	})
}

// ItemHandle extracts the product handle from an item's first product link.
func ItemHandle(li *html.Node) (string, bool) {
	a := First(li, productLink)
	if a == nil {
		return "", false
	}
	href, _ := Attr(a, "href")
	m := handlePattern.FindStringSubmatch(href)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Apply makes exactly the items whose handle is in handles visible.
// With no active filters every item is shown regardless of handles.
func (p *Patcher) Apply(handles []string, active bool) PatchResult {
	grid := p.doc.Grid()
	if grid == nil {
		return PatchResult{}
	}

	res := PatchResult{GridFound: true}
	wanted := make(map[string]struct{}, len(handles))
	for _, h := range handles {
		wanted[h] = struct{}{}
	}

	p.guard.Run(func() {
		for _, li := range Items(grid) {
			show := !active
			if active {
				if h, ok := ItemHandle(li); ok {
					_, show = wanted[h]
				}
			}
			p.setVisible(li, show)
			if show {
				res.Visible++
			} else {
				res.Hidden++
			}
		}

		empty := First(grid, HasAttr(EmptyAttr))
		switch {
		case active && res.Visible == 0:
			if empty == nil {
				empty = p.newEmptyPlaceholder()
				p.doc.AppendChild(grid, empty)
			}
			p.doc.SetStyleProperty(empty, "display", "")
			res.EmptyShown = true
		case empty != nil:
			p.doc.SetStyleProperty(empty, "display", "none")
		}
	})

	return res
}

func (p *Patcher) setVisible(li *html.Node, visible bool) {
	if visible {
		p.doc.SetStyleProperty(li, "display", "")
		p.doc.SetAttr(li, "aria-hidden", "false")
		return
	}
	p.doc.SetStyleProperty(li, "display", "none")
	p.doc.SetAttr(li, "aria-hidden", "true")
}

func (p *Patcher) newEmptyPlaceholder() *html.Node {
	li := &html.Node{
		Type:     html.ElementNode,
		Data:     "li",
		DataAtom: atom.Li,
		Attr:     []html.Attribute{{Key: EmptyAttr, Val: "true"}},
	}
	nodes, err := html.ParseFragment(strings.NewReader(emptyPlaceholderHTML), li)
	if err == nil {
		for _, n := range nodes {
			li.AppendChild(n)
		}
	}
	return li
}

// IsVisible reports whether an item is currently shown.
func IsVisible(n *html.Node) bool {
	return StyleProperty(n, "display") != "none"
}
