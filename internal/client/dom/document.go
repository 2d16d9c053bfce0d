// Package dom patches a storefront collection page that was rendered by a
// third-party theme. The page is held as an x/net/html tree; every change
// goes through Document so observers see the same mutation stream a
// browser MutationObserver would.
//
// A Document is not safe for concurrent use. Callers serialize access,
// normally through the synchronizer's event loop.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MutationKind distinguishes structural from attribute changes.
type MutationKind int

const (
	ChildList MutationKind = iota
	Attributes
)

// Mutation describes one change to the tree.
type Mutation struct {
	Kind   MutationKind
	Target *html.Node
	// Attr is set for Attributes mutations.
	Attr string
}

// Document is a mutable HTML page.
type Document struct {
	root      *html.Node
	observers map[int]func(Mutation)
	nextID    int
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{root: root, observers: make(map[int]func(Mutation))}, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, ignoring errors.
func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *html.Node {
	return First(d.root, func(n *html.Node) bool { return n.DataAtom == atom.Html })
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Observe registers fn for every mutation and returns an unsubscribe func.
func (d *Document) Observe(fn func(Mutation)) (cancel func()) {
	id := d.nextID
	d.nextID++
	d.observers[id] = fn
	return func() { delete(d.observers, id) }
}

func (d *Document) notify(m Mutation) {
	for _, fn := range d.observers {
		fn(m)
	}
}

// SetAttr sets an attribute, notifying only when the value changes.
func (d *Document) SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			if a.Val == val {
				return
			}
			n.Attr[i].Val = val
			d.notify(Mutation{Kind: Attributes, Target: n, Attr: key})
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	d.notify(Mutation{Kind: Attributes, Target: n, Attr: key})
}

// RemoveAttr deletes an attribute if present.
func (d *Document) RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			d.notify(Mutation{Kind: Attributes, Target: n, Attr: key})
			return
		}
	}
}

// SetStyleProperty sets one inline style property; an empty value removes it.
func (d *Document) SetStyleProperty(n *html.Node, prop, value string) {
	style, _ := Attr(n, "style")
	updated := setStyleDecl(style, prop, value)
	if updated == "" {
		d.RemoveAttr(n, "style")
		return
	}
	d.SetAttr(n, "style", updated)
}

// AddClass adds class to n.
func (d *Document) AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	classes, _ := Attr(n, "class")
	d.SetAttr(n, "class", strings.TrimSpace(classes+" "+class))
}

// RemoveClass removes class from n.
func (d *Document) RemoveClass(n *html.Node, class string) {
	if !HasClass(n, class) {
		return
	}
	var kept []string
	classes, _ := Attr(n, "class")
	for _, c := range strings.Fields(classes) {
		if c != class {
			kept = append(kept, c)
		}
	}
	d.SetAttr(n, "class", strings.Join(kept, " "))
}

// AppendChild appends child to parent.
func (d *Document) AppendChild(parent, child *html.Node) {
	parent.AppendChild(child)
	d.notify(Mutation{Kind: ChildList, Target: parent})
}

// RemoveChild detaches child from parent.
func (d *Document) RemoveChild(parent, child *html.Node) {
	parent.RemoveChild(child)
	d.notify(Mutation{Kind: ChildList, Target: parent})
}

// SetInnerHTML replaces every child of parent with the parsed fragment.
// Themes do this when they re-render a section.
func (d *Document) SetInnerHTML(parent *html.Node, fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	for c := parent.FirstChild; c != nil; c = parent.FirstChild {
		parent.RemoveChild(c)
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	d.notify(Mutation{Kind: ChildList, Target: parent})
	return nil
}

// AppendHTML parses fragment in the context of parent and appends it.
// Infinite-scroll themes do this when loading the next page.
func (d *Document) AppendHTML(parent *html.Node, fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	d.notify(Mutation{Kind: ChildList, Target: parent})
	return nil
}

// Attr returns the value of a non-namespaced attribute.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether n carries class.
func HasClass(n *html.Node, class string) bool {
	classes, _ := Attr(n, "class")
	for _, c := range strings.Fields(classes) {
		if c == class {
			return true
		}
	}
	return false
}

// StyleProperty returns an inline style property value.
func StyleProperty(n *html.Node, prop string) string {
	style, _ := Attr(n, "style")
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), prop) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func setStyleDecl(style, prop, value string) string {
	var decls []string
	found := false
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if strings.EqualFold(k, prop) {
			found = true
			if value != "" {
				decls = append(decls, prop+": "+value)
			}
			continue
		}
		decls = append(decls, k+": "+strings.TrimSpace(v))
	}
	if !found && value != "" {
		decls = append(decls, prop+": "+value)
	}
	if len(decls) == 0 {
		return ""
	}
	return strings.Join(decls, "; ") + ";"
}

// Contains reports whether n is ancestor or equal to other.
func Contains(n, other *html.Node) bool {
	for c := other; c != nil; c = c.Parent {
		if c == n {
			return true
		}
	}
	return false
}

// First returns the first node in document order under root matching pred.
func First(root *html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	var traverse func(*html.Node) bool
	traverse = func(n *html.Node) bool {
		if n.Type == html.ElementNode && pred(n) {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if traverse(c) {
				return true
			}
		}
		return false
	}
	if root != nil {
		traverse(root)
	}
	return found
}

// FindAll returns every element under root (excluding root) matching pred.
func FindAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && pred(c) {
				out = append(out, c)
			}
			traverse(c)
		}
	}
	if root != nil {
		traverse(root)
	}
	return out
}

// Closest returns the nearest ancestor-or-self matching pred.
func Closest(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for c := n; c != nil; c = c.Parent {
		if c.Type == html.ElementNode && pred(c) {
			return c
		}
	}
	return nil
}
