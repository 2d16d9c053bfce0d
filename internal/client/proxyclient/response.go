package proxyclient

import (
	"fmt"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

// Response is a decoded filter envelope.
type Response struct {
	OK      bool
	Message string
	Status  int
	Facets  domain.FacetSet
	Handles []string
}

func decodeResponse(body map[string]any, status int) *Response {
	resp := &Response{Status: status}

	if ok, present := body["ok"].(bool); present {
		resp.OK = ok
	} else {
		resp.OK = status >= 200 && status < 300
	}

	if !resp.OK {
		switch {
		case stringOf(body["message"]) != "":
			resp.Message = stringOf(body["message"])
		case stringOf(body["error"]) != "":
			resp.Message = stringOf(body["error"])
		default:
			resp.Message = fmt.Sprintf("HTTP %d", status)
		}
	}

	facets, _ := body["facets"].(map[string]any)
	resp.Facets = domain.FacetSet{
		Vendors: facetList(facets, body, "vendors"),
		Tags:    facetList(facets, body, "tags"),
		Types:   facetList(facets, body, "types"),
		Colors:  facetList(facets, body, "colors"),
		Sizes:   facetList(facets, body, "sizes"),
	}
	resp.Handles = extractHandles(body)

	return resp
}

// facetList prefers facets[key] and falls back to the top-level key.
func facetList(facets, body map[string]any, key string) []string {
	if v, ok := facets[key]; ok && v != nil {
		return stringList(v)
	}
	if v, ok := body[key]; ok && v != nil {
		return stringList(v)
	}
	return []string{}
}

// extractHandles reads handles from whichever shape the endpoint used:
// filteredHandles, handles, productHandles, a products array of strings,
// data.handles, or product objects carrying a handle.
func extractHandles(body map[string]any) []string {
	data, _ := body["data"].(map[string]any)

	for _, candidate := range []any{
		body["filteredHandles"],
		body["handles"],
		body["productHandles"],
		body["products"],
		data["handles"],
	} {
		if list, ok := candidate.([]any); ok && allStrings(list) {
			return stringList(list)
		}
	}

	productsOf := func(m map[string]any) any {
		if m == nil {
			return nil
		}
		if conn, ok := m["products"].(map[string]any); ok {
			return conn["nodes"]
		}
		return m["products"]
	}

	for _, candidate := range []any{productsOf(body), productsOf(data)} {
		nodes, ok := candidate.([]any)
		if !ok || len(nodes) == 0 {
			continue
		}
		var handles []string
		for _, n := range nodes {
			if obj, ok := n.(map[string]any); ok {
				if h := stringOf(obj["handle"]); h != "" {
					handles = append(handles, h)
				}
			}
		}
		if len(handles) > 0 {
			return handles
		}
	}

	return []string{}
}

func allStrings(list []any) bool {
	for _, v := range list {
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return true
}

func stringList(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}
