package searchquery

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedQuery is returned by Tokenize for input it cannot split.
var ErrMalformedQuery = errors.New("malformed search query")

// Term is one field:value pair of a tokenized query.
type Term struct {
	Field string
	Value string
}

// Tokenize splits a query produced by Builder back into terms, unquoting
// quoted values.
func Tokenize(query string) ([]Term, error) {
	var terms []Term
	i := 0
	n := len(query)

	for i < n {
		for i < n && query[i] == ' ' {
			i++
		}
		if i >= n {
			break
		}

		colon := strings.IndexByte(query[i:], ':')
		if colon <= 0 {
			return nil, fmt.Errorf("%w: expected field at offset %d", ErrMalformedQuery, i)
		}
		field := query[i : i+colon]
		if strings.ContainsAny(field, " \"") {
			return nil, fmt.Errorf("%w: invalid field %q", ErrMalformedQuery, field)
		}
		i += colon + 1

		var value strings.Builder
		if i < n && query[i] == '"' {
			i++
			closed := false
			for i < n {
				c := query[i]
				if c == '\\' && i+1 < n {
					value.WriteByte(query[i+1])
					i += 2
					continue
				}
				if c == '"' {
					closed = true
					i++
					break
				}
				value.WriteByte(c)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("%w: unterminated quote in %q term", ErrMalformedQuery, field)
			}
			if i < n && query[i] != ' ' {
				return nil, fmt.Errorf("%w: trailing input after quoted %q value", ErrMalformedQuery, field)
			}
		} else {
			end := strings.IndexByte(query[i:], ' ')
			if end < 0 {
				end = n - i
			}
			value.WriteString(query[i : i+end])
			i += end
		}

		terms = append(terms, Term{Field: field, Value: value.String()})
	}

	return terms, nil
}
