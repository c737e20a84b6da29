// File: internal/brain/htmlops/htmlops.go
package htmlops

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/microcosm-cc/bluemonday"
)

// Operation is the insertion position of an HTML op relative to its selector.
type Operation string

const (
	Prepend Operation = "prepend"
	Append  Operation = "append"
	Before  Operation = "before"
	After   Operation = "after"
	Replace Operation = "replace"
)

// Valid reports whether o is a known operation.
func (o Operation) Valid() bool {
	switch o {
	case Prepend, Append, Before, After, Replace:
		return true
	}
	return false
}

// Marker frames the serialized ops so the merge step treats them as a partial
// insertion into an existing ops array.
const Marker = "// ... existing code ..."

// Op is a single markup insertion against a selector.
type Op struct {
	ID        string    `json:"id"`
	Selector  string    `json:"selector"`
	Operation Operation `json:"operation"`
	HTML      string    `json:"html"`
}

// HTML is not escaped so the markup stays readable in the merged ops array.
var opsJSON = jsoniter.Config{EscapeHTML: false}.Froze()

var markupPolicy = newMarkupPolicy()

// newMarkupPolicy allows presentational markup with inline styling while
// stripping scripts, event handlers and unsafe URLs.
func newMarkupPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("div", "span", "p", "strong", "em", "b", "i", "small", "br", "section", "aside")
	p.AllowAttrs("class", "id", "style", "role", "aria-label").Globally()
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.AllowElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowElements("img")
	return p
}

// Sanitize cleans markup before it is carried by an op.
func Sanitize(markup string) string {
	return markupPolicy.Sanitize(markup)
}

// New builds an op with sanitized markup.
func New(id, selector string, op Operation, markup string) (Op, error) {
	if !op.Valid() {
		return Op{}, fmt.Errorf("invalid html operation %q", op)
	}
	if strings.TrimSpace(selector) == "" {
		return Op{}, fmt.Errorf("html op %q has no selector", id)
	}
	return Op{ID: id, Selector: selector, Operation: op, HTML: Sanitize(markup)}, nil
}

// Fragment serializes ops as comma-separated JSON objects wrapped between two
// Marker lines. No ops yields an empty string.
func Fragment(ops []Op) (string, error) {
	if len(ops) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		b, err := opsJSON.Marshal(op)
		if err != nil {
			return "", fmt.Errorf("failed to encode html op %q: %w", op.ID, err)
		}
		parts = append(parts, string(b))
	}
	return Marker + "\n" + strings.Join(parts, ",\n") + "\n" + Marker, nil
}

// ParseFragment recovers ops from a framed fragment. Marker lines are
// optional. An empty fragment yields no ops.
func ParseFragment(fragment string) ([]Op, error) {
	body := strings.TrimSpace(fragment)
	body = strings.TrimPrefix(body, Marker)
	body = strings.TrimSuffix(body, Marker)
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil
	}

	var ops []Op
	if err := opsJSON.UnmarshalFromString("["+body+"]", &ops); err != nil {
		return nil, fmt.Errorf("malformed html ops fragment: %w", err)
	}
	return ops, nil
}
