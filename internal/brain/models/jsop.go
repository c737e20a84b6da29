// File: internal/brain/models/jsop.go
package models

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrUnknownJSOp is returned when rendering an operation whose kind is not one
// of the closed set below.
var ErrUnknownJSOp = errors.New("unknown js operation kind")

// ErrInvalidJSIdentifier is returned when a dataset flag or style property
// name is not a plain JS identifier.
var ErrInvalidJSIdentifier = errors.New("invalid js identifier")

var jsIdentifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// JSOpKind tags the variant held by a JSOp.
type JSOpKind string

const (
	JSOpHide     JSOpKind = "hide"
	JSOpAddClass JSOpKind = "add_class"
	JSOpSetStyle JSOpKind = "set_style"
)

// Default dataset markers, one per kind, so different operations on the same
// element never suppress each other.
const (
	FlagHidden  = "morphHidden"
	FlagApplied = "morphApplied"
	FlagStyled  = "morphStyled"
)

// StyleProp is a single inline style assignment (DOM property name, value).
type StyleProp struct {
	Name  string
	Value string
}

// JSOp is an abstract DOM mutation. Only the fields relevant to Kind are set.
// Every rendered operation checks its dataset marker before mutating and sets
// it afterwards, so applying the same snippet twice is a no-op.
type JSOp struct {
	Kind      JSOpKind
	Selector  string
	Flag      string
	ClassName string
	Style     []StyleProp
}

// Hide builds an operation that sets display:none on every match.
func Hide(selector string) JSOp {
	return JSOp{Kind: JSOpHide, Selector: selector, Flag: FlagHidden}
}

// AddClass builds an operation that adds className to every match.
func AddClass(selector, className string) JSOp {
	return JSOp{Kind: JSOpAddClass, Selector: selector, ClassName: className, Flag: FlagApplied}
}

// SetStyle builds an operation that assigns inline styles to every match.
// Properties are stored in key order so rendering is deterministic.
func SetStyle(selector string, styles map[string]string) JSOp {
	keys := make([]string, 0, len(styles))
	for k := range styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	props := make([]StyleProp, 0, len(keys))
	for _, k := range keys {
		props = append(props, StyleProp{Name: k, Value: styles[k]})
	}
	return JSOp{Kind: JSOpSetStyle, Selector: selector, Style: props, Flag: FlagStyled}
}

// Render emits the guarded DOM-mutation snippet for the operation.
func (op JSOp) Render() (string, error) {
	var body string
	switch op.Kind {
	case JSOpHide:
		body = "el.style.display='none';"
	case JSOpAddClass:
		body = fmt.Sprintf("el.classList.add('%s');", jsQuote(op.ClassName))
	case JSOpSetStyle:
		var sb strings.Builder
		for _, p := range op.Style {
			if !jsIdentifier.MatchString(p.Name) {
				return "", fmt.Errorf("%w: style property %q", ErrInvalidJSIdentifier, p.Name)
			}
			fmt.Fprintf(&sb, "el.style.%s='%s';", p.Name, jsQuote(p.Value))
		}
		body = sb.String()
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownJSOp, op.Kind)
	}

	flag := op.Flag
	if flag == "" {
		flag = defaultFlag(op.Kind)
	}
	if !jsIdentifier.MatchString(flag) {
		return "", fmt.Errorf("%w: dataset flag %q", ErrInvalidJSIdentifier, flag)
	}

	return fmt.Sprintf(
		"document.querySelectorAll('%s').forEach(el=>{\n  if(!el.dataset.%s){ %s el.dataset.%s='1'; }\n});",
		jsQuote(op.Selector), flag, body, flag,
	), nil
}

func defaultFlag(k JSOpKind) string {
	switch k {
	case JSOpHide:
		return FlagHidden
	case JSOpAddClass:
		return FlagApplied
	default:
		return FlagStyled
	}
}

var jsQuoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)

// jsQuote escapes s for use inside a single-quoted JS string literal.
func jsQuote(s string) string {
	return jsQuoter.Replace(s)
}
