package core

import (
	"fmt"
	"regexp"
	"strings"
)

// childPatternRegex matches free-text children such as "Anna (5), Tom (7)".
var childPatternRegex = regexp.MustCompile(`([\p{L}\p{N}_]+) \((\d+)\)`)

// ChildrenKind identifies which shape a children value was decoded from.
type ChildrenKind int

const (
	ChildrenEmpty      ChildrenKind = iota // nil, "", "[]", or unreadable
	ChildrenStructured                     // list of pairs or list of mappings
	ChildrenPattern                        // free text "Name (age)" occurrences
)

func (k ChildrenKind) String() string {
	switch k {
	case ChildrenStructured:
		return "structured"
	case ChildrenPattern:
		return "pattern"
	default:
		return "empty"
	}
}

// ChildrenValue is a decoded children field tagged with the shape it came from.
type ChildrenValue struct {
	Kind     ChildrenKind
	Children []Child
}

// ClassifyChildren decodes a raw children value. It tries, in order, a
// structured list (already decoded, or text holding a Python-style literal),
// then the free-text pattern, and otherwise yields an empty list.
// It never fails.
func ClassifyChildren(v any) ChildrenValue {
	switch raw := v.(type) {
	case nil:
		return ChildrenValue{Kind: ChildrenEmpty, Children: []Child{}}
	case []Child:
		return ChildrenValue{Kind: ChildrenStructured, Children: raw}
	case []any:
		if children, ok := structuredChildren(raw); ok {
			return ChildrenValue{Kind: ChildrenStructured, Children: children}
		}
	case string:
		return classifyChildrenText(raw)
	}
	return ChildrenValue{Kind: ChildrenEmpty, Children: []Child{}}
}

// ParseChildren returns the decoded children of a raw value.
func ParseChildren(v any) []Child {
	return ClassifyChildren(v).Children
}

func classifyChildrenText(s string) ChildrenValue {
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		return ChildrenValue{Kind: ChildrenEmpty, Children: []Child{}}
	}

	if lit, err := ParseLiteral(s); err == nil {
		if items, ok := lit.([]any); ok {
			if children, ok := structuredChildren(items); ok {
				return ChildrenValue{Kind: ChildrenStructured, Children: children}
			}
		}
	}

	if children := patternChildren(s); len(children) > 0 {
		return ChildrenValue{Kind: ChildrenPattern, Children: children}
	}

	return ChildrenValue{Kind: ChildrenEmpty, Children: []Child{}}
}

// structuredChildren accepts a list whose elements are uniformly pair-like
// (tuple or two-element list) or uniformly mapping-like. Mixed lists and
// elements with a missing name or an unusable age are rejected.
func structuredChildren(items []any) ([]Child, bool) {
	children := make([]Child, 0, len(items))
	if len(items) == 0 {
		return children, true
	}

	_, mappings := items[0].(map[string]any)
	for _, item := range items {
		var (
			child Child
			ok    bool
		)
		if mappings {
			m, isMap := item.(map[string]any)
			if !isMap {
				return nil, false
			}
			child, ok = childFromMapping(m)
		} else {
			pair, isPair := asPair(item)
			if !isPair {
				return nil, false
			}
			child, ok = childFromPair(pair)
		}
		if !ok {
			return nil, false
		}
		children = append(children, child)
	}
	return children, true
}

func asPair(item any) ([]any, bool) {
	switch p := item.(type) {
	case Tuple:
		return p, len(p) == 2
	case []any:
		return p, len(p) == 2
	default:
		return nil, false
	}
}

func childFromPair(pair []any) (Child, bool) {
	return makeChild(pair[0], pair[1])
}

func childFromMapping(m map[string]any) (Child, bool) {
	name, ok := m["name"]
	if !ok {
		return Child{}, false
	}
	age, ok := m["age"]
	if !ok {
		return Child{}, false
	}
	return makeChild(name, age)
}

func makeChild(name, age any) (Child, bool) {
	var n string
	switch v := name.(type) {
	case string:
		n = strings.TrimSpace(v)
	case nil:
		return Child{}, false
	default:
		n = fmt.Sprint(v)
	}
	if n == "" {
		return Child{}, false
	}

	a, ok := AsInt(age)
	if !ok || a < 0 {
		return Child{}, false
	}
	return Child{Name: n, Age: a}, true
}

func patternChildren(s string) []Child {
	matches := childPatternRegex.FindAllStringSubmatch(s, -1)
	children := make([]Child, 0, len(matches))
	for _, m := range matches {
		age, ok := AsInt(m[2])
		if !ok {
			continue
		}
		children = append(children, Child{Name: m[1], Age: age})
	}
	return children
}

// NormalizeChildren returns a copy of records with every Children field
// decoded into []Child.
func NormalizeChildren(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.Children = ParseChildren(r.Children)
		out[i] = r
	}
	return out
}
