package filter

import (
	"strconv"
	"strings"
)

// The user-facing grammars cannot express every predicate (one bound kind per
// attribute), so persistence uses its own stable encoding instead of the raw
// input text: "attr.bound=value" clauses joined with ";", in the fixed
// attribute order, min before max.

// EncodePredicate renders p in the persistence form. The empty predicate
// encodes as the empty string.
func EncodePredicate(p Predicate) string {
	if p.Empty() {
		return ""
	}

	parts := make([]string, 0, p.Len())
	for _, attr := range attributeOrder {
		for _, bound := range [...]Bound{Min, Max} {
			v, ok := p.Threshold(attr, bound)
			if !ok {
				continue
			}
			parts = append(parts, attr.String()+"."+bound.String()+"="+strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return strings.Join(parts, ";")
}

// DecodePredicate reverses EncodePredicate. Malformed clauses are skipped,
// matching the parser's degrade-to-empty stance.
func DecodePredicate(s string) Predicate {
	p := Predicate{}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, rawValue, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		attrName, boundName, ok := strings.Cut(key, ".")
		if !ok {
			continue
		}

		attr, ok := attributeFromString(attrName)
		if !ok {
			continue
		}
		bound, ok := boundFromString(boundName)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(rawValue, 64)
		if err != nil {
			continue
		}

		p = p.With(attr, bound, v)
	}
	return p
}

func attributeFromString(name string) (Attribute, bool) {
	for _, attr := range attributeOrder {
		if attr.String() == name {
			return attr, true
		}
	}
	return 0, false
}

func boundFromString(name string) (Bound, bool) {
	switch name {
	case "min":
		return Min, true
	case "max":
		return Max, true
	}
	return 0, false
}
