package filter

// Package filter is the core of the discovery flow: it turns free-form user
// text (or a preset key) into a structured predicate, evaluates predicates
// against token records and renders them back for display. Everything in this
// package is pure and stateless; it is safe to call from any number of
// in-flight chat sessions at once.

// Attribute is a numeric token property a filter can constrain.
type Attribute uint8

const (
	AttrMarketCap Attribute = iota
	AttrVolume24h
	AttrHolders
	AttrLiquidity
)

// attributeOrder fixes the rendering order of clauses.
var attributeOrder = [...]Attribute{AttrMarketCap, AttrVolume24h, AttrHolders, AttrLiquidity}

func (a Attribute) String() string {
	switch a {
	case AttrMarketCap:
		return "market_cap"
	case AttrVolume24h:
		return "volume_24h"
	case AttrHolders:
		return "holders"
	case AttrLiquidity:
		return "liquidity"
	}
	return "unknown"
}

// Bound tells whether a threshold is a lower or an upper limit.
type Bound uint8

const (
	Min Bound = iota
	Max
)

func (b Bound) String() string {
	if b == Max {
		return "max"
	}
	return "min"
}

type boundKey struct {
	attr  Attribute
	bound Bound
}

// Predicate is a sparse set of numeric bounds over token attributes.
// The zero value is the empty predicate, which matches every record.
// A predicate is immutable once handed out; With returns a modified copy.
// Contradictory bounds (min above max) are allowed and simply match nothing.
type Predicate struct {
	bounds map[boundKey]float64
}

// With returns a copy of p with the given threshold set.
func (p Predicate) With(attr Attribute, bound Bound, threshold float64) Predicate {
	next := make(map[boundKey]float64, len(p.bounds)+1)
	for k, v := range p.bounds {
		next[k] = v
	}
	next[boundKey{attr, bound}] = threshold
	return Predicate{bounds: next}
}

// Without returns a copy of p with both bounds for attr removed.
func (p Predicate) Without(attr Attribute) Predicate {
	if len(p.bounds) == 0 {
		return Predicate{}
	}
	next := make(map[boundKey]float64, len(p.bounds))
	for k, v := range p.bounds {
		if k.attr == attr {
			continue
		}
		next[k] = v
	}
	return Predicate{bounds: next}
}

// Threshold reports the threshold for (attr, bound) and whether it is set.
func (p Predicate) Threshold(attr Attribute, bound Bound) (float64, bool) {
	v, ok := p.bounds[boundKey{attr, bound}]
	return v, ok
}

// Empty reports whether the predicate constrains nothing.
func (p Predicate) Empty() bool {
	return len(p.bounds) == 0
}

// Len returns the number of bounds set.
func (p Predicate) Len() int {
	return len(p.bounds)
}

// Equal reports whether two predicates carry the same bounds.
func (p Predicate) Equal(other Predicate) bool {
	if len(p.bounds) != len(other.bounds) {
		return false
	}
	for k, v := range p.bounds {
		ov, ok := other.bounds[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}
