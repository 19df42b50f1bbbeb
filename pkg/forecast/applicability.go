package forecast

// applicability maps each segment to the prediction types that make
// sense for it. Capacity utilization only exists for retail (and the
// combined rollup); stock reorder only for wholesale (and combined).
// Static data, never mutated at runtime.
var applicability = map[Segment][]PredictionType{
	SegmentRetail:    {TypeSales, TypeCapacity},
	SegmentWholesale: {TypeSales, TypeStock},
	SegmentCombined:  {TypeSales, TypeCapacity, TypeStock},
}

// segmentOrder fixes the iteration order for expansion so the expanded
// pair set is deterministic.
var segmentOrder = []Segment{SegmentRetail, SegmentWholesale, SegmentCombined}

// AllSegments returns the full segment set in stable order.
func AllSegments() []Segment {
	out := make([]Segment, len(segmentOrder))
	copy(out, segmentOrder)
	return out
}

// ApplicableTypes returns the prediction types valid for a segment, in
// stable order. Unknown segments yield nil.
func ApplicableTypes(s Segment) []PredictionType {
	types, ok := applicability[s]
	if !ok {
		return nil
	}
	out := make([]PredictionType, len(types))
	copy(out, types)
	return out
}

// IsApplicable reports whether typ is a valid prediction type for s.
func IsApplicable(s Segment, typ PredictionType) bool {
	for _, t := range applicability[s] {
		if t == typ {
			return true
		}
	}
	return false
}

// KnownSegment reports whether s names a concrete segment.
func KnownSegment(s Segment) bool {
	_, ok := applicability[s]
	return ok
}

// KnownType reports whether t names a concrete prediction type.
func KnownType(t PredictionType) bool {
	return t == TypeSales || t == TypeCapacity || t == TypeStock
}

// ExpandScopes resolves a (segmentScope, typeScope) pair into the
// concrete sub-request set. Wildcard segments expand to every segment.
// Wildcard types expand per segment, against that segment's applicable
// set, so stock is never requested for retail and capacity never for
// wholesale. An explicit type that is inapplicable to an expanded
// segment is silently dropped rather than rejected.
func ExpandScopes(segmentScope Segment, typeScope PredictionType) []Pair {
	var segments []Segment
	if segmentScope == SegmentAll {
		segments = segmentOrder
	} else {
		segments = []Segment{segmentScope}
	}

	var pairs []Pair
	for _, seg := range segments {
		if typeScope == TypeAll {
			for _, t := range applicability[seg] {
				pairs = append(pairs, Pair{Segment: seg, Type: t})
			}
			continue
		}
		if IsApplicable(seg, typeScope) {
			pairs = append(pairs, Pair{Segment: seg, Type: typeScope})
		}
	}
	return pairs
}
