package stix

// Kind is the hierarchy level of a location.
type Kind int

// Location kinds, most specific first.
const (
	KindUnknown Kind = iota
	KindCountry
	KindIntermediateRegion
	KindSubRegion
	KindRegion
)

var kinds = []Kind{KindCountry, KindIntermediateRegion, KindSubRegion, KindRegion}

// Kinds returns all known location kinds, most specific first.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// String returns the label used in logs and relationship types.
func (k Kind) String() string {
	switch k {
	case KindCountry:
		return "country"
	case KindIntermediateRegion:
		return RelIntermediateRegion
	case KindSubRegion:
		return RelSubRegion
	case KindRegion:
		return RelRegion
	default:
		return "unknown"
	}
}

// CodeSource returns the external reference source name that carries the
// code of a location of this kind. Countries carry three codes; the
// alpha-3 source is returned for them.
func (k Kind) CodeSource() string {
	switch k {
	case KindCountry:
		return "alpha-3"
	case KindIntermediateRegion:
		return "intermediate-region-code"
	case KindSubRegion:
		return "sub-region-code"
	case KindRegion:
		return "region-code"
	default:
		return ""
	}
}
