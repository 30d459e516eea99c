package taxonomy

// Index maps names to the first row that mentions them.
// Within a consistent table every row sharing a sub-region also shares its
// region, so the first row is as good as any; for an inconsistent table the
// first row in file order decides.
type Index struct {
	byName               map[string]*Row
	bySubRegion          map[string]*Row
	byIntermediateRegion map[string]*Row
}

// NewIndex builds an index over rows in a single pass.
// Empty names are not indexed.
func NewIndex(rows []Row) *Index {
	idx := &Index{
		byName:               make(map[string]*Row, len(rows)),
		bySubRegion:          make(map[string]*Row),
		byIntermediateRegion: make(map[string]*Row),
	}
	for i := range rows {
		r := &rows[i]
		firstRow(idx.byName, r.Name, r)
		firstRow(idx.bySubRegion, r.SubRegion, r)
		firstRow(idx.byIntermediateRegion, r.IntermediateRegion, r)
	}
	return idx
}

func firstRow(m map[string]*Row, key string, r *Row) {
	if key == "" {
		return
	}
	if _, ok := m[key]; !ok {
		m[key] = r
	}
}

// Country returns the first row whose country name is name.
func (idx *Index) Country(name string) (*Row, bool) {
	r, ok := idx.byName[name]
	return r, ok
}

// SubRegion returns the first row whose sub-region is name.
func (idx *Index) SubRegion(name string) (*Row, bool) {
	r, ok := idx.bySubRegion[name]
	return r, ok
}

// IntermediateRegion returns the first row whose intermediate region is name.
func (idx *Index) IntermediateRegion(name string) (*Row, bool) {
	r, ok := idx.byIntermediateRegion[name]
	return r, ok
}
