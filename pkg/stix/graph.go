package stix

// Graph indexes the locations and containment edges of a bundle.
// Objects keep their bundle order. A Graph is read-only once built and is
// safe for concurrent readers.
type Graph struct {
	objects   []*RawObject
	byID      map[string]*RawObject
	locations []*Location
	locByID   map[string]*Location
	edges     []*Relationship
	out       map[string][]*Relationship
	in        map[string][]*Relationship
}

// NewGraph decodes every object in b and indexes locations and
// relationships. Other object types are kept but not interpreted.
func NewGraph(b *Bundle) (*Graph, error) {
	objs, err := b.Decode()
	if err != nil {
		return nil, err
	}

	g := &Graph{
		objects: objs,
		byID:    make(map[string]*RawObject, len(objs)),
		locByID: make(map[string]*Location),
		out:     make(map[string][]*Relationship),
		in:      make(map[string][]*Relationship),
	}
	for _, obj := range objs {
		g.byID[obj.ID] = obj
		switch obj.Type {
		case TypeLocation:
			var loc Location
			if err := obj.Decode(&loc); err != nil {
				return nil, err
			}
			g.locations = append(g.locations, &loc)
			g.locByID[loc.ID] = &loc
		case TypeRelationship:
			var rel Relationship
			if err := obj.Decode(&rel); err != nil {
				return nil, err
			}
			g.edges = append(g.edges, &rel)
			g.out[rel.SourceRef] = append(g.out[rel.SourceRef], &rel)
			g.in[rel.TargetRef] = append(g.in[rel.TargetRef], &rel)
		}
	}
	return g, nil
}

// Objects returns every object in bundle order.
func (g *Graph) Objects() []*RawObject { return g.objects }

// Object returns the object with the given identifier.
func (g *Graph) Object(id string) (*RawObject, bool) {
	obj, ok := g.byID[id]
	return obj, ok
}

// Locations returns all locations in bundle order.
func (g *Graph) Locations() []*Location { return g.locations }

// Location returns the location with the given identifier.
func (g *Graph) Location(id string) (*Location, bool) {
	loc, ok := g.locByID[id]
	return loc, ok
}

// Relationships returns all relationships in bundle order.
func (g *Graph) Relationships() []*Relationship { return g.edges }

// Parents returns the edges leaving id, i.e. what id is contained in.
func (g *Graph) Parents(id string) []*Relationship { return g.out[id] }

// Children returns the edges arriving at id, i.e. what id contains.
func (g *Graph) Children(id string) []*Relationship { return g.in[id] }

// Roots returns the locations that are not contained in anything.
// For a complete taxonomy these are the regions plus any country the
// taxonomy leaves unassigned.
func (g *Graph) Roots() []*Location {
	var roots []*Location
	for _, loc := range g.locations {
		if !g.contained(loc.ID) {
			roots = append(roots, loc)
		}
	}
	return roots
}

// contained reports whether id has an edge to a location other than itself.
func (g *Graph) contained(id string) bool {
	for _, rel := range g.out[id] {
		if rel.TargetRef != id {
			return true
		}
	}
	return false
}

// ByKind returns the locations of kind k in bundle order.
func (g *Graph) ByKind(k Kind) []*Location {
	var out []*Location
	for _, loc := range g.locations {
		if loc.Kind() == k {
			out = append(out, loc)
		}
	}
	return out
}
