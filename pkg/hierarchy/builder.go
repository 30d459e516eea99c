package hierarchy

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/muchdogesec/location2stix/pkg/stix"
	"github.com/muchdogesec/location2stix/pkg/store"
	"github.com/muchdogesec/location2stix/pkg/taxonomy"
)

// Nodes is the location set built from a taxonomy.
type Nodes struct {
	// Countries holds one entry per row with a non-empty name, in file
	// order. A country named on several rows appears several times with
	// the same identifier.
	Countries []*stix.Location

	Regions             []*stix.Location
	SubRegions          []*stix.Location
	IntermediateRegions []*stix.Location

	byKind map[stix.Kind]map[string]*stix.Location
}

func newNodes() *Nodes {
	n := &Nodes{byKind: make(map[stix.Kind]map[string]*stix.Location, 3)}
	for _, k := range []stix.Kind{stix.KindRegion, stix.KindSubRegion, stix.KindIntermediateRegion} {
		n.byKind[k] = make(map[string]*stix.Location)
	}
	return n
}

// Area returns the region, sub-region or intermediate region named name.
func (n *Nodes) Area(kind stix.Kind, name string) (*stix.Location, bool) {
	loc, ok := n.byKind[kind][name]
	return loc, ok
}

// UniqueCountries returns the number of distinct country identifiers.
func (n *Nodes) UniqueCountries() int {
	seen := make(map[string]struct{}, len(n.Countries))
	for _, c := range n.Countries {
		seen[c.ID] = struct{}{}
	}
	return len(seen)
}

// Len returns the number of distinct locations.
func (n *Nodes) Len() int {
	return n.UniqueCountries() + len(n.Regions) + len(n.SubRegions) + len(n.IntermediateRegions)
}

func (n *Nodes) add(kind stix.Kind, loc *stix.Location) {
	n.byKind[kind][loc.Name] = loc
	switch kind {
	case stix.KindRegion:
		n.Regions = append(n.Regions, loc)
	case stix.KindSubRegion:
		n.SubRegions = append(n.SubRegions, loc)
	case stix.KindIntermediateRegion:
		n.IntermediateRegions = append(n.IntermediateRegions, loc)
	}
}

// Builder creates location objects and stages them.
type Builder struct {
	store      store.Store
	provenance stix.Provenance
	logger     *log.Logger
}

// NewBuilder returns a builder that stamps every location with p and
// writes it to s. A nil logger discards output.
func NewBuilder(s store.Store, p stix.Provenance, logger *log.Logger) *Builder {
	return &Builder{store: s, provenance: p, logger: orDiscard(logger)}
}

// Build walks rows in file order. Per row it builds the country, then the
// region, sub-region and intermediate region the first time each name is
// seen. Rows with an empty name are skipped entirely.
func (b *Builder) Build(ctx context.Context, rows []taxonomy.Row) (*Nodes, error) {
	nodes := newNodes()
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if row.Name == "" {
			continue
		}

		country := NewCountry(row, b.provenance)
		if err := b.stage(ctx, stix.KindCountry, country); err != nil {
			return nil, err
		}
		nodes.Countries = append(nodes.Countries, country)

		areas := []struct {
			kind stix.Kind
			name string
		}{
			{stix.KindRegion, row.Region},
			{stix.KindSubRegion, row.SubRegion},
			{stix.KindIntermediateRegion, row.IntermediateRegion},
		}
		for _, a := range areas {
			if a.name == "" {
				continue
			}
			if _, ok := nodes.Area(a.kind, a.name); ok {
				continue
			}
			loc := NewArea(a.kind, a.name, b.provenance)
			if err := b.stage(ctx, a.kind, loc); err != nil {
				return nil, err
			}
			nodes.add(a.kind, loc)
		}
	}
	return nodes, nil
}

func (b *Builder) stage(ctx context.Context, kind stix.Kind, loc *stix.Location) error {
	if err := stix.Validate(loc); err != nil {
		return err
	}
	written, err := store.PutIfAbsent(ctx, b.store, loc)
	if err != nil {
		return err
	}
	if written {
		b.logger.Info("created location", "kind", kind, "name", loc.Name)
	}
	return nil
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger != nil {
		return logger
	}
	return log.New(io.Discard)
}
