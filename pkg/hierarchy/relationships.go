package hierarchy

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/muchdogesec/location2stix/pkg/stix"
	"github.com/muchdogesec/location2stix/pkg/store"
	"github.com/muchdogesec/location2stix/pkg/taxonomy"
)

// Synthesizer derives containment relationships between built locations.
type Synthesizer struct {
	store      store.Store
	provenance stix.Provenance
	logger     *log.Logger
}

// NewSynthesizer returns a synthesizer that stamps every relationship with
// p and writes it to s. A nil logger discards output.
func NewSynthesizer(s store.Store, p stix.Provenance, logger *log.Logger) *Synthesizer {
	return &Synthesizer{store: s, provenance: p, logger: orDiscard(logger)}
}

// Synthesize runs the five relationship passes and returns every edge in
// the order it was derived. A country listed on several rows yields its
// edges once per row, so the result may repeat identifiers; see [Dedupe].
func (s *Synthesizer) Synthesize(ctx context.Context, idx *taxonomy.Index, nodes *Nodes) ([]*stix.Relationship, error) {
	var rels []*stix.Relationship
	emit := func(src, tgt *stix.Location, srcKind, tgtKind stix.Kind) error {
		rel := stix.NewRelationship(src.ID, tgt.ID, tgtKind.String(), s.provenance)
		if err := stix.Validate(rel); err != nil {
			return err
		}
		rels = append(rels, rel)
		if _, err := store.PutIfAbsent(ctx, s.store, rel); err != nil {
			return err
		}
		s.logger.Debug("created relationship",
			"source_kind", srcKind, "source", src.Name,
			"target_kind", tgtKind, "target", tgt.Name)
		return nil
	}

	countryPasses := []struct {
		kind   stix.Kind
		target func(*taxonomy.Row) string
	}{
		{stix.KindSubRegion, func(r *taxonomy.Row) string { return r.SubRegion }},
		{stix.KindRegion, func(r *taxonomy.Row) string { return r.Region }},
		{stix.KindIntermediateRegion, func(r *taxonomy.Row) string { return r.IntermediateRegion }},
	}
	for _, pass := range countryPasses {
		for _, country := range nodes.Countries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			row, ok := idx.Country(country.Name)
			if !ok {
				continue
			}
			target, ok := nodes.Area(pass.kind, pass.target(row))
			if !ok {
				continue
			}
			if err := emit(country, target, stix.KindCountry, pass.kind); err != nil {
				return nil, err
			}
		}
	}

	for _, sub := range nodes.SubRegions {
		row, ok := idx.SubRegion(sub.Name)
		if !ok {
			continue
		}
		if region, ok := nodes.Area(stix.KindRegion, row.Region); ok {
			if err := emit(sub, region, stix.KindSubRegion, stix.KindRegion); err != nil {
				return nil, err
			}
		}
	}

	for _, inter := range nodes.IntermediateRegions {
		row, ok := idx.IntermediateRegion(inter.Name)
		if !ok {
			continue
		}
		if sub, ok := nodes.Area(stix.KindSubRegion, row.SubRegion); ok {
			if err := emit(inter, sub, stix.KindIntermediateRegion, stix.KindSubRegion); err != nil {
				return nil, err
			}
		}
	}

	return rels, nil
}

// Dedupe drops relationships whose identifier was already seen, keeping
// the first occurrence and the original order. It returns the kept edges
// and the number dropped.
func Dedupe(rels []*stix.Relationship) ([]*stix.Relationship, int) {
	seen := make(map[string]struct{}, len(rels))
	out := make([]*stix.Relationship, 0, len(rels))
	for _, r := range rels {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out, len(rels) - len(out)
}
