package hierarchy

import (
	"github.com/muchdogesec/location2stix/pkg/stix"
	"github.com/muchdogesec/location2stix/pkg/taxonomy"
)

// NewCountry builds the country location for a row.
// Its region property is the slug of the row's sub-region.
func NewCountry(row taxonomy.Row, p stix.Provenance) *stix.Location {
	loc := newLocation(row.Name, Slug(row.SubRegion), p)
	loc.Country = row.Alpha2
	loc.ExternalReferences = []stix.ExternalReference{
		{SourceName: taxonomy.ColAlpha3, ExternalID: row.Alpha3},
		{SourceName: taxonomy.ColISO31662, ExternalID: row.ISO31662},
		{SourceName: taxonomy.ColCountryCode, ExternalID: row.CountryCode},
	}
	return loc
}

// NewArea builds a region, sub-region or intermediate region location.
// The taxonomy has no separate codes for these levels, so the name doubles
// as the code.
func NewArea(kind stix.Kind, name string, p stix.Provenance) *stix.Location {
	loc := newLocation(name, Slug(name), p)
	loc.ExternalReferences = []stix.ExternalReference{
		{SourceName: kind.CodeSource(), ExternalID: name},
	}
	return loc
}

func newLocation(name, region string, p stix.Provenance) *stix.Location {
	return &stix.Location{
		Type:              stix.TypeLocation,
		SpecVersion:       stix.SpecVersion,
		ID:                stix.NodeID(name),
		CreatedByRef:      p.CreatedByRef,
		Created:           stix.Timestamp,
		Modified:          stix.Timestamp,
		Name:              name,
		Region:            region,
		ObjectMarkingRefs: p.MarkingRefs(),
	}
}
