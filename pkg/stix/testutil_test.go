package stix

const (
	testIdentity = "identity--d2916708-57b9-5636-8689-62f049e9f727"
	testMarking  = "marking-definition--d2916708-57b9-5636-8689-62f049e9f727"
	testFixed    = "marking-definition--94868c89-83c2-464b-929b-a1a8aa3c8487"
)

var testProvenance = Provenance{
	CreatedByRef:    testIdentity,
	MarkingRef:      testMarking,
	FixedMarkingRef: testFixed,
}

func testLocation(name, country, region string, refs ...ExternalReference) *Location {
	return &Location{
		Type:               TypeLocation,
		SpecVersion:        SpecVersion,
		ID:                 NodeID(name),
		CreatedByRef:       testIdentity,
		Created:            Timestamp,
		Modified:           Timestamp,
		Name:               name,
		Region:             region,
		Country:            country,
		ExternalReferences: refs,
		ObjectMarkingRefs:  testProvenance.MarkingRefs(),
	}
}
