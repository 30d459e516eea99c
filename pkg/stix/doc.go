// Package stix defines the STIX 2.1 objects produced by location2stix and
// their JSON bundle encoding.
//
// # Objects
//
// Two object types are constructed locally:
//
//   - [Location]: a country, region, sub-region or intermediate region
//   - [Relationship]: a directed containment edge between two locations
//
// Objects fetched from elsewhere (the authoring identity and its marking
// definition) are carried as [RawObject] values. Only their type and id are
// read; the bytes are emitted unchanged.
//
// # Identifiers
//
// [NodeID] and [EdgeID] derive version-5 UUIDs under [Namespace], so the same
// input always yields the same identifiers:
//
//	stix.NodeID("Kenya")                         // location--...
//	stix.EdgeID(stix.NodeID("Kenya"), stix.NodeID("Africa")) // relationship--...
//
// Edge identifiers depend on endpoint order.
//
// # Bundles
//
// [NewBundle] wraps objects in a bundle container; [WriteJSON] and
// [ExportJSON] render it with four-space indentation. [ReadBundle] and
// [ImportBundle] read one back, and [NewGraph] indexes its locations and
// containment edges for traversal.
//
// Object types outside the STIX core set are accepted everywhere: the
// container does not enumerate allowed types.
package stix
