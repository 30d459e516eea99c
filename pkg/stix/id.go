package stix

import (
	"strings"

	"github.com/google/uuid"
)

// Namespace is the UUIDv5 namespace under which all location2stix
// identifiers are derived.
var Namespace = uuid.MustParse("674a16c1-8b43-5c3e-8692-b3d8935e4903")

// edgeSeparator joins endpoint identifiers when deriving an edge identifier.
// STIX identifiers never contain it.
const edgeSeparator = "+"

// NodeID returns the location identifier for a qualifying name.
func NodeID(name string) string {
	return TypeLocation + "--" + uuid.NewSHA1(Namespace, []byte(name)).String()
}

// EdgeID returns the relationship identifier for the ordered pair
// (sourceID, targetID). EdgeID(a, b) and EdgeID(b, a) differ.
func EdgeID(sourceID, targetID string) string {
	return TypeRelationship + "--" + uuid.NewSHA1(Namespace, []byte(sourceID+edgeSeparator+targetID)).String()
}

// BundleID returns a bundle identifier derived from the identifiers of its
// objects, in order.
func BundleID(objectIDs []string) string {
	return TypeBundle + "--" + uuid.NewSHA1(Namespace, []byte(strings.Join(objectIDs, edgeSeparator))).String()
}

// IsValidID reports whether id has the form "<objType>--<uuid>".
// An empty objType accepts any type prefix.
func IsValidID(id, objType string) bool {
	prefix, rest, ok := strings.Cut(id, "--")
	if !ok || prefix == "" {
		return false
	}
	if objType != "" && prefix != objType {
		return false
	}
	if len(rest) != 36 {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}

// TypeOf returns the type prefix of a STIX identifier, or "" if id is malformed.
func TypeOf(id string) string {
	prefix, _, ok := strings.Cut(id, "--")
	if !ok {
		return ""
	}
	return prefix
}
