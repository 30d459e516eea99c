package stix

import (
	"strings"
	"testing"
)

func TestNodeIDGolden(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Kenya", "location--817927ca-787a-54ea-86df-0731cd1cc3fb"},
		{"Africa", "location--ccb963ba-9370-5eeb-80e3-c8d8738275ed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NodeID(tt.name); got != tt.want {
				t.Errorf("NodeID(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestNodeIDStable(t *testing.T) {
	if NodeID("Sub-Saharan Africa") != NodeID("Sub-Saharan Africa") {
		t.Error("NodeID should be deterministic")
	}
	if NodeID("Eastern Africa") == NodeID("Western Africa") {
		t.Error("different names should produce different IDs")
	}
	if !IsValidID(NodeID("Europe"), TypeLocation) {
		t.Errorf("NodeID produced malformed id %q", NodeID("Europe"))
	}
}

func TestEdgeID(t *testing.T) {
	kenya := NodeID("Kenya")
	africa := NodeID("Africa")

	want := "relationship--eed53176-d98c-545c-a500-b50c4a3f26a1"
	if got := EdgeID(kenya, africa); got != want {
		t.Errorf("EdgeID = %q, want %q", got, want)
	}
	if EdgeID(kenya, africa) == EdgeID(africa, kenya) {
		t.Error("EdgeID should depend on endpoint order")
	}
	if !strings.HasPrefix(EdgeID(kenya, africa), "relationship--") {
		t.Error("EdgeID should carry the relationship prefix")
	}
}

func TestBundleID(t *testing.T) {
	a := BundleID([]string{NodeID("Kenya"), NodeID("Africa")})
	b := BundleID([]string{NodeID("Kenya"), NodeID("Africa")})
	c := BundleID([]string{NodeID("Africa"), NodeID("Kenya")})
	if a != b {
		t.Error("BundleID should be deterministic")
	}
	if a == c {
		t.Error("BundleID should depend on object order")
	}
	if !IsValidID(a, TypeBundle) {
		t.Errorf("BundleID produced malformed id %q", a)
	}
}

func TestIsValidID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		objType string
		want    bool
	}{
		{"location", "location--817927ca-787a-54ea-86df-0731cd1cc3fb", TypeLocation, true},
		{"any type", "identity--817927ca-787a-54ea-86df-0731cd1cc3fb", "", true},
		{"wrong type", "location--817927ca-787a-54ea-86df-0731cd1cc3fb", TypeRelationship, false},
		{"no separator", "817927ca-787a-54ea-86df-0731cd1cc3fb", "", false},
		{"bad uuid", "location--not-a-uuid", TypeLocation, false},
		{"braced uuid", "location--{817927ca-787a-54ea-86df-0731cd1cc3fb}", TypeLocation, false},
		{"empty prefix", "--817927ca-787a-54ea-86df-0731cd1cc3fb", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidID(tt.id, tt.objType); got != tt.want {
				t.Errorf("IsValidID(%q, %q) = %v, want %v", tt.id, tt.objType, got, tt.want)
			}
		})
	}
}

func TestTypeOf(t *testing.T) {
	if got := TypeOf("marking-definition--94868c89-83c2-464b-929b-a1a8aa3c8487"); got != TypeMarkingDefinition {
		t.Errorf("TypeOf() = %q, want %q", got, TypeMarkingDefinition)
	}
	if got := TypeOf("garbage"); got != "" {
		t.Errorf("TypeOf(garbage) = %q, want empty", got)
	}
}
