package stix

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muchdogesec/location2stix/pkg/errors"
)

const testIdentityJSON = `{"type":"identity","spec_version":"2.1","id":"` + testIdentity + `","name":"location2stix","identity_class":"system"}`

func TestParseObject(t *testing.T) {
	obj, err := ParseObject([]byte(testIdentityJSON))
	if err != nil {
		t.Fatalf("ParseObject() error: %v", err)
	}
	if obj.ID != testIdentity || obj.Type != TypeIdentity {
		t.Errorf("ParseObject() = %s/%s", obj.Type, obj.ID)
	}

	bad := []struct {
		name string
		data string
	}{
		{"not json", `<html>`},
		{"array", `[]`},
		{"no type", `{"id":"` + testIdentity + `"}`},
		{"type mismatch", `{"type":"location","id":"` + testIdentity + `"}`},
		{"null", `null`},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseObject([]byte(tt.data))
			if !errors.Is(err, errors.ErrCodeInvalidObject) {
				t.Errorf("ParseObject(%s) error = %v, want INVALID_OBJECT", tt.data, err)
			}
		})
	}
}

func TestNewBundleOrderAndID(t *testing.T) {
	ident, _ := ParseObject([]byte(testIdentityJSON))
	kenya := testLocation("Kenya", "KE", "sub-saharan-africa")
	africa := testLocation("Africa", "", "africa")
	rel := NewRelationship(kenya.ID, africa.ID, RelRegion, testProvenance)

	b, err := NewBundle(ident, kenya, africa, rel)
	if err != nil {
		t.Fatalf("NewBundle() error: %v", err)
	}
	if b.Type != TypeBundle {
		t.Errorf("Type = %q, want bundle", b.Type)
	}
	if b.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", b.Len())
	}
	objs, err := b.Decode()
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	wantIDs := []string{testIdentity, kenya.ID, africa.ID, rel.ID}
	for i, obj := range objs {
		if obj.ID != wantIDs[i] {
			t.Errorf("object %d = %s, want %s", i, obj.ID, wantIDs[i])
		}
	}

	again, _ := NewBundle(ident, kenya, africa, rel)
	if again.ID != b.ID {
		t.Error("bundle id should be deterministic")
	}
}

func TestWriteJSONFormat(t *testing.T) {
	kenya := testLocation("Kenya", "KE", "sub-saharan-africa",
		ExternalReference{SourceName: "alpha-3", ExternalID: "KEN"})
	b, _ := NewBundle(kenya)

	var buf bytes.Buffer
	if err := WriteJSON(b, &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "{\n    \"type\": \"bundle\",") {
		t.Errorf("output should start with an indented bundle type, got:\n%s", out)
	}
	if !strings.Contains(out, "\n            \"name\": \"Kenya\",") {
		t.Errorf("objects should be indented with four spaces per level, got:\n%s", out)
	}

	var generic map[string]any
	if err := json.Unmarshal(buf.Bytes(), &generic); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := generic["objects"].([]any); !ok {
		t.Error("output should carry an objects array")
	}
}

func TestExportImportBundle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "locations-bundle.json")

	kenya := testLocation("Kenya", "KE", "sub-saharan-africa")
	b, _ := NewBundle(kenya)
	if err := ExportJSON(b, path); err != nil {
		t.Fatalf("ExportJSON() error: %v", err)
	}

	got, err := ImportBundle(path)
	if err != nil {
		t.Fatalf("ImportBundle() error: %v", err)
	}
	if got.ID != b.ID || got.Len() != 1 {
		t.Errorf("ImportBundle() = %s (%d objects), want %s (1)", got.ID, got.Len(), b.ID)
	}
}

func TestImportBundleErrors(t *testing.T) {
	_, err := ImportBundle(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}

	_, err = ReadBundle(strings.NewReader(`{"type":"identity","objects":[]}`))
	if !errors.Is(err, errors.ErrCodeInvalidObject) {
		t.Errorf("wrong container type error = %v, want INVALID_OBJECT", err)
	}
}

func TestBundleAllowsCustomTypes(t *testing.T) {
	custom, err := ParseObject([]byte(`{"type":"x-weather-zone","id":"x-weather-zone--817927ca-787a-54ea-86df-0731cd1cc3fb"}`))
	if err != nil {
		t.Fatalf("ParseObject(custom) error: %v", err)
	}
	b, err := NewBundle(custom)
	if err != nil {
		t.Fatalf("NewBundle(custom) error: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteJSON(b, &buf); err != nil {
		t.Fatalf("WriteJSON(custom) error: %v", err)
	}
	if !strings.Contains(buf.String(), "x-weather-zone") {
		t.Error("custom object missing from output")
	}
}
