package stix

import (
	"encoding/json"

	"github.com/muchdogesec/location2stix/pkg/errors"
)

// Object types and fixed property values.
const (
	TypeLocation          = "location"
	TypeRelationship      = "relationship"
	TypeBundle            = "bundle"
	TypeIdentity          = "identity"
	TypeMarkingDefinition = "marking-definition"

	SpecVersion = "2.1"

	// Timestamp is the created and modified time of every constructed object.
	// It is fixed so that re-runs produce identical output.
	Timestamp = "2020-01-01T00:00:00.000Z"
)

// Relationship types. Each names what the target is relative to the source.
const (
	RelSubRegion          = "sub-region"
	RelRegion             = "region"
	RelIntermediateRegion = "intermediate-region"
)

// Object is anything that can be placed in a bundle or the staging store.
type Object interface {
	ObjectID() string
	ObjectType() string
}

// Provenance holds the references stamped onto every constructed object.
type Provenance struct {
	CreatedByRef    string // identity that authored the objects
	MarkingRef      string // marking definition fetched with the identity
	FixedMarkingRef string // marking definition applied to every run
}

// MarkingRefs returns the object_marking_refs value for p.
func (p Provenance) MarkingRefs() []string {
	return []string{p.MarkingRef, p.FixedMarkingRef}
}

// ExternalReference points at the code a location is known by in the
// source taxonomy.
type ExternalReference struct {
	SourceName string `json:"source_name" validate:"required"`
	ExternalID string `json:"external_id"`
}

// Location is a STIX location object at one of the four hierarchy levels.
type Location struct {
	Type               string              `json:"type" validate:"eq=location"`
	SpecVersion        string              `json:"spec_version" validate:"eq=2.1"`
	ID                 string              `json:"id" validate:"stixid=location"`
	CreatedByRef       string              `json:"created_by_ref" validate:"stixid=identity"`
	Created            string              `json:"created" validate:"required,datetime=2006-01-02T15:04:05.000Z"`
	Modified           string              `json:"modified" validate:"required,datetime=2006-01-02T15:04:05.000Z"`
	Name               string              `json:"name" validate:"required"`
	Region             string              `json:"region,omitempty"`
	Country            string              `json:"country,omitempty"`
	ExternalReferences []ExternalReference `json:"external_references,omitempty" validate:"dive"`
	ObjectMarkingRefs  []string            `json:"object_marking_refs" validate:"min=1,dive,stixid=marking-definition"`
}

// ObjectID implements Object.
func (l *Location) ObjectID() string { return l.ID }

// ObjectType implements Object.
func (l *Location) ObjectType() string { return TypeLocation }

// Kind infers the hierarchy level of l from its properties.
// Countries carry an alpha-2 code; the other levels are told apart by the
// source name of their code reference.
func (l *Location) Kind() Kind {
	if l.Country != "" {
		return KindCountry
	}
	for _, ref := range l.ExternalReferences {
		for _, k := range kinds {
			if k != KindCountry && ref.SourceName == k.CodeSource() {
				return k
			}
		}
	}
	return KindUnknown
}

// ExternalID returns the external_id of the first reference named source.
func (l *Location) ExternalID(source string) string {
	for _, ref := range l.ExternalReferences {
		if ref.SourceName == source {
			return ref.ExternalID
		}
	}
	return ""
}

// Relationship is a directed containment edge between two locations.
type Relationship struct {
	Type              string   `json:"type" validate:"eq=relationship"`
	SpecVersion       string   `json:"spec_version" validate:"eq=2.1"`
	ID                string   `json:"id" validate:"stixid=relationship"`
	CreatedByRef      string   `json:"created_by_ref" validate:"stixid=identity"`
	Created           string   `json:"created" validate:"required,datetime=2006-01-02T15:04:05.000Z"`
	Modified          string   `json:"modified" validate:"required,datetime=2006-01-02T15:04:05.000Z"`
	RelationshipType  string   `json:"relationship_type" validate:"oneof=sub-region region intermediate-region"`
	SourceRef         string   `json:"source_ref" validate:"stixid=location"`
	TargetRef         string   `json:"target_ref" validate:"stixid=location"`
	ObjectMarkingRefs []string `json:"object_marking_refs" validate:"min=1,dive,stixid=marking-definition"`
}

// ObjectID implements Object.
func (r *Relationship) ObjectID() string { return r.ID }

// ObjectType implements Object.
func (r *Relationship) ObjectType() string { return TypeRelationship }

// NewRelationship builds a containment edge from source to target.
// The identifier is derived from the ordered endpoint pair.
func NewRelationship(sourceRef, targetRef, relType string, p Provenance) *Relationship {
	return &Relationship{
		Type:              TypeRelationship,
		SpecVersion:       SpecVersion,
		ID:                EdgeID(sourceRef, targetRef),
		CreatedByRef:      p.CreatedByRef,
		Created:           Timestamp,
		Modified:          Timestamp,
		RelationshipType:  relType,
		SourceRef:         sourceRef,
		TargetRef:         targetRef,
		ObjectMarkingRefs: p.MarkingRefs(),
	}
}

// RawObject is a STIX object held as its original JSON encoding.
// Any type is accepted as long as the identifier is well formed.
type RawObject struct {
	ID   string
	Type string
	Raw  json.RawMessage
}

// ObjectID implements Object.
func (o *RawObject) ObjectID() string { return o.ID }

// ObjectType implements Object.
func (o *RawObject) ObjectType() string { return o.Type }

// MarshalJSON returns the original encoding.
func (o *RawObject) MarshalJSON() ([]byte, error) {
	return o.Raw, nil
}

// Decode unmarshals the raw encoding into v.
func (o *RawObject) Decode(v any) error {
	if err := json.Unmarshal(o.Raw, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidObject, err, "decode %s", o.ID)
	}
	return nil
}

// ParseObject reads a single STIX object from data.
// It fails if data is not a JSON object or if its type and id disagree.
func ParseObject(data []byte) (*RawObject, error) {
	var head struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidObject, err, "parse STIX object")
	}
	if head.Type == "" {
		return nil, errors.New(errors.ErrCodeInvalidObject, "STIX object has no type")
	}
	if !IsValidID(head.ID, head.Type) {
		return nil, errors.New(errors.ErrCodeInvalidObject, "invalid id %q for type %q", head.ID, head.Type)
	}
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return &RawObject{ID: head.ID, Type: head.Type, Raw: raw}, nil
}

// ToRaw encodes any Object as a RawObject.
func ToRaw(obj Object) (*RawObject, error) {
	if raw, ok := obj.(*RawObject); ok {
		return raw, nil
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", obj.ObjectID())
	}
	return &RawObject{ID: obj.ObjectID(), Type: obj.ObjectType(), Raw: data}, nil
}

// Ensure all object kinds implement Object.
var (
	_ Object = (*Location)(nil)
	_ Object = (*Relationship)(nil)
	_ Object = (*RawObject)(nil)
)
