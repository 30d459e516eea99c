// Package pipeline runs a complete location2stix generation.
//
// A run is strictly sequential:
//
//  1. Read: parse the taxonomy CSV
//  2. Fetch: download the identity and marking-definition objects
//  3. Stage: reset the staging store and put the two fetched objects
//  4. Build: create and stage every location
//  5. Relate: derive and stage containment relationships
//  6. Assemble: bundle the staged objects followed by the relationships
//     and write the bundle to the output path
//
// Any error aborts the run. Nothing is retried.
//
// # Usage
//
//	runner := pipeline.NewRunner(st, client, logger)
//	result, err := runner.Execute(ctx, pipeline.OptionsFromConfig(cfg))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Stats.Relationships)
package pipeline

import (
	"time"

	"github.com/muchdogesec/location2stix/pkg/config"
	"github.com/muchdogesec/location2stix/pkg/errors"
	"github.com/muchdogesec/location2stix/pkg/stix"
)

// Options configures a single run.
type Options struct {
	// Input is the taxonomy CSV path.
	Input string

	// Output is where the bundle is written. Empty skips writing.
	Output string

	IdentityURL          string
	MarkingDefinitionURL string

	// FixedMarking is applied to every object alongside the fetched marking.
	FixedMarking string
}

// OptionsFromConfig copies the run settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Input:                cfg.Input,
		Output:               cfg.Output,
		IdentityURL:          cfg.Sources.IdentityURL,
		MarkingDefinitionURL: cfg.Sources.MarkingDefinitionURL,
		FixedMarking:         cfg.Markings.Fixed,
	}
}

// ValidateAndSetDefaults fills empty fields from [config.Default] and
// checks the result.
func (o *Options) ValidateAndSetDefaults() error {
	def := config.Default()
	if o.Input == "" {
		o.Input = def.Input
	}
	if o.IdentityURL == "" {
		o.IdentityURL = def.Sources.IdentityURL
	}
	if o.MarkingDefinitionURL == "" {
		o.MarkingDefinitionURL = def.Sources.MarkingDefinitionURL
	}
	if o.FixedMarking == "" {
		o.FixedMarking = def.Markings.Fixed
	}

	if err := errors.ValidateFilePath(o.Input); err != nil {
		return err
	}
	if o.Output != "" {
		if err := errors.ValidateFilePath(o.Output); err != nil {
			return err
		}
	}
	if err := errors.ValidateURL(o.IdentityURL); err != nil {
		return err
	}
	if err := errors.ValidateURL(o.MarkingDefinitionURL); err != nil {
		return err
	}
	if !stix.IsValidID(o.FixedMarking, stix.TypeMarkingDefinition) {
		return errors.New(errors.ErrCodeInvalidConfig, "fixed marking is not a marking-definition id: %q", o.FixedMarking)
	}
	return nil
}

// Result is the outcome of a successful run.
type Result struct {
	Bundle     *stix.Bundle
	Provenance stix.Provenance
	Output     string // empty when nothing was written
	Stats      Stats
}

// Stats summarizes a run.
type Stats struct {
	Rows                int
	Countries           int
	Regions             int
	SubRegions          int
	IntermediateRegions int
	Relationships       int
	DuplicatesDropped   int
	Objects             int

	ReadTime  time.Duration
	FetchTime time.Duration
	BuildTime time.Duration
	WriteTime time.Duration
}

// Locations returns the number of distinct locations.
func (s Stats) Locations() int {
	return s.Countries + s.Regions + s.SubRegions + s.IntermediateRegions
}
