package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/muchdogesec/location2stix/pkg/hierarchy"
	"github.com/muchdogesec/location2stix/pkg/integrations"
	"github.com/muchdogesec/location2stix/pkg/stix"
	"github.com/muchdogesec/location2stix/pkg/store"
	"github.com/muchdogesec/location2stix/pkg/taxonomy"
)

// Fetcher retrieves a single STIX object of a known type.
// [integrations.Client] is the production implementation.
type Fetcher interface {
	FetchTyped(ctx context.Context, url, objType string) (*stix.RawObject, error)
}

// Runner executes runs against one staging store.
//
// The store is reset at the start of every run, so a Runner must not be
// shared by concurrent runs.
type Runner struct {
	Store   store.Store
	Fetcher Fetcher
	Logger  *log.Logger
}

// NewRunner creates a runner.
// If fetcher is nil, an [integrations.Client] with the default timeout is used.
// If logger is nil, log.Default() is used.
func NewRunner(s store.Store, fetcher Fetcher, logger *log.Logger) *Runner {
	if fetcher == nil {
		fetcher = integrations.NewClient(integrations.DefaultTimeout, nil)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:   s,
		Fetcher: fetcher,
		Logger:  logger,
	}
}

// Execute runs the complete read → fetch → build → assemble pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{}

	// Stage 1: Read
	readStart := time.Now()
	rows, err := taxonomy.ImportCSV(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	result.Stats.Rows = len(rows)
	result.Stats.ReadTime = time.Since(readStart)

	r.Logger.Debug("read taxonomy",
		"rows", len(rows),
		"duration", result.Stats.ReadTime)

	// Stage 2: Fetch
	fetchStart := time.Now()
	refs, err := r.Fetch(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Provenance = stix.Provenance{
		CreatedByRef:    refs[0].ID,
		MarkingRef:      refs[1].ID,
		FixedMarkingRef: opts.FixedMarking,
	}
	result.Stats.FetchTime = time.Since(fetchStart)

	r.Logger.Debug("fetched references",
		"identity", refs[0].ID,
		"marking", refs[1].ID,
		"duration", result.Stats.FetchTime)

	// Stage 3: Stage
	if err := r.Store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset store: %w", err)
	}
	for _, obj := range refs {
		if _, err := store.PutIfAbsent(ctx, r.Store, obj); err != nil {
			return nil, fmt.Errorf("stage %s: %w", obj.ID, err)
		}
	}

	// Stage 4 and 5: Build and relate
	buildStart := time.Now()
	nodes, err := hierarchy.NewBuilder(r.Store, result.Provenance, r.Logger).Build(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	rels, err := hierarchy.NewSynthesizer(r.Store, result.Provenance, r.Logger).
		Synthesize(ctx, taxonomy.NewIndex(rows), nodes)
	if err != nil {
		return nil, fmt.Errorf("relate: %w", err)
	}
	rels, dropped := hierarchy.Dedupe(rels)
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Countries = nodes.UniqueCountries()
	result.Stats.Regions = len(nodes.Regions)
	result.Stats.SubRegions = len(nodes.SubRegions)
	result.Stats.IntermediateRegions = len(nodes.IntermediateRegions)
	result.Stats.Relationships = len(rels)
	result.Stats.DuplicatesDropped = dropped

	r.Logger.Info("built hierarchy",
		"locations", nodes.Len(),
		"relationships", len(rels),
		"duplicates", dropped,
		"duration", result.Stats.BuildTime)

	// Stage 6: Assemble
	writeStart := time.Now()
	bundle, err := Assemble(ctx, r.Store, rels)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	result.Bundle = bundle
	result.Stats.Objects = bundle.Len()

	if opts.Output != "" {
		if err := stix.ExportJSON(bundle, opts.Output); err != nil {
			return nil, fmt.Errorf("write: %w", err)
		}
		result.Output = opts.Output
	}
	result.Stats.WriteTime = time.Since(writeStart)

	r.Logger.Info("wrote bundle",
		"objects", bundle.Len(),
		"path", result.Output,
		"duration", result.Stats.WriteTime)

	return result, nil
}

// Fetch downloads the identity and marking-definition objects, in that
// order.
func (r *Runner) Fetch(ctx context.Context, opts Options) ([2]*stix.RawObject, error) {
	var refs [2]*stix.RawObject
	identity, err := r.Fetcher.FetchTyped(ctx, opts.IdentityURL, stix.TypeIdentity)
	if err != nil {
		return refs, err
	}
	marking, err := r.Fetcher.FetchTyped(ctx, opts.MarkingDefinitionURL, stix.TypeMarkingDefinition)
	if err != nil {
		return refs, err
	}
	refs[0], refs[1] = identity, marking
	return refs, nil
}

// Assemble bundles every staged object except relationships, in query
// order, followed by rels in the order given. Relationships are taken from
// rels alone so that each appears once.
func Assemble(ctx context.Context, s store.Store, rels []*stix.Relationship) (*stix.Bundle, error) {
	staged, err := s.Query(ctx)
	if err != nil {
		return nil, err
	}
	objects := make([]stix.Object, 0, len(staged)+len(rels))
	for _, obj := range staged {
		if obj.Type == stix.TypeRelationship {
			continue
		}
		objects = append(objects, obj)
	}
	for _, rel := range rels {
		objects = append(objects, rel)
	}
	return stix.NewBundle(objects...)
}
