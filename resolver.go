package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-content/pkg/activity"
)

// Tier is one storage level consulted by the Resolver.
type Tier interface {
	Name() string
	// Configured reports whether the tier can be used at all. Unconfigured
	// tiers are skipped without being called.
	Configured() bool
	// Get never fails: unreachable backends report Absent, undecodable
	// payloads report Malformed.
	Get(ctx context.Context, section Section) Lookup
	Set(ctx context.Context, section Section, doc Document) error
}

// WritePolicy controls which tiers receive writes and, for file-only, which
// tiers are read.
type WritePolicy string

const (
	// PolicyStoreFirst writes the store and falls back to the file tier when
	// the store is unconfigured or fails.
	PolicyStoreFirst WritePolicy = "store-first"
	// PolicyMirror writes the store and always the file tier as well.
	PolicyMirror WritePolicy = "mirror"
	// PolicyFileOnly never consults the store.
	PolicyFileOnly WritePolicy = "file-only"
)

// ParseWritePolicy maps configuration input onto a WritePolicy. Blank input
// selects PolicyStoreFirst.
func ParseWritePolicy(raw string) (WritePolicy, error) {
	switch policy := WritePolicy(strings.ToLower(strings.TrimSpace(raw))); policy {
	case "":
		return PolicyStoreFirst, nil
	case PolicyStoreFirst, PolicyMirror, PolicyFileOnly:
		return policy, nil
	default:
		return "", fmt.Errorf("content: unknown write policy %q", raw)
	}
}

// WriteResult reports which tiers accepted a write.
type WriteResult struct {
	Section Section `json:"section"`
	Store   bool    `json:"store"`
	File    bool    `json:"file"`
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithStoreTier sets the primary key-value tier.
func WithStoreTier(tier Tier) ResolverOption {
	return func(r *Resolver) {
		r.store = tier
	}
}

// WithFileTier sets the file tier.
func WithFileTier(tier Tier) ResolverOption {
	return func(r *Resolver) {
		r.file = tier
	}
}

// WithWritePolicy sets the write policy. The zero value keeps
// PolicyStoreFirst.
func WithWritePolicy(policy WritePolicy) ResolverOption {
	return func(r *Resolver) {
		if policy != "" {
			r.policy = policy
		}
	}
}

// WithLogger sets the logger. A nil logger keeps the no-op default.
func WithLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger.Named("resolver")
		}
	}
}

// WithRules checks operator rules on every write.
func WithRules(rules *RuleSet) ResolverOption {
	return func(r *Resolver) {
		r.rules = rules
	}
}

// WithClock overrides the clock used for event timestamps.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// Resolver is the single entry point for reading and writing section
// documents. Reads fall through store, file and built-in default; writes
// follow the configured WritePolicy.
type Resolver struct {
	store   Tier
	file    Tier
	policy  WritePolicy
	logger  *zap.Logger
	rules   *RuleSet
	emitter *activity.Emitter
	now     func() time.Time
}

// NewResolver builds a Resolver. Tiers left unset are treated as
// unconfigured.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		policy: PolicyStoreFirst,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Policy returns the active write policy.
func (r *Resolver) Policy() WritePolicy {
	return r.policy
}

// Read returns the effective document for section. The only error is
// ErrUnknownSection; every tier miss degrades to the next tier and finally
// to the built-in default.
func (r *Resolver) Read(ctx context.Context, section Section) (Document, error) {
	doc, _, err := r.ReadWithTrace(ctx, section)
	return doc, err
}

// ReadWithTrace is Read plus the per-tier record of how the document was
// found.
func (r *Resolver) ReadWithTrace(ctx context.Context, section Section) (Document, Trace, error) {
	if !section.Valid() {
		return nil, Trace{}, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	trace := Trace{Section: section}
	for _, tier := range r.readTiers() {
		if !tier.Configured() {
			trace.skip(tier.Name())
			continue
		}
		lookup := tier.Get(ctx, section)
		if lookup.Ok() && lookup.Document.Section() != section {
			lookup = MalformedLookup(fmt.Errorf("tier returned %s document", lookup.Document.Section()))
		}
		trace.record(tier.Name(), lookup)
		if lookup.Ok() {
			trace.Source = tier.Name()
			return normalizeDocument(lookup.Document), trace, nil
		}
		if lookup.Status == Malformed {
			r.logger.Debug("malformed content ignored",
				zap.String("tier", tier.Name()),
				zapSection(section),
				zapError(lookup.Err),
			)
		} else if lookup.Err != nil {
			r.logger.Debug("tier miss",
				zap.String("tier", tier.Name()),
				zapSection(section),
				zapError(lookup.Err),
			)
		}
	}
	trace.Source = SourceDefault
	return Default(section), trace, nil
}

// ReadAll resolves every section concurrently.
func (r *Resolver) ReadAll(ctx context.Context) (SiteContent, error) {
	sections := Sections()
	docs := make([]Document, len(sections))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, section := range sections {
		group.Go(func() error {
			doc, err := r.Read(groupCtx, section)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return SiteContent{}, err
	}
	var site SiteContent
	for _, doc := range docs {
		site.Set(doc)
	}
	return site, nil
}

// Write validates doc and persists it according to the write policy.
//
// Validation failures are returned as *ValidationError before any tier is
// touched. When no tier accepts the document the error is a *StorageError.
func (r *Resolver) Write(ctx context.Context, section Section, doc Document) (WriteResult, error) {
	result := WriteResult{Section: section}
	if err := Validate(section, doc); err != nil {
		return result, err
	}
	doc = normalizeDocument(doc)
	if err := r.rules.Check(section, doc); err != nil {
		return result, err
	}

	var (
		failures []TierFailure
		fileErr  error
	)
	storeUsable := r.storeConsulted() && r.store.Configured()
	if storeUsable {
		if err := r.store.Set(ctx, section, doc); err != nil {
			failures = append(failures, TierFailure{Tier: r.store.Name(), Err: err})
			r.logger.Warn("store write failed",
				zapSection(section),
				zapError(err),
			)
		} else {
			result.Store = true
		}
	}

	if !result.Store || r.policy == PolicyMirror {
		switch {
		case r.file == nil || !r.file.Configured():
			fileErr = ErrTierUnavailable
		default:
			fileErr = r.file.Set(ctx, section, doc)
		}
		if fileErr != nil {
			failures = append(failures, TierFailure{Tier: r.fileName(), Err: fileErr})
			r.logger.Warn("file write failed",
				zapSection(section),
				zapError(fileErr),
			)
		} else {
			result.File = true
		}
	}

	if !result.Store && !result.File {
		return result, &StorageError{
			Section:            section,
			Failures:           failures,
			NeedsConfiguration: !storeUsable && needsConfiguration(fileErr),
		}
	}

	r.logger.Info("content updated",
		zapSection(section),
		zap.Bool("store", result.Store),
		zap.Bool("file", result.File),
	)
	r.emitUpdated(ctx, result)
	return result, nil
}

// WriteRaw decodes a JSON payload into the section shape and writes it.
func (r *Resolver) WriteRaw(ctx context.Context, section Section, raw []byte, opts ...DecodeOption) (WriteResult, error) {
	if !section.Valid() {
		return WriteResult{Section: section}, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	doc, err := Decode(section, raw, opts...)
	if err != nil {
		return WriteResult{Section: section}, err
	}
	return r.Write(ctx, section, doc)
}

func (r *Resolver) storeConsulted() bool {
	return r.store != nil && r.policy != PolicyFileOnly
}

func (r *Resolver) readTiers() []Tier {
	tiers := make([]Tier, 0, 2)
	if r.storeConsulted() {
		tiers = append(tiers, r.store)
	}
	if r.file != nil {
		tiers = append(tiers, r.file)
	}
	return tiers
}

func (r *Resolver) fileName() string {
	if r.file == nil {
		return SourceFile
	}
	return r.file.Name()
}

// needsConfiguration reports whether a file failure can only be fixed by
// changing the deployment.
func needsConfiguration(fileErr error) bool {
	return errors.Is(fileErr, ErrReadOnly) || errors.Is(fileErr, ErrTierUnavailable)
}

func zapSection(section Section) zap.Field {
	return zap.String("section", string(section))
}

func zapError(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.Error(err)
}
