package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	content "github.com/goliatone/go-content"
)

// ErrReadFailure is reported in Absent lookups while reads are failing.
var ErrReadFailure = errors.New("memory: read failure injected")

// Option configures a Tier.
type Option func(*Tier)

// Unconfigured makes the tier report Configured() == false.
func Unconfigured() Option {
	return func(t *Tier) {
		t.configured = false
	}
}

// Tier is a concurrency-safe in-memory content.Tier.
type Tier struct {
	name       string
	configured bool

	mu        sync.RWMutex
	records   map[content.Section][]byte
	writeErr  error
	readFail  bool
	gets      int
	sets      int
	lastWrite content.Section
}

// New returns an empty, configured tier reporting name.
func New(name string, opts ...Option) *Tier {
	t := &Tier{
		name:       name,
		configured: true,
		records:    map[content.Section][]byte{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

func (t *Tier) Name() string { return t.name }

func (t *Tier) Configured() bool { return t.configured }

// Get decodes the stored payload for section.
func (t *Tier) Get(_ context.Context, section content.Section) content.Lookup {
	t.mu.Lock()
	t.gets++
	raw, ok := t.records[section]
	failing := t.readFail
	t.mu.Unlock()

	if failing {
		return content.AbsentLookup(ErrReadFailure)
	}
	if !ok {
		return content.AbsentLookup(nil)
	}
	doc, err := content.Decode(section, raw, content.WithSource(t.name))
	if err != nil {
		return content.MalformedLookup(err)
	}
	return content.FoundLookup(doc)
}

// Set stores doc as JSON unless a write failure is injected.
func (t *Tier) Set(_ context.Context, section content.Section, doc content.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sets++
	if t.writeErr != nil {
		return t.writeErr
	}
	t.records[section] = raw
	t.lastWrite = section
	return nil
}

// PutRaw stores payload verbatim, bypassing validation.
func (t *Tier) PutRaw(section content.Section, payload []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[section] = append([]byte(nil), payload...)
}

// Raw returns the stored payload for section.
func (t *Tier) Raw(section content.Section) ([]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	raw, ok := t.records[section]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), raw...), true
}

// Delete removes the stored payload for section.
func (t *Tier) Delete(section content.Section) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, section)
}

// FailWrites makes every Set return err. A nil err clears the failure.
func (t *Tier) FailWrites(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeErr = err
}

// FailReads makes every Get report Absent with ErrReadFailure.
func (t *Tier) FailReads(fail bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readFail = fail
}

// Calls reports how many times Get and Set were invoked.
func (t *Tier) Calls() (gets, sets int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gets, t.sets
}

// LastWrite returns the section of the most recent successful Set.
func (t *Tier) LastWrite() content.Section {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastWrite
}
