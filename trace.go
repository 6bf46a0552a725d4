package content

import (
	"encoding/json"
)

// Names reported as the source of a resolved document.
const (
	SourceStore   = "store"
	SourceFile    = "file"
	SourceDefault = "default"
)

// Trace records how a read was resolved: every tier consulted, in order, and
// the one that served the document.
type Trace struct {
	Section Section      `json:"section"`
	Source  string       `json:"source"`
	Tiers   []TierLookup `json:"tiers"`
}

// TierLookup is one tier's contribution to a traced read.
type TierLookup struct {
	Tier    string       `json:"tier"`
	Status  LookupStatus `json:"status"`
	Skipped bool         `json:"skipped,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func (t *Trace) record(tier string, lookup Lookup) {
	entry := TierLookup{Tier: tier, Status: lookup.Status}
	if lookup.Err != nil {
		entry.Error = lookup.Err.Error()
	}
	t.Tiers = append(t.Tiers, entry)
}

func (t *Trace) skip(tier string) {
	t.Tiers = append(t.Tiers, TierLookup{Tier: tier, Status: Absent, Skipped: true})
}

// ToJSON serialises the trace for logging or transport.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON decodes a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
