package content

import (
	"encoding/json"
	"fmt"
)

// LookupStatus tags the outcome of a single tier read.
type LookupStatus int

const (
	// Absent means the tier holds nothing for the section, or could not be
	// reached.
	Absent LookupStatus = iota
	// Found means the tier returned a well-formed document.
	Found
	// Malformed means the tier returned bytes that do not decode into the
	// section shape. The resolver treats it like Absent.
	Malformed
)

func (s LookupStatus) String() string {
	switch s {
	case Found:
		return "found"
	case Malformed:
		return "malformed"
	default:
		return "absent"
	}
}

// MarshalJSON renders the status by name.
func (s LookupStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Lookup is the tagged result returned by tier reads.
type Lookup struct {
	Status   LookupStatus
	Document Document
	Err      error
}

// FoundLookup wraps a decoded document.
func FoundLookup(doc Document) Lookup {
	if doc == nil {
		return Lookup{Status: Absent}
	}
	return Lookup{Status: Found, Document: doc}
}

// AbsentLookup reports a miss. err is optional and only used for logging.
func AbsentLookup(err error) Lookup {
	return Lookup{Status: Absent, Err: err}
}

// MalformedLookup reports a document that failed to decode or validate.
func MalformedLookup(err error) Lookup {
	return Lookup{Status: Malformed, Err: err}
}

// Ok reports whether the lookup carries a document.
func (l Lookup) Ok() bool {
	return l.Status == Found && l.Document != nil
}

// UnmarshalJSON accepts the names produced by MarshalJSON.
func (s *LookupStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "found":
		*s = Found
	case "malformed":
		*s = Malformed
	case "absent", "":
		*s = Absent
	default:
		return fmt.Errorf("content: unknown lookup status %q", name)
	}
	return nil
}
