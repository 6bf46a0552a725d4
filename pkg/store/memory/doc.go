// Package memory provides an in-process content tier for tests, examples and
// the CLI dry-run mode.
//
// Documents are held as the JSON bytes a real backend would return, so reads
// go through the same decode and validation path as the KV and file tiers.
// Raw payloads and failures can be injected to exercise the resolver's
// Absent / Malformed / write-failure handling:
//
//	tier := memory.New("store")
//	tier.PutRaw(content.SectionHero, []byte(`{"title":""}`)) // Malformed
//	tier.FailWrites(errors.New("quota exceeded"))
package memory
