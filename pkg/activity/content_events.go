package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the content service.
const (
	VerbContentUpdated     = "content.updated"
	VerbContentFileChanged = "content.file.changed"
	VerbMediaUploaded      = "media.uploaded"
	VerbContactSubmitted   = "contact.submitted"
	VerbRedeployTriggered  = "redeploy.triggered"
)

// Object types attached to content events.
const (
	ObjectSection    = "content.section"
	ObjectAsset      = "media.asset"
	ObjectInquiry    = "contact.inquiry"
	ObjectDeployment = "deployment"
)

// ContentEventInput describes a section write.
type ContentEventInput struct {
	ActorID    string
	Section    string
	Tiers      []string
	Source     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildContentUpdatedEvent describes a successful section write. Tiers lists
// the tiers that accepted it.
func BuildContentUpdatedEvent(input ContentEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if len(input.Tiers) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["tiers"] = append([]string{}, input.Tiers...)
	}
	if input.Source != "" {
		metadata = ensureMetadata(metadata)
		metadata["source"] = input.Source
	}
	return Event{
		Verb:       VerbContentUpdated,
		ActorID:    strings.TrimSpace(input.ActorID),
		ObjectType: ObjectSection,
		ObjectID:   fallback(input.Section, ObjectSection),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// BuildFileChangedEvent describes an edit to a section file made outside the
// service.
func BuildFileChangedEvent(section, path string, occurredAt time.Time) Event {
	metadata := map[string]any{}
	if path != "" {
		metadata["path"] = path
	}
	return Event{
		Verb:       VerbContentFileChanged,
		ObjectType: ObjectSection,
		ObjectID:   fallback(section, ObjectSection),
		Metadata:   metadata,
		OccurredAt: occurredAt,
	}
}

// BuildMediaUploadedEvent describes an asset stored on the media host.
func BuildMediaUploadedEvent(actorID, publicID, url string) Event {
	metadata := map[string]any{}
	if url != "" {
		metadata["url"] = url
	}
	return Event{
		Verb:       VerbMediaUploaded,
		ActorID:    strings.TrimSpace(actorID),
		ObjectType: ObjectAsset,
		ObjectID:   fallback(publicID, ObjectAsset),
		Metadata:   metadata,
	}
}

// BuildContactSubmittedEvent describes an inquiry relayed to the form
// service. Only the country is kept; personal fields stay out of the log.
func BuildContactSubmittedEvent(inquiryID, country string) Event {
	metadata := map[string]any{}
	if country != "" {
		metadata["country"] = country
	}
	return Event{
		Verb:       VerbContactSubmitted,
		ObjectType: ObjectInquiry,
		ObjectID:   fallback(inquiryID, ObjectInquiry),
		Metadata:   metadata,
	}
}

// BuildRedeployTriggeredEvent describes a deployment request.
func BuildRedeployTriggeredEvent(actorID, deploymentID, reason string) Event {
	metadata := map[string]any{}
	if reason != "" {
		metadata["reason"] = reason
	}
	return Event{
		Verb:       VerbRedeployTriggered,
		ActorID:    strings.TrimSpace(actorID),
		ObjectType: ObjectDeployment,
		ObjectID:   fallback(deploymentID, ObjectDeployment),
		Metadata:   metadata,
	}
}

func fallback(value, def string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return def
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
