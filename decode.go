package content

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-content/internal/hydrate"
)

// PayloadHook normalises a raw section payload before it is decoded.
type PayloadHook func(section Section, payload map[string]any) (map[string]any, error)

// DecodeOption configures Decode.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	source string
	hooks  []PayloadHook
	strict bool
}

// WithSource labels decode errors with the payload origin.
func WithSource(source string) DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.source = source
	}
}

// WithPayloadHook runs hook on the untyped payload prior to decoding.
func WithPayloadHook(hook PayloadHook) DecodeOption {
	return func(cfg *decodeConfig) {
		if hook != nil {
			cfg.hooks = append(cfg.hooks, hook)
		}
	}
}

// WithStrictFields rejects payload keys that do not belong to the section
// shape.
func WithStrictFields() DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.strict = true
	}
}

// Decode turns raw JSON into the typed document for section and runs the
// section validator. Every failure is reported as a *ValidationError.
func Decode(section Section, raw []byte, opts ...DecodeOption) (Document, error) {
	cfg := decodeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	ctx := hydrate.Context{Section: string(section), Source: cfg.source}

	var (
		doc Document
		err error
	)
	switch section {
	case SectionHero:
		doc, err = decodeAs[HeroContent](ctx, raw, cfg)
	case SectionPortfolio:
		doc, err = decodeAs[PortfolioContent](ctx, raw, cfg)
	case SectionContact:
		doc, err = decodeAs[ContactContent](ctx, raw, cfg)
	default:
		return nil, ErrUnknownSection
	}
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return nil, validationErr
		}
		return nil, &ValidationError{Section: section, Reason: "could not be decoded", Err: err}
	}
	return doc, nil
}

// DecodePayload is Decode for payloads that were already parsed into a map,
// such as the data field of an editor request.
func DecodePayload(section Section, payload map[string]any, opts ...DecodeOption) (Document, error) {
	if payload == nil {
		return nil, invalid(section, "", "data is required")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, &ValidationError{Section: section, Reason: "could not be encoded", Err: err}
	}
	return Decode(section, raw, opts...)
}

func decodeAs[T Document](ctx hydrate.Context, raw []byte, cfg decodeConfig) (Document, error) {
	options := make([]hydrate.DecoderOption[T], 0, len(cfg.hooks)+2)
	for _, hook := range cfg.hooks {
		hook := hook
		options = append(options, hydrate.WithPreHook[T](func(c hydrate.Context, payload map[string]any) (map[string]any, error) {
			return hook(Section(c.Section), payload)
		}))
	}
	if cfg.strict {
		options = append(options, hydrate.WithDisallowUnknownFields[T]())
	}
	options = append(options, hydrate.WithPostHook[T](func(_ hydrate.Context, doc *T) error {
		return (*doc).Validate()
	}))
	doc, err := hydrate.NewDecoder[T](options...).DecodeBytes(ctx, raw)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// AssignItemIDs is a PayloadHook that fills blank portfolio item ids with
// random UUIDs so editors can append items without inventing keys.
func AssignItemIDs(section Section, payload map[string]any) (map[string]any, error) {
	if section != SectionPortfolio {
		return payload, nil
	}
	items, ok := payload["items"].([]any)
	if !ok {
		return payload, nil
	}
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id, _ := item["id"].(string)
		if strings.TrimSpace(id) == "" {
			item["id"] = uuid.NewString()
		}
	}
	return payload, nil
}
