// Package schema derives JSON Schema documents from the section shapes so
// the admin editor can build its forms.
package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	content "github.com/goliatone/go-content"
)

// Draft is the JSON Schema dialect emitted.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// For returns the schema of section's document shape.
func For(section content.Section) (map[string]any, error) {
	doc, ok := content.SiteContent{}.Document(section)
	if !ok {
		return nil, fmt.Errorf("%w: %q", content.ErrUnknownSection, section)
	}
	schema, err := Generate(doc)
	if err != nil {
		return nil, err
	}
	schema["$schema"] = Draft
	schema["title"] = string(section)
	return schema, nil
}

// All returns a schema per section keyed by section name.
func All() (map[string]any, error) {
	out := make(map[string]any, len(content.Sections()))
	for _, section := range content.Sections() {
		schema, err := For(section)
		if err != nil {
			return nil, err
		}
		out[string(section)] = schema
	}
	return out, nil
}

// Generate builds a schema from the static type of value. Fields without
// omitempty or omitzero are listed as required.
func Generate(value any) (map[string]any, error) {
	if value == nil {
		return map[string]any{"type": "null"}, nil
	}
	return buildSchema(reflect.TypeOf(value))
}

var timeType = reflect.TypeOf(time.Time{})

func buildSchema(rt reflect.Type) (map[string]any, error) {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	switch rt.Kind() {
	case reflect.Interface:
		return map[string]any{}, nil
	case reflect.Bool:
		return map[string]any{"type": "boolean"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}, nil
	case reflect.String:
		return map[string]any{"type": "string"}, nil
	case reflect.Struct:
		if rt == timeType {
			return map[string]any{"type": "string", "format": "date-time"}, nil
		}
		return schemaForStruct(rt)
	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("schema: map key type %s unsupported", rt.Key())
		}
		child, err := buildSchema(rt.Elem())
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "object", "additionalProperties": child}, nil
	case reflect.Slice, reflect.Array:
		if rt.Elem().Kind() == reflect.Uint8 {
			return map[string]any{"type": "string", "contentEncoding": "base64"}, nil
		}
		items, err := buildSchema(rt.Elem())
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items}, nil
	default:
		return nil, fmt.Errorf("schema: kind %s unsupported", rt.Kind())
	}
}

func schemaForStruct(rt reflect.Type) (map[string]any, error) {
	properties := map[string]any{}
	required := []string{}

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		omitempty := false
		if tag := field.Tag.Get("json"); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" || opt == "omitzero" {
					omitempty = true
				}
			}
		}

		child, err := buildSchema(field.Type)
		if err != nil {
			return nil, fmt.Errorf("schema: field %s: %w", name, err)
		}
		properties[name] = child
		if !omitempty {
			required = append(required, name)
		}
	}

	sort.Strings(required)
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}, nil
}
