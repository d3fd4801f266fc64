package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/pkg/model"
)

// Document wraps a raw schema payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document, rejecting empty payloads.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}
	return Document{source: src, raw: bytes.Clone(raw)}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return bytes.Clone(d.raw)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Decode parses the payload as JSON or YAML. Two shapes are accepted: a bare
// list of field descriptors, or an object with id/title/submitLabel/fields.
func (d Document) Decode() (model.Schema, error) {
	trimmed := bytes.TrimSpace(d.raw)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		if out, err := decodeJSON(trimmed); err == nil {
			return out, nil
		}
	}
	out, err := decodeYAML(trimmed)
	if err != nil {
		return model.Schema{}, fmt.Errorf("schema: parse %s: %w", d.Location(), err)
	}
	return out, nil
}

func decodeJSON(data []byte) (model.Schema, error) {
	if data[0] == '[' {
		var fields []model.Field
		if err := json.Unmarshal(data, &fields); err != nil {
			return model.Schema{}, err
		}
		return model.Schema{Fields: fields}, nil
	}
	var out model.Schema
	if err := json.Unmarshal(data, &out); err != nil {
		return model.Schema{}, err
	}
	return out, nil
}

func decodeYAML(data []byte) (model.Schema, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return model.Schema{}, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return model.Schema{}, errors.New("document has no content")
	}

	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		var fields []model.Field
		if err := node.Decode(&fields); err != nil {
			return model.Schema{}, err
		}
		return model.Schema{Fields: fields}, nil
	case yaml.MappingNode:
		var out model.Schema
		if err := node.Decode(&out); err != nil {
			return model.Schema{}, err
		}
		return out, nil
	default:
		return model.Schema{}, fmt.Errorf("expected a list of fields or a schema object (line %d)", node.Line)
	}
}
