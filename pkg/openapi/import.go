package openapi

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// ErrOperationNotFound is returned when no operation with a request body
// matches the requested operation id.
var ErrOperationNotFound = errors.New("openapi: operation not found")

type importConfig struct {
	operationID string
	loader      *schema.Loader
}

// ImportOption configures Import.
type ImportOption func(*importConfig)

// WithOperation selects the operation whose request body becomes the form.
// Without it the first operation declaring a request body is used, POST
// operations first.
func WithOperation(id string) ImportOption {
	return func(cfg *importConfig) {
		cfg.operationID = id
	}
}

// WithSchemaLoader finalizes imported schemas with loader so its decorators
// apply. Defaults to schema.NewLoader().
func WithSchemaLoader(loader *schema.Loader) ImportOption {
	return func(cfg *importConfig) {
		if loader != nil {
			cfg.loader = loader
		}
	}
}

// Import parses an OpenAPI 3 document (JSON or YAML) and converts the
// selected operation's request body into a field schema.
func Import(ctx context.Context, data []byte, options ...ImportOption) (model.Schema, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return model.Schema{}, fmt.Errorf("openapi: load document: %w", err)
	}
	return FromDocument(ctx, doc, options...)
}

// ImportDocument imports a document fetched through the schema loader, so
// OpenAPI files and URLs share the file/fs/URL source handling.
func ImportDocument(ctx context.Context, doc schema.Document, options ...ImportOption) (model.Schema, error) {
	out, err := Import(ctx, doc.Raw(), options...)
	if err != nil {
		return model.Schema{}, fmt.Errorf("%w (%s)", err, doc.Location())
	}
	return out, nil
}

// FromDocument converts an already loaded document.
func FromDocument(ctx context.Context, doc *openapi3.T, options ...ImportOption) (model.Schema, error) {
	if doc == nil {
		return model.Schema{}, errors.New("openapi: document is nil")
	}
	if err := ctx.Err(); err != nil {
		return model.Schema{}, err
	}
	cfg := importConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.loader == nil {
		cfg.loader = schema.NewLoader()
	}

	op, err := findOperation(doc, cfg.operationID)
	if err != nil {
		return model.Schema{}, err
	}
	body := requestSchema(op.RequestBody.Value)
	if body == nil || len(body.Properties) == 0 {
		return model.Schema{}, fmt.Errorf("openapi: operation %q has no object request body", op.OperationID)
	}

	out := model.Schema{ID: op.OperationID, Title: op.Summary}
	if out.Title == "" && doc.Info != nil {
		out.Title = doc.Info.Title
	}
	extension(op.Extensions, extSubmitLabel, &out.SubmitLabel)

	type entry struct {
		order int
		field model.Field
	}
	entries := make([]entry, 0, len(body.Properties))
	for name, ref := range body.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		field, err := fieldFromSchema(name, ref.Value, slices.Contains(body.Required, name))
		if err != nil {
			return model.Schema{}, err
		}
		order := len(body.Properties)
		extension(ref.Value.Extensions, extOrder, &order)
		entries = append(entries, entry{order: order, field: field})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Or(cmp.Compare(a.order, b.order), cmp.Compare(a.field.Name, b.field.Name))
	})
	for _, e := range entries {
		out.Fields = append(out.Fields, e.field)
	}

	return cfg.loader.Finalize(out)
}

func findOperation(doc *openapi3.T, id string) (*openapi3.Operation, error) {
	if doc.Paths == nil {
		return nil, ErrOperationNotFound
	}
	methods := []string{http.MethodPost, http.MethodPut, http.MethodPatch}
	paths := slices.Sorted(maps.Keys(doc.Paths.Map()))
	for _, method := range methods {
		for _, path := range paths {
			item := doc.Paths.Value(path)
			if item == nil {
				continue
			}
			op := item.GetOperation(method)
			if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
				continue
			}
			if id == "" || op.OperationID == id {
				return op, nil
			}
		}
	}
	if id != "" {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, id)
	}
	return nil, ErrOperationNotFound
}

func requestSchema(body *openapi3.RequestBody) *openapi3.Schema {
	for _, mediaType := range contentTypes {
		if mt := body.Content.Get(mediaType); mt != nil && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func fieldFromSchema(name string, prop *openapi3.Schema, listedRequired bool) (model.Field, error) {
	field := model.Field{Name: name, Label: prop.Title, Required: listedRequired}
	extension(prop.Extensions, extRequired, &field.Required)

	var fieldType string
	if extension(prop.Extensions, extType, &fieldType) {
		field.Type = model.FieldType(fieldType)
	} else {
		inferred, err := inferType(name, prop)
		if err != nil {
			return model.Field{}, err
		}
		field.Type = inferred
	}

	if !extension(prop.Extensions, extRegex, &field.Regex) && field.Type == model.FieldTypeText {
		field.Regex = prop.Pattern
	}
	var messages []string
	if extension(prop.Extensions, extRegexMessage, &messages) {
		field.RegexMessage = model.Messages(messages)
	}
	if !extension(prop.Extensions, extOptions, &field.Options) {
		field.Options = optionsFromEnum(prop)
	}
	extension(prop.Extensions, extPlaceholder, &field.Placeholder)
	extension(prop.Extensions, extAccept, &field.FileFormatSupported)
	extension(prop.Extensions, extMultiple, &field.MultipleSelect)

	var multiValue bool
	if extension(prop.Extensions, extMultiValue, &multiValue) {
		field.MultiValue = model.Bool(multiValue)
	} else if field.Type == model.FieldTypeCheckbox {
		field.MultiValue = model.Bool(prop.MinItems > 0)
	}
	return field, nil
}

func inferType(name string, prop *openapi3.Schema) (model.FieldType, error) {
	switch {
	case prop.Type.Is(openapi3.TypeArray):
		if prop.Items == nil || prop.Items.Value == nil || len(prop.Items.Value.Enum) == 0 {
			return "", fmt.Errorf("openapi: property %q: arrays need an item enum", name)
		}
		return model.FieldTypeCheckbox, nil
	case prop.Type.Is(openapi3.TypeObject):
		return "", fmt.Errorf("openapi: property %q: nested objects are not supported", name)
	case len(prop.Enum) > 0:
		return model.FieldTypeSelect, nil
	case prop.Format == "password":
		return model.FieldTypePassword, nil
	case prop.Format == "binary":
		return model.FieldTypeFile, nil
	default:
		return model.FieldTypeText, nil
	}
}

func optionsFromEnum(prop *openapi3.Schema) []model.Option {
	enum := prop.Enum
	if prop.Items != nil && prop.Items.Value != nil && len(prop.Items.Value.Enum) > 0 {
		enum = prop.Items.Value.Enum
	}
	var out []model.Option
	for _, raw := range enum {
		value, ok := raw.(string)
		if !ok || value == "" {
			continue
		}
		out = append(out, model.Option{Label: model.Humanize(value), Value: value})
	}
	return out
}

// extension decodes the extension value under key into target. Values keep
// their Go type when the document was built in process and arrive as decoded
// JSON when it was loaded, so both go through a JSON round trip.
func extension(ext map[string]any, key string, target any) bool {
	raw, ok := ext[key]
	if !ok || raw == nil {
		return false
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, target) == nil
}
