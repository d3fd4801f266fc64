package openapi

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-dynform/pkg/model"
)

const (
	// Version is the OpenAPI version written by Export.
	Version = "3.0.3"

	extType          = "x-dynform-type"
	extOrder         = "x-dynform-order"
	extRegex         = "x-dynform-regex"
	extRegexMessage  = "x-dynform-regex-message"
	extOptions       = "x-dynform-options"
	extPlaceholder   = "x-dynform-placeholder"
	extAccept        = "x-dynform-accept"
	extMultiValue    = "x-dynform-multi-value"
	extMultiple      = "x-dynform-multiple"
	extSubmitLabel   = "x-dynform-submit-label"
	extRequired      = "x-dynform-required"
	defaultPath      = "/"
	defaultOperation = "submitForm"
)

var contentTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

type exportConfig struct {
	path        string
	title       string
	version     string
	servers     []string
	operationID string
}

// ExportOption configures Export.
type ExportOption func(*exportConfig)

// WithPath sets the path the submit operation is mounted on. Defaults to "/".
func WithPath(path string) ExportOption {
	return func(cfg *exportConfig) {
		if path != "" {
			cfg.path = path
		}
	}
}

// WithInfo sets the document title and version.
func WithInfo(title, version string) ExportOption {
	return func(cfg *exportConfig) {
		if title != "" {
			cfg.title = title
		}
		if version != "" {
			cfg.version = version
		}
	}
}

// WithServer adds a server URL to the document.
func WithServer(url string) ExportOption {
	return func(cfg *exportConfig) {
		if url != "" {
			cfg.servers = append(cfg.servers, url)
		}
	}
}

// Export builds an OpenAPI document with one POST operation whose request body
// is the submission payload of schema. The document is validated before it is
// returned.
func Export(ctx context.Context, schema model.Schema, options ...ExportOption) (*openapi3.T, error) {
	cfg := exportConfig{
		path:        defaultPath,
		title:       schema.Title,
		version:     "1.0.0",
		operationID: schema.ID,
	}
	if cfg.title == "" {
		cfg.title = "Form"
	}
	if cfg.operationID == "" {
		cfg.operationID = defaultOperation
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	payload, err := PayloadSchema(schema)
	if err != nil {
		return nil, err
	}
	name := SchemaName(schema)

	op := openapi3.NewOperation()
	op.OperationID = cfg.operationID
	op.Summary = schema.Title
	if schema.SubmitLabel != "" {
		op.Extensions = map[string]any{extSubmitLabel: schema.SubmitLabel}
	}
	ref := openapi3.NewSchemaRef("#/components/schemas/"+name, payload)
	body := openapi3.NewRequestBody().
		WithRequired(true).
		WithContent(openapi3.NewContentWithSchemaRef(ref, contentTypes))
	op.RequestBody = &openapi3.RequestBodyRef{Value: body}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Form submitted successfully.")}),
		openapi3.WithStatus(422, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Submission rejected; the form is re-rendered with field errors.")}),
	)

	doc := &openapi3.T{
		OpenAPI: Version,
		Info:    &openapi3.Info{Title: cfg.title, Version: cfg.version},
		Paths:   openapi3.NewPaths(openapi3.WithPath(cfg.path, &openapi3.PathItem{Post: op})),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{name: openapi3.NewSchemaRef("", payload)},
		},
	}
	for _, url := range cfg.servers {
		doc.AddServer(&openapi3.Server{URL: url})
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: export %q: %w", name, err)
	}
	return doc, nil
}

// SchemaName is the component name of the submission payload schema.
func SchemaName(schema model.Schema) string {
	base := schema.ID
	if base == "" {
		base = "form"
	}
	var b strings.Builder
	upper := true
	for _, r := range base {
		if r == '-' || r == '_' || r == ' ' || r == '.' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	b.WriteString("Submission")
	return b.String()
}

// PayloadSchema describes the JSON value map an accepted submission produces.
// Every field is a property: the gate always serializes the full map.
func PayloadSchema(schema model.Schema) (*openapi3.Schema, error) {
	out := openapi3.NewObjectSchema()
	out.Title = schema.Title
	closed := false
	out.AdditionalProperties = openapi3.AdditionalProperties{Has: &closed}
	for idx, field := range schema.Fields {
		property, err := fieldSchema(field)
		if err != nil {
			return nil, err
		}
		property.Extensions[extOrder] = idx
		out.WithProperty(field.Name, property)
		out.Required = append(out.Required, field.Name)
	}
	return out, nil
}

func fieldSchema(field model.Field) (*openapi3.Schema, error) {
	var out *openapi3.Schema
	switch {
	case field.IsList():
		items := openapi3.NewStringSchema().WithEnum(enumValues(field, false)...)
		out = openapi3.NewArraySchema().WithItems(items)
		out.UniqueItems = true
		if field.Required || field.IsMultiValue() {
			out.WithMinItems(1)
		}
	case field.Type.HasOptions():
		out = openapi3.NewStringSchema().WithEnum(enumValues(field, !field.Required)...)
	default:
		out = openapi3.NewStringSchema()
		if field.Required {
			out.WithMinLength(1)
		}
	}

	out.Title = field.Label
	out.Extensions = map[string]any{extType: string(field.Type), extRequired: field.Required}

	switch field.Type {
	case model.FieldTypePassword:
		out.Format = "password"
	case model.FieldTypeFile:
		if len(field.FileFormatSupported) > 0 {
			out.Pattern = filePattern(field.FileFormatSupported, field.Required)
			out.Extensions[extAccept] = field.FileFormatSupported
		}
	case model.FieldTypeText:
		if strings.TrimSpace(field.Regex) != "" {
			if _, err := regexp.Compile(field.Regex); err != nil {
				return nil, fmt.Errorf("openapi: field %q: compile regex: %w", field.Name, err)
			}
			out.Pattern = field.Regex
			if !field.Required {
				out.Pattern = `^$|(?:` + field.Regex + `)`
			}
		}
	}

	if field.Regex != "" {
		out.Extensions[extRegex] = field.Regex
	}
	if len(field.RegexMessage) > 0 {
		out.Extensions[extRegexMessage] = []string(field.RegexMessage)
	}
	if len(field.Options) > 0 {
		out.Extensions[extOptions] = field.Options
	}
	if field.Placeholder != "" {
		out.Extensions[extPlaceholder] = field.Placeholder
	}
	if field.MultiValue != nil {
		out.Extensions[extMultiValue] = *field.MultiValue
	}
	if field.MultipleSelect {
		out.Extensions[extMultiple] = true
	}
	return out, nil
}

// enumValues lists the option values, plus "" when the field may be left
// unset.
func enumValues(field model.Field, allowEmpty bool) []any {
	out := make([]any, 0, len(field.Options)+1)
	if allowEmpty {
		out = append(out, "")
	}
	for _, option := range field.Options {
		out = append(out, option.Value)
	}
	return out
}

func filePattern(formats []string, required bool) string {
	alternatives := make([]string, 0, len(formats))
	for _, format := range formats {
		alternatives = append(alternatives, "(?i:"+regexp.QuoteMeta(format)+")")
	}
	pattern := `\.(` + strings.Join(alternatives, "|") + `)$`
	if !required {
		pattern = `^$|` + pattern
	}
	return pattern
}
