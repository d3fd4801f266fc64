package schema

import (
	"embed"
	"io/fs"
	"sync"

	"github.com/goliatone/go-dynform/pkg/model"
)

//go:embed builtin/*.yaml
var builtinSchemas embed.FS

// DefaultName is the embedded schema used when no source is configured.
const DefaultName = "signup.yaml"

// BuiltinFS exposes the embedded schema documents.
func BuiltinFS() fs.FS {
	sub, err := fs.Sub(builtinSchemas, "builtin")
	if err != nil {
		return builtinSchemas
	}
	return sub
}

var (
	defaultOnce   sync.Once
	defaultSchema model.Schema
	defaultErr    error
)

// Default returns the embedded sign-up schema, decorated and validated.
func Default() (model.Schema, error) {
	defaultOnce.Do(func() {
		raw, err := fs.ReadFile(BuiltinFS(), DefaultName)
		if err != nil {
			defaultErr = err
			return
		}
		doc, err := NewDocument(SourceFromFS(DefaultName), raw)
		if err != nil {
			defaultErr = err
			return
		}
		defaultSchema, defaultErr = NewLoader().Build(doc)
	})
	return cloneSchema(defaultSchema), defaultErr
}

func cloneSchema(in model.Schema) model.Schema {
	out := in
	out.Fields = make([]model.Field, len(in.Fields))
	copy(out.Fields, in.Fields)
	return out
}
