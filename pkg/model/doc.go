// Package model defines the declarative form schema consumed by the validation
// layer and the renderers. A Schema is an ordered list of Field descriptors;
// each descriptor carries a closed FieldType tag that both the validator
// derivation (pkg/validation) and the renderer dispatch (pkg/renderers/...)
// switch on. Values held by a form are modelled by Value, which is either a
// single string or a list of strings for checkbox groups and multi-selects.
//
// Schemas are plain data. Call Schema.Validate to enforce the structural
// invariants (unique names, declared options for option-bearing types) before
// handing a schema to anything that derives behaviour from it.
package model
