// Package openapi converts field schemas to and from OpenAPI 3 documents using
// kin-openapi. Export describes the submission payload of a form as the JSON
// request body of a single POST operation, Import reads a field schema back
// out of an operation's request body, and Validator checks accepted payloads
// against the exported contract.
//
// Descriptor keys that have no OpenAPI equivalent travel as x-dynform-*
// extensions so an exported document imports back into the same schema.
package openapi
