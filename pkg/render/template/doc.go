// Package template defines the engine contract renderers use to execute
// templates, independent of the concrete template language.
package template
