// Package validation derives a per-field ruleset from a form schema.
//
// Derive runs once per schema and compiles every pattern up front; the
// resulting Ruleset is immutable and safe to share between goroutines. Each
// Rule applies, in order: the required-check, then exactly one of the
// type-specific checks (none for passwords, option membership for radios,
// non-empty selection for multi-value checkbox groups, regex match for
// everything else that declares a pattern), then the select option and file
// extension checks.
package validation
