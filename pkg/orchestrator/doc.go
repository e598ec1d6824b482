// Package orchestrator wires a form configuration into a ready-to-use form
// session: the schema aggregator, the initial-value deriver and the
// visibility-aware page validation, for either create or edit mode.
package orchestrator
