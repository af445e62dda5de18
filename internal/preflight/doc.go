// Package preflight provides readiness checks for the filesystem paths and
// the subtitle endpoint that subgen depends on.
//
// `subgen check` prints RunAll's results; `subgen generate` runs the
// directory checks before submitting so a doomed save is reported up front.
package preflight
