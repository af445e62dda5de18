// Package generation owns the subtitle request lifecycle.
//
// A Coordinator holds exactly one State at a time (idle, loading, success or
// error) and replaces it whole on every transition. Generate validates the
// user-supplied URLs, calls the Transport, maps the outcome to a terminal
// state and delivers each state to subscribed observers in registration
// order. Generate never returns an error: every failure becomes an error
// state and the coordinator stays reusable.
package generation
