package generation

import "time"

// Status names the lifecycle variant a State represents.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// FailureKind classifies an error state. It is diagnostic only; Message is
// the user-facing text.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureValidation  FailureKind = "validation"
	FailureApplication FailureKind = "application"
	FailureTransport   FailureKind = "transport"
)

// User-facing messages.
const (
	MessageInvalidAPIURL   = "Invalid API URL format."
	MessageInvalidVideoURL = "Invalid Video URL format."
	MessageEmptyBody       = "Empty response body from server"
	MessageUnexpected      = "Network or unexpected error"
	MessageNoErrorDetails  = "No error details"
)

// Request is the pair of strings a caller supplied to Generate.
type Request struct {
	APIURL   string
	VideoURL string
}

// State is an immutable snapshot of the lifecycle. Content is set only for
// StatusSuccess; Message and Kind only for StatusError.
type State struct {
	Status    Status
	Content   string
	Message   string
	Kind      FailureKind
	Request   Request
	RequestID string
	At        time.Time
}

// Idle returns the initial state.
func Idle() State {
	return State{Status: StatusIdle}
}

func loading(req Request) State {
	return State{Status: StatusLoading, Request: req}
}

func success(content string) State {
	return State{Status: StatusSuccess, Content: content}
}

func failure(kind FailureKind, message string) State {
	return State{Status: StatusError, Kind: kind, Message: message}
}

// Terminal reports whether s ends a request.
func (s State) Terminal() bool {
	return s.Status == StatusSuccess || s.Status == StatusError
}

// IsLoading reports whether a request is in flight.
func (s State) IsLoading() bool {
	return s.Status == StatusLoading
}

// MessageMissingFields is shown by front ends when an input is left empty.
// Generate itself never produces it.
const MessageMissingFields = "Please fill all fields"

// FieldsPresent reports whether both inputs were supplied. Front ends check
// this before calling Generate.
func FieldsPresent(apiURL, videoURL string) bool {
	return apiURL != "" && videoURL != ""
}
