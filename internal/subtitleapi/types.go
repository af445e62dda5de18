package subtitleapi

import (
	"fmt"
	"strings"
)

// VideoRequest is the JSON body sent to the generation endpoint.
type VideoRequest struct {
	URL string `json:"url"`
}

// SubtitleResponse is the JSON payload returned on success. SRTContent is nil
// when the server omitted the field or sent null.
type SubtitleResponse struct {
	Success    bool    `json:"success"`
	SRTContent *string `json:"srtContent"`
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code    int
	Message string
	Body    string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("subtitleapi: unexpected status %d %s", e.Code, e.Message)
}

// HasBody reports whether the server sent a non-blank error body.
func (e *StatusError) HasBody() bool {
	return e != nil && strings.TrimSpace(e.Body) != ""
}

// DecodeError reports a 2xx response whose body was not valid JSON for
// SubtitleResponse.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	if e == nil || e.Err == nil {
		return "subtitleapi: decode response"
	}
	return "subtitleapi: decode response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
