// Package subtitleapi is the HTTP client for the remote subtitle generation
// service.
//
// A single operation is exposed: GenerateSubtitles POSTs a JSON body naming a
// video URL to "{base}generate-subtitles" and decodes the SRT payload. Non-2xx
// responses surface as *StatusError and malformed payloads as *DecodeError so
// callers can tell server-side rejections apart from network failures.
package subtitleapi
