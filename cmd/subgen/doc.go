// Command subgen submits a video URL to a subtitle generation service and
// saves the returned SRT file.
//
// `subgen generate` runs one request from the command line, `subgen tui`
// opens the interactive screen, and the history, check and config commands
// inspect local state.
package main
