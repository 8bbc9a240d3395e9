// Package errs defines the error values the HTTP layer knows how to render.
//
// Every recoverable condition in the form pipeline is detected explicitly
// and turned into an *HTTPError at the point of detection. Anything else is
// rendered as a generic 500 by the global error handler.
package errs
