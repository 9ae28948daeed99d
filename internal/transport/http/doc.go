// Package http contains the HTTP handlers for the license server: the
// bot-facing validation endpoint, the operator admin surface and the
// health endpoints. Handlers decode and validate requests, delegate to
// the service layer and translate domain errors into the standard
// error envelope.
package http
