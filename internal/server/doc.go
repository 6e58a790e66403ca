// Package server owns the HTTP surface of the buffer service.
//
// Ownership boundary:
// - route registration
// - request/response wire encoding (base64 over JSON)
// - sentinel error to status code mapping
//
// The server does not own codec semantics or storage; it composes the
// codec packages and internal/store.
package server
