// Package server implements the HTTP and websocket transport in front of
// the Bloggle session core.
//
// The implementation is organized into specialized files for configuration,
// clients, routing, origin checks, and HTTP handlers to keep the codebase
// maintainable and testable as the project grows.
package server
