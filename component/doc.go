// Package component defines lifecycle-managed infrastructure for the
// gateway: the object store, the redis cache and the HTTP server.
//
// Components are started in registration order and stopped in reverse. The
// registry also aggregates Health for the /health endpoint; a component that
// is configured off reports healthy with a "disabled" message so optional
// backends never fail the check.
package component
