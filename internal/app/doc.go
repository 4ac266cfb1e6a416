// Package app contains the application logic behind the command line. It
// loads manifests, composes the requested type on an engine wired with the
// metrics and relay bundles, and invokes methods on a fresh instance,
// independent of any specific entrypoint.
package app
