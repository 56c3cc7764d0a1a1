// Package runner adapts a declarative run configuration into a
// checksum execution: it builds the entity list and the
// configured targets, invokes the engine, and leaves exit-code
// translation to the caller.
package runner
