// Package execution orchestrates checksum runs. An engine
// resolves the configured algorithms, digests every entity in
// input order, fans results out to the configured targets, and
// applies one of two error policies: abort on the first error
// or collect failures and keep going.
package execution
