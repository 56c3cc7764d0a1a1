// Package algorithm maps canonical checksum algorithm names to
// streaming hash constructors. Unknown names are rejected
// deterministically so a bad configuration fails before any file
// is read.
package algorithm
