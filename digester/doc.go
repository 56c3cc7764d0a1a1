// Package digester computes file checksums. A file is streamed
// exactly once and fed to every requested algorithm in a single
// pass, so large files are not re-read per algorithm.
package digester
