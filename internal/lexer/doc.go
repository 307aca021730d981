// Package lexer defines tokens, fold regions and the background pipeline
// that scans document snapshots.
//
// A Language turns a rune snapshot into a Result. The Pipeline runs at most
// one scan per document at a time: a Tokenize call during a scan replaces
// the snapshot and restarts the scan, and only the scan that finishes
// without a restart request is delivered to the callback.
//
// Scanning never reads the live buffer. Callers take a snapshot under
// their own lock and compare Result.Length with the current length to
// detect staleness.
package lexer
