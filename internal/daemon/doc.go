// Package daemon coordinates background processing and enforces
// single-instance execution through a file lock.
package daemon
