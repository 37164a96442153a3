// Package main hosts the Fairway CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into IPC calls
// against the daemon, queue maintenance operations, and configuration
// scaffolding. Queue commands fall back to direct store access when the
// daemon is offline so the queue stays inspectable at all times.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
