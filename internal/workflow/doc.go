// Package workflow orchestrates the pipeline: worker pools per stage claim
// queue items atomically, run the stage handlers under heartbeat monitoring,
// and apply the queue's retry and backoff policy on failure.
package workflow
