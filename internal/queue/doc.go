// Package queue persists pipeline jobs in SQLite and provides the durable,
// at-least-once delivery backbone connecting the three processing stages.
//
// Items move through a linear status machine (pending → collecting →
// collected → rendering → rendered → producing → completed/failed); a stage's
// done-status is the next stage's start-status, so handing a finished payload
// to the next stage is just a status transition. Worker pools claim items
// atomically, heartbeat while processing, and stale items are reclaimed when
// heartbeats expire. Stage failures are retried with exponential backoff up
// to a configured attempt limit before an item is marked failed.
package queue
