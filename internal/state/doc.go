// Package state holds the latest polled data for every client-paged resource.
//
// The background poller writes with Update and the UI reads with Snapshot.
// A failed poll never discards the last good rows; it records the error and
// counts consecutive failures so the UI can show a resource as offline after
// two misses in a row. Version lets the UI skip re-feeding unchanged data to
// its table controllers.
package state
