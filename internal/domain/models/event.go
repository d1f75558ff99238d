package models

import "time"

// Snapshot sources.
const (
	SourceRequest   = "request"
	SourceSkipCache = "skip_cache"
	SourceScheduler = "scheduler"
)

// SnapshotEvent announces that a symbol's cached record was rewritten.
type SnapshotEvent struct {
	ID      string    `json:"id"`
	Symbol  string    `json:"symbol"`
	Source  string    `json:"source"`
	Modules int       `json:"modules"`
	Bytes   int       `json:"bytes"`
	At      time.Time `json:"at"`
}
