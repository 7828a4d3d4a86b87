// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncLogin(status string) // status: "success" or "failed"
	IncTokenRevoked()

	// Session cache metrics
	IncAuthCacheHit()
	IncAuthCacheMiss()

	// Nominee metrics
	IncNomineeCreated()
	IncNomineeUpdated()
	IncNomineeDeleted()
	AddVotes(delta int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
