package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncUserRegistered() {}

func (n *NoopRecorder) IncLogin(string) {}

func (n *NoopRecorder) IncTokenRevoked() {}

func (n *NoopRecorder) IncAuthCacheHit() {}

func (n *NoopRecorder) IncAuthCacheMiss() {}

func (n *NoopRecorder) IncNomineeCreated() {}

func (n *NoopRecorder) IncNomineeUpdated() {}

func (n *NoopRecorder) IncNomineeDeleted() {}

func (n *NoopRecorder) AddVotes(int64) {}
