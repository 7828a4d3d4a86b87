package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered uint64
	LoginsSucceeded uint64
	LoginsFailed    uint64
	TokensRevoked   uint64
	AuthCacheHits   uint64
	AuthCacheMisses uint64
	NomineesCreated uint64
	NomineesUpdated uint64
	NomineesDeleted uint64
	VotesCast       uint64
	VotesNet        int64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint
// and is handy in tests.
type InMemoryRecorder struct {
	usersRegistered atomic.Uint64
	loginsSucceeded atomic.Uint64
	loginsFailed    atomic.Uint64
	tokensRevoked   atomic.Uint64
	authCacheHits   atomic.Uint64
	authCacheMisses atomic.Uint64
	nomineesCreated atomic.Uint64
	nomineesUpdated atomic.Uint64
	nomineesDeleted atomic.Uint64
	votesCast       atomic.Uint64
	votesNet        atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered: m.usersRegistered.Load(),
		LoginsSucceeded: m.loginsSucceeded.Load(),
		LoginsFailed:    m.loginsFailed.Load(),
		TokensRevoked:   m.tokensRevoked.Load(),
		AuthCacheHits:   m.authCacheHits.Load(),
		AuthCacheMisses: m.authCacheMisses.Load(),
		NomineesCreated: m.nomineesCreated.Load(),
		NomineesUpdated: m.nomineesUpdated.Load(),
		NomineesDeleted: m.nomineesDeleted.Load(),
		VotesCast:       m.votesCast.Load(),
		VotesNet:        m.votesNet.Load(),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	m.usersRegistered.Add(1)
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == "success" {
		m.loginsSucceeded.Add(1)
		return
	}
	m.loginsFailed.Add(1)
}

// IncTokenRevoked increments the logout counter.
func (m *InMemoryRecorder) IncTokenRevoked() {
	m.tokensRevoked.Add(1)
}

// IncAuthCacheHit increments session cache hit counter.
func (m *InMemoryRecorder) IncAuthCacheHit() {
	m.authCacheHits.Add(1)
}

// IncAuthCacheMiss increments session cache miss counter.
func (m *InMemoryRecorder) IncAuthCacheMiss() {
	m.authCacheMisses.Add(1)
}

// IncNomineeCreated increments nominee created counter.
func (m *InMemoryRecorder) IncNomineeCreated() {
	m.nomineesCreated.Add(1)
}

// IncNomineeUpdated increments nominee updated counter.
func (m *InMemoryRecorder) IncNomineeUpdated() {
	m.nomineesUpdated.Add(1)
}

// IncNomineeDeleted increments nominee deleted counter.
func (m *InMemoryRecorder) IncNomineeDeleted() {
	m.nomineesDeleted.Add(1)
}

// AddVotes records one vote request and its net delta.
func (m *InMemoryRecorder) AddVotes(delta int64) {
	m.votesCast.Add(1)
	m.votesNet.Add(delta)
}
