package flowsmonitor

import (
	"sort"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/monitor"
)

// EndpointStatus is the latest known state of one monitored endpoint.
type EndpointStatus struct {
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	Iterations   int       `json:"iterations"`
	Failures     int       `json:"failures"`
	Changes      int       `json:"changes"`
	LastOutcome  string    `json:"last_outcome,omitempty"`
	LastPoll     time.Time `json:"last_poll"`
	LastSuccess  time.Time `json:"last_success"`
	SnapshotTime time.Time `json:"snapshot_time"`
	Records      int       `json:"records"`
	DataHash     string    `json:"data_hash,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
}

// StatusBoard collects iteration results from every loop. It is safe for
// concurrent use.
type StatusBoard struct {
	mu        sync.RWMutex
	endpoints map[string]*EndpointStatus
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{endpoints: make(map[string]*EndpointStatus)}
}

// Register adds an endpoint before its first iteration.
func (b *StatusBoard) Register(name, url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.endpoints[name]; !ok {
		b.endpoints[name] = &EndpointStatus{Name: name, URL: url}
	}
}

// ObserveIteration implements monitor.Recorder.
func (b *StatusBoard) ObserveIteration(endpoint string, r monitor.IterationResult) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.endpoints[endpoint]
	if !ok {
		st = &EndpointStatus{Name: endpoint}
		b.endpoints[endpoint] = st
	}
	st.Iterations++
	st.LastOutcome = r.Outcome.String()
	st.LastPoll = r.Started
	if r.Outcome != monitor.OutcomeOK {
		st.Failures++
		if r.Err != nil {
			st.LastError = r.Err.Error()
		}
		return
	}
	st.LastError = ""
	st.LastSuccess = r.Started
	st.SnapshotTime = r.SnapshotTime
	st.Records = r.Report.TotalCount
	st.DataHash = r.Report.Digest.String()
	if r.Report.HasChanges {
		st.Changes++
	}
}

// Endpoints returns a copy of every endpoint status ordered by name.
func (b *StatusBoard) Endpoints() []EndpointStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]EndpointStatus, 0, len(b.endpoints))
	for _, st := range b.endpoints {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LatestSnapshotTime is the newest snapshot time across all endpoints.
func (b *StatusBoard) LatestSnapshotTime() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var latest time.Time
	for _, st := range b.endpoints {
		if st.SnapshotTime.After(latest) {
			latest = st.SnapshotTime
		}
	}
	return latest
}
