package fragment

import (
	"slices"
	"time"

	"github.com/dd0wney/cluso-meshroute/pkg/logging"
	"github.com/dd0wney/cluso-meshroute/pkg/metrics"
)

type session struct {
	total    uint64
	parts    map[uint64]Fragment
	size     int
	lastSeen time.Time
}

// Stats counts assembler activity since creation
type Stats struct {
	Completed  uint64
	Duplicates uint64
	Rejected   uint64
	Expired    uint64
	Pending    int
}

// Assembler buffers fragments per session until every index of the session
// has arrived. It is not safe for concurrent use.
type Assembler struct {
	sessions map[uint64]*session
	ttl      time.Duration
	now      func() time.Time
	logger   logging.Logger
	metrics  *metrics.Registry
	stats    Stats
}

// AssemblerOption configures an Assembler
type AssemblerOption func(*Assembler)

// WithSessionTTL lets Expire drop sessions idle for longer than ttl.
// Zero, the default, keeps incomplete sessions forever.
func WithSessionTTL(ttl time.Duration) AssemblerOption {
	return func(a *Assembler) { a.ttl = ttl }
}

// WithClock replaces time.Now for session bookkeeping
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) { a.now = now }
}

// WithAssemblerLogger sets the logger
func WithAssemblerLogger(l logging.Logger) AssemblerOption {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithAssemblerMetrics reports fragment and session activity to m
func WithAssemblerMetrics(m *metrics.Registry) AssemblerOption {
	return func(a *Assembler) { a.metrics = m }
}

// partsHint caps the initial buffer reserved for a new session
const partsHint = 64

// NewAssembler creates an empty Assembler
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		sessions: make(map[uint64]*session),
		now:      time.Now,
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddFragment buffers f under sessionID. When the session's last missing
// index arrives, the reassembled payload is returned with done set and the
// session is released. A fragment whose index is already buffered is
// ignored. Malformed fragments are rejected and leave the session untouched.
func (a *Assembler) AddFragment(f Fragment, sessionID uint64) (payload []byte, done bool, err error) {
	if err := f.validate(); err != nil {
		return nil, false, a.reject(sessionID, f, err)
	}

	s, ok := a.sessions[sessionID]
	if !ok {
		// Total comes off the wire; it bounds the session, not the buffer.
		s = &session{total: f.Total, parts: make(map[uint64]Fragment, min(f.Total, partsHint))}
		a.sessions[sessionID] = s
	} else if s.total != f.Total {
		return nil, false, a.reject(sessionID, f, ErrTotalMismatch)
	}
	s.lastSeen = a.now()

	if _, dup := s.parts[f.Index]; dup {
		a.stats.Duplicates++
		if a.metrics != nil {
			a.metrics.DuplicateFragments.Inc()
		}
		a.logger.Debug("duplicate fragment", logging.Session(sessionID), logging.Uint64("index", f.Index))
		return nil, false, nil
	}

	s.parts[f.Index] = f
	s.size += int(f.Length)
	if a.metrics != nil {
		a.metrics.RecordFragments(metrics.DirectionIn, 1)
	}

	if uint64(len(s.parts)) < s.total {
		a.syncPending()
		return nil, false, nil
	}

	payload = s.reassemble()
	delete(a.sessions, sessionID)
	a.stats.Completed++
	a.syncPending()
	if a.metrics != nil {
		a.metrics.RecordSessionCompleted(len(payload))
	}
	a.logger.Debug("session reassembled",
		logging.Session(sessionID),
		logging.Count(int(s.total)),
		logging.Int("bytes", len(payload)),
	)
	return payload, true, nil
}

func (s *session) reassemble() []byte {
	indices := make([]uint64, 0, len(s.parts))
	for idx := range s.parts {
		indices = append(indices, idx)
	}
	slices.Sort(indices)

	payload := make([]byte, 0, s.size)
	for _, idx := range indices {
		payload = append(payload, s.parts[idx].Bytes()...)
	}
	return payload
}

func (a *Assembler) reject(sessionID uint64, f Fragment, cause error) error {
	a.stats.Rejected++
	if a.metrics != nil {
		a.metrics.RejectedFragments.Inc()
	}
	err := &FragmentError{Op: "AddFragment", Session: sessionID, Index: f.Index, Cause: cause}
	a.logger.Warn("fragment rejected", logging.Session(sessionID), logging.Error(err))
	return err
}

// Pending returns the number of incomplete sessions
func (a *Assembler) Pending() int {
	return len(a.sessions)
}

// Received returns how many distinct fragments of sessionID are buffered and
// the total the session expects.
func (a *Assembler) Received(sessionID uint64) (have, total uint64, ok bool) {
	s, ok := a.sessions[sessionID]
	if !ok {
		return 0, 0, false
	}
	return uint64(len(s.parts)), s.total, true
}

// Discard drops the buffer of sessionID
func (a *Assembler) Discard(sessionID uint64) bool {
	if _, ok := a.sessions[sessionID]; !ok {
		return false
	}
	delete(a.sessions, sessionID)
	a.syncPending()
	return true
}

// Expire drops sessions that have not received a fragment within the TTL
// before now, returning how many were dropped. It is a no-op without a TTL.
func (a *Assembler) Expire(now time.Time) int {
	if a.ttl <= 0 {
		return 0
	}
	expired := 0
	for id, s := range a.sessions {
		if now.Sub(s.lastSeen) >= a.ttl {
			delete(a.sessions, id)
			expired++
			a.logger.Info("session expired", logging.Session(id), logging.Count(len(s.parts)))
		}
	}
	if expired > 0 {
		a.stats.Expired += uint64(expired)
		a.syncPending()
		if a.metrics != nil {
			a.metrics.RecordSessionsExpired(expired)
		}
	}
	return expired
}

// Stats returns a copy of the activity counters
func (a *Assembler) Stats() Stats {
	st := a.stats
	st.Pending = len(a.sessions)
	return st
}

func (a *Assembler) syncPending() {
	if a.metrics != nil {
		a.metrics.SetSessionsPending(len(a.sessions))
	}
}
