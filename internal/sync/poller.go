package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/project-dashboard/internal/apperr"
	"github.com/nhle/project-dashboard/internal/cache"
)

// SyncState represents the current state of a refresh job.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "syncing"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// SyncStatus holds the sync state for a single job.
type SyncStatus struct {
	Name     string
	State    SyncState
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent when a refresh run completes.
type SyncResultMsg struct {
	Name      string
	Error     error
	AuthError *AuthErrorMsg
}

// AuthErrorMsg is set on a result when the backend rejected the session.
type AuthErrorMsg struct {
	Name    string
	Message string
}

// Job refreshes one slice of state, typically a coordinator FetchAll.
type Job func(ctx context.Context) error

// fetchTimeout is the maximum time allowed for a single run.
const fetchTimeout = 30 * time.Second

const defaultInterval = 120 * time.Second

type job struct {
	name     string
	interval time.Duration
	run      Job
	trigger  chan struct{}
}

// Poller runs registered refresh jobs on their own intervals and on
// demand, reporting each run to the Bubble Tea runtime.
type Poller struct {
	log      zerolog.Logger
	syncLog  cache.SyncLog
	jobs     []*job
	statuses map[string]*SyncStatus
	resultCh chan SyncResultMsg
	ctx      context.Context
	cancel   context.CancelFunc
	mu       gosync.Mutex
	running  bool
	now      func() time.Time
}

// New creates a Poller. Each run is recorded in syncLog; nil disables
// recording.
func New(log zerolog.Logger, syncLog cache.SyncLog) *Poller {
	if syncLog == nil {
		syncLog = cache.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		log:      log.With().Str("component", "poller").Logger(),
		syncLog:  syncLog,
		statuses: make(map[string]*SyncStatus),
		resultCh: make(chan SyncResultMsg, 16),
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
	}
}

// Register adds a job. Registering after Start has no effect on the
// running poller.
func (p *Poller) Register(name string, interval time.Duration, run Job) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if interval <= 0 {
		interval = defaultInterval
	}
	p.jobs = append(p.jobs, &job{
		name:     name,
		interval: interval,
		run:      run,
		trigger:  make(chan struct{}, 1),
	})
	p.statuses[name] = &SyncStatus{Name: name, State: SyncIdle}
}

// Start returns a tea.Cmd that starts all polling goroutines and
// subscribes to results.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	jobs := append([]*job(nil), p.jobs...)
	p.mu.Unlock()

	for _, j := range jobs {
		p.restoreLastSync(j.name)
		go p.poll(j)
	}

	return p.waitForResult()
}

// Stop halts all polling goroutines and cancels runs in flight.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.cancel()
	p.running = false
}

// RefreshAll triggers an immediate run of every job.
func (p *Poller) RefreshAll() tea.Cmd {
	p.mu.Lock()
	jobs := append([]*job(nil), p.jobs...)
	p.mu.Unlock()

	for _, j := range jobs {
		p.trigger(j)
	}
	return nil
}

// Refresh triggers an immediate run of the named job. Unknown names are
// ignored.
func (p *Poller) Refresh(name string) tea.Cmd {
	p.mu.Lock()
	var target *job
	for _, j := range p.jobs {
		if j.name == name {
			target = j
			break
		}
	}
	p.mu.Unlock()

	if target != nil {
		p.trigger(target)
	}
	return nil
}

// Statuses returns the status of every job in registration order.
func (p *Poller) Statuses() []SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]SyncStatus, 0, len(p.jobs))
	for _, j := range p.jobs {
		out = append(out, *p.statuses[j.name])
	}
	return out
}

// trigger queues a run; a run already queued absorbs the request.
func (p *Poller) trigger(j *job) {
	select {
	case j.trigger <- struct{}{}:
	default:
	}
}

func (p *Poller) poll(j *job) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	p.runOnce(j)

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(j)
		case <-j.trigger:
			p.runOnce(j)
		}
	}
}

// runOnce performs a single run, records it, and sends a SyncResultMsg.
func (p *Poller) runOnce(j *job) {
	p.setStatus(j.name, SyncRunning, nil)

	ctx, cancel := context.WithTimeout(p.ctx, fetchTimeout)
	defer cancel()

	err := j.run(ctx)
	if p.ctx.Err() != nil {
		return
	}

	at := p.now()
	if recErr := p.syncLog.RecordSync(ctx, j.name, at, err); recErr != nil {
		p.log.Warn().Err(recErr).Str("job", j.name).Msg("recording sync")
	}

	if err != nil {
		p.setStatus(j.name, SyncError, err)
		p.log.Warn().Err(err).Str("job", j.name).Msg("refresh failed")

		msg := SyncResultMsg{Name: j.name, Error: err}
		if apperr.IsAuth(err) {
			msg.AuthError = &AuthErrorMsg{
				Name:    j.name,
				Message: fmt.Sprintf("%s: session expired. Run with --login to sign in again.", j.name),
			}
		}
		p.sendResult(msg)
		return
	}

	p.mu.Lock()
	if st, ok := p.statuses[j.name]; ok {
		st.State = SyncIdle
		st.Error = nil
		st.LastSync = at
	}
	p.mu.Unlock()
	p.log.Debug().Str("job", j.name).Msg("refreshed")
	p.sendResult(SyncResultMsg{Name: j.name})
}

// restoreLastSync seeds LastSync from the previous session's record
// when that run succeeded.
func (p *Poller) restoreLastSync(name string) {
	at, lastErr, err := p.syncLog.LastSync(p.ctx, name)
	if err != nil {
		p.log.Debug().Err(err).Str("job", name).Msg("reading last sync")
		return
	}
	if at.IsZero() || lastErr != "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if st, ok := p.statuses[name]; ok && st.LastSync.IsZero() {
		st.LastSync = at
	}
}

func (p *Poller) setStatus(name string, state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[name]
	if !ok {
		return
	}
	status.State = state
	status.Error = err
}

// sendResult sends a SyncResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return result
		case <-p.ctx.Done():
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync result.
// Call it after handling a SyncResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
