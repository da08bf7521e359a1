package client

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cuongbtq/jobboard/internal/api/domain"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// State is one observable snapshot of a Board. Jobs is set only when
// Loaded and Err only when Failed.
type State struct {
	Status Status
	Filter domain.FilterCriteria
	Jobs   []domain.JobPosting
	Err    error
	// Token identifies the fetch that produced this state
	Token uint64
}

// Querier lists postings for a filter
type Querier interface {
	ListJobs(ctx context.Context, filter domain.FilterCriteria) ([]domain.JobPosting, error)
}

// Board owns the filter selection and the listing fetched for it. Every
// filter change issues a new fetch tagged with an increasing token; a result
// is applied only if its token is still the latest, and the superseded
// fetch is canceled.
type Board struct {
	querier Querier
	logger  *slog.Logger
	ctx     context.Context
	stop    context.CancelFunc

	mu     sync.Mutex
	state  State
	seq    uint64
	cancel context.CancelFunc
	subs   map[chan State]struct{}
	wg     sync.WaitGroup
}

// NewBoard returns an Idle board. Start issues the initial fetch.
func NewBoard(ctx context.Context, querier Querier, logger *slog.Logger) *Board {
	ctx, stop := context.WithCancel(ctx)
	return &Board{
		querier: querier,
		logger:  logger,
		ctx:     ctx,
		stop:    stop,
		state:   State{Status: StatusIdle, Filter: domain.AllJobs()},
		subs:    make(map[chan State]struct{}),
	}
}

// Start fetches every posting with all criteria at the sentinel
func (b *Board) Start() {
	b.SetFilter(domain.AllJobs())
}

func (b *Board) SetFilter(filter domain.FilterCriteria) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetchLocked(filter)
}

func (b *Board) SetCategory(v string) {
	b.update(func(f *domain.FilterCriteria) { f.Category = v })
}

func (b *Board) SetLocation(v string) {
	b.update(func(f *domain.FilterCriteria) { f.Location = v })
}

func (b *Board) SetExperience(v string) {
	b.update(func(f *domain.FilterCriteria) { f.Experience = v })
}

// Retry refetches the current filter, typically after a failure
func (b *Board) Retry() {
	b.update(func(*domain.FilterCriteria) {})
}

func (b *Board) update(mutate func(*domain.FilterCriteria)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	filter := b.state.Filter
	mutate(&filter)
	b.fetchLocked(filter)
}

func (b *Board) fetchLocked(filter domain.FilterCriteria) {
	if b.ctx.Err() != nil {
		return
	}

	if b.cancel != nil {
		b.cancel()
	}

	b.seq++
	token := b.seq
	ctx, cancel := context.WithCancel(b.ctx)
	b.cancel = cancel

	b.setLocked(State{Status: StatusLoading, Filter: filter, Token: token})

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer cancel()

		jobs, err := b.querier.ListJobs(ctx, filter)
		b.complete(token, filter, jobs, err)
	}()
}

func (b *Board) complete(token uint64, filter domain.FilterCriteria, jobs []domain.JobPosting, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctx.Err() != nil {
		return
	}

	if token != b.seq {
		b.logger.Debug("Discarding superseded result",
			slog.Uint64("token", token),
			slog.Uint64("latest", b.seq),
		)
		return
	}
	b.cancel = nil

	if err != nil {
		b.logger.Warn("Job fetch failed",
			slog.Uint64("token", token),
			slog.String("error", err.Error()),
		)
		b.setLocked(State{Status: StatusFailed, Filter: filter, Err: err, Token: token})
		return
	}

	if jobs == nil {
		jobs = []domain.JobPosting{}
	}
	b.setLocked(State{Status: StatusLoaded, Filter: filter, Jobs: jobs, Token: token})
}

// setLocked stores s and offers it to every subscriber. A slow subscriber
// only ever sees the latest state.
func (b *Board) setLocked(s State) {
	b.state = s
	for ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// Snapshot returns the current state
func (b *Board) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.state
	if s.Jobs != nil {
		s.Jobs = append(make([]domain.JobPosting, 0, len(s.Jobs)), s.Jobs...)
	}
	return s
}

// Subscribe returns a channel that receives the current state and every
// later change. The returned func unsubscribes.
func (b *Board) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	ch <- b.state
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
}

// Wait blocks until every issued fetch has returned
func (b *Board) Wait() {
	b.wg.Wait()
}

// Close cancels any in-flight fetch and stops accepting filter changes
func (b *Board) Close() {
	b.stop()
	b.wg.Wait()
}
