// Package session keeps live games in memory and drives their engines on
// behalf of the transport. Finished rounds are handed to a records store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/records"
)

var (
	ErrNotFound        = errors.New("game session not found")
	ErrInvalidPosition = errors.New("invalid cell position")
	ErrTooLarge        = errors.New("game params exceed limits")
)

type Session struct {
	ID string

	mu        sync.Mutex
	engine    *mines.Engine
	roundID   string
	startedAt time.Time
	endedAt   *time.Time
	touchedAt atomic.Int64 // unix nanoseconds
}

func (s *Session) touch(now time.Time) {
	s.touchedAt.Store(now.UnixNano())
}

func (s *Session) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.touchedAt.Load()))
}

// View is a point-in-time copy of a session.
type View struct {
	ID string
	mines.Snapshot
	StartedAt time.Time
	EndedAt   *time.Time
}

func (s *Session) view() View {
	v := View{
		ID:        s.ID,
		Snapshot:  s.engine.Snapshot(),
		StartedAt: s.startedAt,
	}
	if s.endedAt != nil {
		ended := *s.endedAt
		v.EndedAt = &ended
	}
	return v
}

type Option func(*Service)

// WithRecords makes the service log finished rounds to store.
func WithRecords(store records.Store) Option {
	return func(s *Service) { s.records = store }
}

func WithLimits(cfg config.Game) Option {
	return func(s *Service) { s.limits = cfg }
}

func WithRand(newRand func() *rand.Rand) Option {
	return func(s *Service) { s.newRand = newRand }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	logger  *slog.Logger
	records records.Store
	limits  config.Game
	newRand func() *rand.Rand
	now     func() time.Time

	mu    sync.RWMutex
	games map[string]*Session
}

func New(logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		logger: logger,
		limits: config.Game{
			MaxWidth:      100,
			MaxHeight:     100,
			SessionTTL:    time.Hour,
			JanitorPeriod: time.Minute,
		},
		newRand: mines.NewRand,
		now:     time.Now,
		games:   make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Limits() config.Game {
	return s.limits
}

func (s *Service) Create(ctx context.Context, params mines.GameParams) (View, error) {
	if err := params.Validate(); err != nil {
		return View{}, err
	}
	if params.Width > s.limits.MaxWidth || params.Height > s.limits.MaxHeight {
		return View{}, fmt.Errorf(
			"%w: %dx%d is larger than %dx%d", ErrTooLarge,
			params.Width, params.Height, s.limits.MaxWidth, s.limits.MaxHeight,
		)
	}

	now := s.now().UTC()
	id := uuid.NewString()
	sess := &Session{
		ID:        id,
		engine:    mines.New(params, s.newRand()),
		roundID:   id,
		startedAt: now,
	}
	sess.touch(now)

	s.mu.Lock()
	s.games[id] = sess
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session created",
		slog.String("session_id", id),
		slog.String("params", params.Seed()),
	)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

func (s *Service) lookup(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *Service) Get(id string) (View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// Exec applies cmds in order. Positions are checked for the whole batch
// first, so a batch with a bad position changes nothing. Finished rounds
// are recorded after the session is unlocked.
func (s *Service) Exec(ctx context.Context, id string, cmds ...Command) (View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}

	view, finished, err := s.exec(ctx, sess, cmds)
	if err != nil {
		return View{}, err
	}
	for _, r := range finished {
		s.record(ctx, sess.ID, r)
	}
	return view, nil
}

func (s *Service) exec(ctx context.Context, sess *Session, cmds []Command) (View, []records.Record, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	params := sess.engine.Params()
	for _, cmd := range cmds {
		if _, ok := opNargs[cmd.Op]; !ok {
			return View{}, nil, fmt.Errorf("%w %q", ErrUnknownCommand, cmd.Op)
		}
		if cmd.positional() && !params.PointInBounds(cmd.X, cmd.Y) {
			return View{}, nil, fmt.Errorf("%w: %d,%d", ErrInvalidPosition, cmd.X, cmd.Y)
		}
	}

	var finished []records.Record
	for _, cmd := range cmds {
		if r, over := s.apply(ctx, sess, cmd); over {
			finished = append(finished, r)
		}
	}
	sess.touch(s.now())

	return sess.view(), finished, nil
}

// apply runs one command and reports the record of a round it ended.
func (s *Service) apply(ctx context.Context, sess *Session, cmd Command) (records.Record, bool) {
	e := sess.engine
	before := e.Phase()

	var acted bool
	switch cmd.Op {
	case OpGet:
		return records.Record{}, false
	case OpOpen:
		acted = e.Reveal(cmd.X, cmd.Y)
	case OpFlag:
		acted = e.ToggleFlag(cmd.X, cmd.Y)
	case OpChord:
		acted = e.Chord(cmd.X, cmd.Y)
	case OpForfeit:
		acted = e.Forfeit()
	case OpRestart:
		e.Restart()
		sess.roundID = uuid.NewString()
		sess.startedAt = s.now().UTC()
		sess.endedAt = nil
		s.logger.DebugContext(ctx, "session restarted", slog.String("session_id", sess.ID))
		return records.Record{}, false
	}

	s.logger.DebugContext(ctx, "command",
		slog.String("session_id", sess.ID),
		slog.String("command", cmd.String()),
		slog.Bool("acted", acted),
	)

	if before.Over() || !e.Phase().Over() {
		return records.Record{}, false
	}

	ended := s.now().UTC()
	sess.endedAt = &ended
	r := records.Record{
		SessionID:  sess.roundID,
		GameParams: e.Params(),
		Won:        e.Phase() == mines.Won,
		StartedAt:  sess.startedAt,
		EndedAt:    ended,
	}
	s.logger.InfoContext(ctx, "game over",
		slog.String("session_id", sess.ID),
		slog.String("phase", e.Phase().String()),
		slog.Duration("playtime", r.Playtime()),
	)
	return r, true
}

// record never fails the move; the store is best effort.
func (s *Service) record(ctx context.Context, sessionID string, r records.Record) {
	if s.records == nil {
		return
	}
	err := s.records.Add(ctx, r)
	if errors.Is(err, records.ErrDuplicate) {
		s.logger.WarnContext(ctx, "round already recorded", slog.String("round_id", r.SessionID))
		return
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "unable to save game record",
			slog.String("session_id", sessionID),
			slog.Any("error", err),
		)
	}
}

// Evict drops sessions idle for longer than the TTL and returns how many
// were removed. A non-positive TTL keeps everything. Sessions are never
// locked here, so a busy session does not hold up the registry.
func (s *Service) Evict(now time.Time) int {
	ttl := s.limits.SessionTTL
	if ttl <= 0 {
		return 0
	}

	s.mu.RLock()
	var idle []string
	for id, sess := range s.games {
		if sess.idle(now) > ttl {
			idle = append(idle, id)
		}
	}
	s.mu.RUnlock()
	if len(idle) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for _, id := range idle {
		// touched again since the scan
		if sess, ok := s.games[id]; ok && sess.idle(now) > ttl {
			delete(s.games, id)
			evicted++
		}
	}
	return evicted
}

// RunJanitor evicts idle sessions every period until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Evict(s.now().UTC()); n > 0 {
				s.logger.InfoContext(ctx, "evicted idle sessions",
					slog.Int("evicted", n),
					slog.Int("remaining", s.Len()),
				)
			}
		}
	}
}

func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}
