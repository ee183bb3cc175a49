package quota

import (
	"context"
	"fmt"
	"time"
)

const DefaultDailyLimit = 2

type Usage struct {
	CanPost        bool `json:"canPost"`
	RemainingPosts int  `json:"remainingPosts"`
	PostsToday     int  `json:"postsToday"`
}

func usageFor(limit, postsToday int) Usage {
	remaining := limit - postsToday
	if remaining < 0 {
		remaining = 0
	}
	return Usage{
		CanPost:        remaining > 0,
		RemainingPosts: remaining,
		PostsToday:     postsToday,
	}
}

// Reservation is one consumed quota slot. Day is kept so a release lands in
// the same bucket even if the request crossed midnight.
type Reservation struct {
	UserID string
	Day    Day
	Usage  Usage
}

type Service struct {
	ledger Ledger
	limit  int
	loc    *time.Location
	now    func() time.Time
}

func NewService(ledger Ledger, limit int, loc *time.Location) *Service {
	if loc == nil {
		loc = istanbulFallback
	}
	return &Service{ledger: ledger, limit: limit, loc: loc, now: time.Now}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Limit() int { return s.limit }

func (s *Service) Today() Day { return DayOf(s.now(), s.loc) }

// CheckDailyLimit reports today's usage for userID. A lookup failure is
// fail-closed: the returned Usage forbids posting and the error is returned for logging.
func (s *Service) CheckDailyLimit(ctx context.Context, userID string) (Usage, error) {
	n, err := s.ledger.Usage(ctx, userID, s.Today())
	if err != nil {
		return Usage{CanPost: false, RemainingPosts: 0, PostsToday: 0}, fmt.Errorf("quota usage for %s: %w", userID, err)
	}
	return usageFor(s.limit, n), nil
}

// Reserve consumes one slot for today. ok is false when the limit is reached;
// the ledger is left unchanged in that case.
func (s *Service) Reserve(ctx context.Context, userID string) (Reservation, bool, error) {
	now := s.now()
	day := DayOf(now, s.loc)
	n, ok, err := s.ledger.Consume(ctx, userID, day, s.limit, now.UTC())
	if err != nil {
		return Reservation{}, false, fmt.Errorf("quota consume for %s: %w", userID, err)
	}
	r := Reservation{UserID: userID, Day: day, Usage: usageFor(s.limit, n)}
	return r, ok, nil
}

// IncrementCount records one post for today, refusing once the limit is reached.
func (s *Service) IncrementCount(ctx context.Context, userID string) (bool, error) {
	_, ok, err := s.Reserve(ctx, userID)
	return ok, err
}

// Release gives a reserved slot back.
func (s *Service) Release(ctx context.Context, r Reservation) error {
	if err := s.ledger.Release(ctx, r.UserID, r.Day); err != nil {
		return fmt.Errorf("quota release for %s: %w", r.UserID, err)
	}
	return nil
}
