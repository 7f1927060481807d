package service

import (
	"context"
	"time"

	"tableside/booking-svc/internal/domain"
	"tableside/booking-svc/internal/locks"
)

type HoursInput struct {
	Date            string `json:"date"`
	OpenTime        string `json:"open_time"`
	CloseTime       string `json:"close_time"`
	MaxReservations int    `json:"max_reservations"`
}

// AvailabilityService owns the per-date rules and decides whether a new
// reservation may be admitted. Rule changes and admission share the date
// lock, so a date cannot be blocked halfway through an admission.
type AvailabilityService struct {
	rules        AvailabilityRepository
	reservations ReservationRepository
	dates        locks.Locker
	defaultMax   int

	Now func() time.Time
}

func NewAvailabilityService(rules AvailabilityRepository, reservations ReservationRepository, dates locks.Locker, defaultMax int) *AvailabilityService {
	if defaultMax <= 0 {
		defaultMax = domain.DefaultMaxReservations
	}
	return &AvailabilityService{
		rules:        rules,
		reservations: reservations,
		dates:        dates,
		defaultMax:   defaultMax,
		Now:          time.Now,
	}
}

// find returns nil when the date has no rule.
func (s *AvailabilityService) find(ctx context.Context, date string) (*domain.AvailabilityRule, error) {
	rules, err := s.rules.FindAll(ctx, domain.Filter{Key: date})
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	latest := rules[0]
	for _, rule := range rules[1:] {
		if rule.UpdatedAt.After(latest.UpdatedAt) {
			latest = rule
		}
	}
	return &latest, nil
}

func (s *AvailabilityService) save(ctx context.Context, rule *domain.AvailabilityRule) error {
	rule.Touch(s.Now())
	if rule.ID == 0 {
		_, err := s.rules.Create(ctx, rule)
		return err
	}
	return s.rules.Update(ctx, rule)
}

// mutate applies change to the date's rule under the date lock, starting
// from an open rule with default capacity when none exists.
func (s *AvailabilityService) mutate(ctx context.Context, date string, change func(rule *domain.AvailabilityRule)) (*domain.AvailabilityRule, error) {
	if err := validateDate("date", date); err != nil {
		return nil, err
	}

	unlock, err := s.dates.Lock(ctx, locks.DateKey(date))
	if err != nil {
		return nil, err
	}
	defer unlock()

	rule, err := s.find(ctx, date)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		rule = &domain.AvailabilityRule{Date: date, IsAvailable: true, MaxReservations: s.defaultMax}
	}

	change(rule)
	if err := s.save(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *AvailabilityService) BlockDate(ctx context.Context, date, reason string) error {
	_, err := s.mutate(ctx, date, func(rule *domain.AvailabilityRule) {
		rule.IsAvailable = false
		rule.BlockedReason = reason
	})
	return err
}

// UnblockDate reopens date. Hours and capacity set on the date are kept.
func (s *AvailabilityService) UnblockDate(ctx context.Context, date string) error {
	_, err := s.mutate(ctx, date, func(rule *domain.AvailabilityRule) {
		rule.IsAvailable = true
		rule.BlockedReason = ""
	})
	return err
}

// SetHours sets the opening window and, when positive, the capacity of a date.
func (s *AvailabilityService) SetHours(ctx context.Context, input HoursInput) (*domain.AvailabilityRule, error) {
	open, err := parseClock("open_time", input.OpenTime)
	if err != nil {
		return nil, err
	}
	closing, err := parseClock("close_time", input.CloseTime)
	if err != nil {
		return nil, err
	}
	if !open.Before(closing) {
		return nil, domain.Invalid("close_time", "must be after open_time")
	}
	if input.MaxReservations < 0 {
		return nil, domain.Invalid("max_reservations", "must not be negative")
	}

	return s.mutate(ctx, input.Date, func(rule *domain.AvailabilityRule) {
		rule.OpenTime = input.OpenTime
		rule.CloseTime = input.CloseTime
		if input.MaxReservations > 0 {
			rule.MaxReservations = input.MaxReservations
		}
	})
}

// Rule returns the effective rule of date: the stored one, or an open day
// with default capacity.
func (s *AvailabilityService) Rule(ctx context.Context, date string) (*domain.AvailabilityRule, error) {
	if err := validateDate("date", date); err != nil {
		return nil, err
	}
	rule, err := s.find(ctx, date)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return &domain.AvailabilityRule{Date: date, IsAvailable: true, MaxReservations: s.defaultMax}, nil
	}
	return rule, nil
}

func (s *AvailabilityService) ListRules(ctx context.Context) ([]domain.AvailabilityRule, error) {
	return s.rules.FindAll(ctx, domain.Filter{})
}

// Admit decides whether one more reservation fits on date at clock. The
// caller must hold the date lock until the reservation is stored.
func (s *AvailabilityService) Admit(ctx context.Context, date, clock string) error {
	rule, err := s.find(ctx, date)
	if err != nil {
		return err
	}

	if rule != nil {
		if !rule.IsAvailable {
			return &domain.BlockedDateError{Date: date, Reason: rule.BlockedReason}
		}
		if err := withinHours(rule, clock); err != nil {
			return err
		}
	}

	booked, err := s.reservations.FindAll(ctx, domain.Filter{Key: date})
	if err != nil {
		return err
	}
	active := 0
	for _, reservation := range booked {
		if reservation.Status != domain.StatusCancelled {
			active++
		}
	}
	if active >= rule.Capacity(s.defaultMax) {
		return domain.ErrCapacityExceeded
	}
	return nil
}

// withinHours only applies when the rule sets both ends of the window. Both
// ends are inclusive.
func withinHours(rule *domain.AvailabilityRule, clock string) error {
	if rule.OpenTime == "" || rule.CloseTime == "" {
		return nil
	}
	at, err := parseClock("time", clock)
	if err != nil {
		return err
	}
	open, err := parseClock("open_time", rule.OpenTime)
	if err != nil {
		return err
	}
	closing, err := parseClock("close_time", rule.CloseTime)
	if err != nil {
		return err
	}
	if at.Before(open) || at.After(closing) {
		return domain.ErrOutsideOperatingHours
	}
	return nil
}
