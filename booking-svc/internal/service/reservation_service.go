package service

import (
	"context"
	"log"
	"time"

	"tableside/booking-svc/internal/domain"
	"tableside/booking-svc/internal/locks"
)

type CreateReservationInput struct {
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	CustomerPhone    string `json:"customer_phone"`
	PartySize        int    `json:"party_size"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	SpecialRequests  string `json:"special_requests"`
	MarketingConsent bool   `json:"marketing_consent"`
}

func (in CreateReservationInput) validate() error {
	if err := validateContact(in.CustomerName, in.CustomerEmail, in.MarketingConsent); err != nil {
		return err
	}
	if in.PartySize <= 0 {
		return domain.Invalid("party_size", "must be positive")
	}
	if err := validateDate("date", in.Date); err != nil {
		return err
	}
	_, err := parseClock("time", in.Time)
	return err
}

type ReservationService struct {
	reservations ReservationRepository
	availability *AvailabilityService
	clients      ClientUpdater
	notifier     Notifier
	locker       locks.Locker

	Now func() time.Time
}

// NewReservationService must get the same locker as availability, since
// admission is only safe under the date lock rule changes take too.
func NewReservationService(reservations ReservationRepository, availability *AvailabilityService, clients ClientUpdater, notifier Notifier, locker locks.Locker) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		availability: availability,
		clients:      clients,
		notifier:     notifier,
		locker:       locker,
		Now:          time.Now,
	}
}

// CreateReservation admits and stores a pending reservation. Admission is
// decided once, here; later edits never re-check it.
func (s *ReservationService) CreateReservation(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	reservation, err := s.admit(ctx, input)
	if err != nil {
		return nil, err
	}

	if reservation.MarketingConsent && s.clients != nil {
		s.clients.Upsert(ctx, ClientEvent{
			Email:        reservation.CustomerEmail,
			Name:         reservation.CustomerName,
			Phone:        reservation.CustomerPhone,
			Reservations: 1,
		})
	}
	s.notify(ctx, domain.EventReservationCreated, reservation)

	return reservation, nil
}

func (s *ReservationService) admit(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error) {
	unlock, err := s.locker.Lock(ctx, locks.DateKey(input.Date))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.availability.Admit(ctx, input.Date, input.Time); err != nil {
		return nil, err
	}

	reservation := &domain.Reservation{
		CustomerName:     input.CustomerName,
		CustomerEmail:    input.CustomerEmail,
		CustomerPhone:    input.CustomerPhone,
		PartySize:        input.PartySize,
		Date:             input.Date,
		Time:             input.Time,
		SpecialRequests:  input.SpecialRequests,
		MarketingConsent: input.MarketingConsent,
		Status:           domain.StatusPending,
	}
	reservation.Touch(s.Now())

	if _, err := s.reservations.Create(ctx, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *ReservationService) TransitionReservation(ctx context.Context, id int, target domain.Status) (*domain.Reservation, error) {
	reservation, err := s.modify(ctx, id, func(r *domain.Reservation) error {
		if err := domain.Transition(r.Status, target); err != nil {
			return err
		}
		r.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, domain.EventReservationStatusChanged, reservation)
	return reservation, nil
}

// AssignTable seats an open reservation at table.
func (s *ReservationService) AssignTable(ctx context.Context, id int, table int) (*domain.Reservation, error) {
	if table <= 0 {
		return nil, domain.Invalid("table_number", "must be positive")
	}
	return s.modify(ctx, id, func(r *domain.Reservation) error {
		if r.Status.Terminal() {
			return &domain.TransitionError{From: r.Status, To: r.Status}
		}
		r.TableNumber = &table
		return nil
	})
}

// modify runs change against the stored reservation under its id lock and
// writes the result back. Nothing is written when change fails.
func (s *ReservationService) modify(ctx context.Context, id int, change func(r *domain.Reservation) error) (*domain.Reservation, error) {
	unlock, err := s.locker.Lock(ctx, locks.ReservationKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	reservation, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(reservation); err != nil {
		return nil, err
	}

	reservation.Touch(s.Now())
	if err := s.reservations.Update(ctx, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *ReservationService) FindReservation(ctx context.Context, id int) (*domain.Reservation, error) {
	return s.reservations.FindByID(ctx, id)
}

// ListReservations narrows by status and by Filter.Key as the date.
func (s *ReservationService) ListReservations(ctx context.Context, filter domain.Filter) ([]domain.Reservation, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	if filter.Key != "" {
		if err := validateDate("date", filter.Key); err != nil {
			return nil, err
		}
	}
	return s.reservations.FindAll(ctx, filter)
}

func (s *ReservationService) notify(ctx context.Context, eventType string, reservation *domain.Reservation) {
	if s.notifier == nil {
		return
	}
	event := domain.Event{Type: eventType, Reservation: reservation, Timestamp: s.Now().UTC()}
	if err := s.notifier.Notify(ctx, event); err != nil {
		log.Printf("Error publishing %s for reservation %d: %v", eventType, reservation.ID, err)
	}
}
