package service

import (
	"net/mail"
	"strings"
	"time"

	"tableside/booking-svc/internal/domain"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

func validateDate(field, value string) error {
	if _, err := time.Parse(dateLayout, value); err != nil {
		return domain.Invalid(field, "must be a date formatted YYYY-MM-DD")
	}
	return nil
}

func parseClock(field, value string) (time.Time, error) {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return time.Time{}, domain.Invalid(field, "must be a time formatted HH:MM")
	}
	return t, nil
}

// validateContact checks the customer fields shared by orders and
// reservations. An email is only required when the customer consents to
// marketing, since that creates a client record keyed by it.
func validateContact(name, email string, consent bool) error {
	if strings.TrimSpace(name) == "" {
		return domain.Invalid("customer_name", "is required")
	}
	if email == "" {
		if consent {
			return domain.Invalid("customer_email", "is required for marketing consent")
		}
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Invalid("customer_email", "is not a valid address")
	}
	return nil
}

func validateFilter(filter domain.Filter) error {
	if filter.Status != "" && !domain.Status(filter.Status).Valid() {
		return domain.Invalid("status", "unknown status "+filter.Status)
	}
	return nil
}
