package domain

import "time"

// Kind names the collection an entity is stored in.
type Kind string

const (
	KindOrder        Kind = "orders"
	KindReservation  Kind = "reservations"
	KindAvailability Kind = "availability"
	KindClient       Kind = "clients"
)

var Kinds = []Kind{KindOrder, KindReservation, KindAvailability, KindClient}

func (o *Order) EntityID() int        { return o.ID }
func (o *Order) SetEntityID(id int)   { o.ID = id }
func (o *Order) LookupKey() string    { return o.CustomerEmail }
func (o *Order) EntityStatus() string { return string(o.Status) }
func (o *Order) Touched() time.Time   { return o.UpdatedAt }
func (o *Order) Touch(now time.Time)  { touch(&o.CreatedAt, &o.UpdatedAt, now) }

func (r *Reservation) EntityID() int        { return r.ID }
func (r *Reservation) SetEntityID(id int)   { r.ID = id }
func (r *Reservation) LookupKey() string    { return r.Date }
func (r *Reservation) EntityStatus() string { return string(r.Status) }
func (r *Reservation) Touched() time.Time   { return r.UpdatedAt }
func (r *Reservation) Touch(now time.Time)  { touch(&r.CreatedAt, &r.UpdatedAt, now) }

func (r *AvailabilityRule) EntityID() int        { return r.ID }
func (r *AvailabilityRule) SetEntityID(id int)   { r.ID = id }
func (r *AvailabilityRule) LookupKey() string    { return r.Date }
func (r *AvailabilityRule) EntityStatus() string { return "" }
func (r *AvailabilityRule) Touched() time.Time   { return r.UpdatedAt }
func (r *AvailabilityRule) Touch(now time.Time)  { touch(&r.CreatedAt, &r.UpdatedAt, now) }

func (c *Client) EntityID() int        { return c.ID }
func (c *Client) SetEntityID(id int)   { c.ID = id }
func (c *Client) LookupKey() string    { return c.Email }
func (c *Client) EntityStatus() string { return "" }
func (c *Client) Touched() time.Time   { return c.UpdatedAt }
func (c *Client) Touch(now time.Time)  { touch(&c.CreatedAt, &c.UpdatedAt, now) }

// touch truncates to microseconds, the precision of the primary store.
func touch(created, updated *time.Time, now time.Time) {
	now = now.UTC().Truncate(time.Microsecond)
	if created.IsZero() {
		*created = now
	}
	*updated = now
}
