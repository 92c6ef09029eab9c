// Package booking implements the reservation engine: the one place
// that decides whether a table booking can be created or modified.
// The engine is stateless between calls; every decision reads the
// current store state inside a single transaction immediately before
// acting, and the bookings table's unique active-slot index backstops
// the check-then-act sequence against concurrent writers.
package booking

import (
	"context"
	"database/sql"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// Party size bounds and text field limits enforced on top of the
// request layer's own validation.
const (
	MinPartySize       = 1
	MaxPartySize       = 20
	MaxSpecialRequests = 500
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// timeRe accepts HH:MM with a one- or two-digit hour 0–23.  Input is
// normalized to the zero-padded form before storage so slot keys
// compare equal.
var timeRe = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// Actor identifies the authenticated principal performing an
// operation.  Anonymous callers are rejected by middleware and never
// reach the engine.
type Actor struct {
	UserID uint64
	Role   string
}

func (a Actor) isAdmin() bool { return a.Role == model.RoleAdmin }

// Engine orchestrates booking creation, modification and
// cancellation.  It composes the availability check, the status state
// machine and the repositories, and is the only booking component
// exposed to handlers.
type Engine struct {
	db          *sql.DB
	bookings    *repository.BookingRepo
	restaurants *repository.RestaurantRepo
	tables      *repository.TableRepo
	now         func() time.Time
}

// NewEngine constructs an Engine.  All dependencies must be non-nil.
func NewEngine(db *sql.DB, bookings *repository.BookingRepo, restaurants *repository.RestaurantRepo, tables *repository.TableRepo) *Engine {
	if db == nil || bookings == nil || restaurants == nil || tables == nil {
		panic("nil dependency passed to NewEngine")
	}
	return &Engine{
		db:          db,
		bookings:    bookings,
		restaurants: restaurants,
		tables:      tables,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest carries the already-parsed fields for a new booking.
type CreateRequest struct {
	RestaurantID    uint64
	TableID         *uint64
	BookingDate     string
	BookingTime     string
	PartySize       int
	SpecialRequests *string
}

// Create validates and inserts a new booking owned by the actor.  The
// restaurant must exist and be active; an assigned table must belong
// to the restaurant and seat the party; an assigned slot must be
// free.  All checks and the insert run in one transaction, so a
// failed check has no side effects and the created booking is
// immediately visible to subsequent reads.  New bookings always start
// as pending.
func (e *Engine) Create(ctx context.Context, actor Actor, req CreateRequest) (*model.Booking, error) {
	if err := validateDate(req.BookingDate); err != nil {
		return nil, err
	}
	clock, err := normalizeTime(req.BookingTime)
	if err != nil {
		return nil, err
	}
	if req.PartySize < MinPartySize || req.PartySize > MaxPartySize {
		return nil, repository.ErrInvalidInput
	}
	if req.SpecialRequests != nil && utf8.RuneCountInString(*req.SpecialRequests) > MaxSpecialRequests {
		return nil, repository.ErrInvalidInput
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rest, err := e.restaurants.GetActiveTx(ctx, tx, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	if req.TableID != nil {
		t, err := e.tables.GetForRestaurantTx(ctx, tx, *req.TableID, rest.ID)
		if err != nil {
			return nil, err
		}
		if t.Capacity < req.PartySize {
			return nil, repository.ErrCapacityExceeded
		}
		conflict, err := e.bookings.FindConflictTx(ctx, tx, *req.TableID, req.BookingDate, clock, 0)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, repository.ErrConflict
		}
	}

	b := &model.Booking{
		UserID:          actor.UserID,
		RestaurantID:    rest.ID,
		TableID:         req.TableID,
		BookingDate:     req.BookingDate,
		BookingTime:     clock,
		PartySize:       req.PartySize,
		SpecialRequests: req.SpecialRequests,
		Status:          model.StatusPending,
	}
	if err := e.bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return b, nil
}

// Get returns a booking the actor is allowed to see: its owner or any
// admin.
func (e *Engine) Get(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	b, err := e.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.isAdmin() && b.UserID != actor.UserID {
		return nil, repository.ErrForbidden
	}
	return b, nil
}

// UpdateRequest carries a partial patch.  Nil pointer fields are
// absent from the patch; ClearTable unassigns the table and
// ClearSpecialRequests nulls the note out.
type UpdateRequest struct {
	TableID              *uint64
	ClearTable           bool
	BookingDate          *string
	BookingTime          *string
	PartySize            *int
	SpecialRequests      *string
	ClearSpecialRequests bool
	Status               *string
}

// Update applies a validated patch to an existing booking.  The
// caller must be the booking's owner or an admin.  Non-admins cannot
// set status to confirmed and cannot touch a booking in a terminal
// state at all.  When the effective (table, date, time) slot changes,
// availability is recomputed against the post-patch tuple excluding
// the booking's own id.  A status change is routed through the state
// machine; an unchanged status is left untouched.  All field changes
// are applied atomically and the refreshed record is returned.
func (e *Engine) Update(ctx context.Context, actor Actor, id uint64, req UpdateRequest) (*model.Booking, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := e.bookings.GetByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	isOwner := b.UserID == actor.UserID
	if !actor.isAdmin() && !isOwner {
		return nil, repository.ErrForbidden
	}
	if !actor.isAdmin() {
		// Only staff confirms, and terminal bookings are locked for
		// owners even for non-status fields.
		if req.Status != nil && *req.Status == model.StatusConfirmed {
			return nil, repository.ErrForbidden
		}
		if model.IsTerminalStatus(b.Status) {
			return nil, repository.ErrInvalidState
		}
	}

	// Field validation (defense in depth beyond the request layer).
	if req.BookingDate != nil {
		if err := validateDate(*req.BookingDate); err != nil {
			return nil, err
		}
	}
	var clock string
	if req.BookingTime != nil {
		clock, err = normalizeTime(*req.BookingTime)
		if err != nil {
			return nil, err
		}
	}
	if req.PartySize != nil && (*req.PartySize < MinPartySize || *req.PartySize > MaxPartySize) {
		return nil, repository.ErrInvalidInput
	}
	if req.SpecialRequests != nil && utf8.RuneCountInString(*req.SpecialRequests) > MaxSpecialRequests {
		return nil, repository.ErrInvalidInput
	}
	if req.Status != nil && !model.IsBookingStatus(*req.Status) {
		return nil, repository.ErrInvalidInput
	}

	// Effective post-patch slot.
	table := b.TableID
	if req.ClearTable {
		table = nil
	} else if req.TableID != nil {
		table = req.TableID
	}
	date := b.BookingDate
	if req.BookingDate != nil {
		date = *req.BookingDate
	}
	clockEff := b.BookingTime
	if req.BookingTime != nil {
		clockEff = clock
	}
	party := b.PartySize
	if req.PartySize != nil {
		party = *req.PartySize
	}

	tableChanged := !sameTable(b.TableID, table)
	slotChanged := tableChanged || date != b.BookingDate || clockEff != b.BookingTime

	if table != nil && (tableChanged || party != b.PartySize) {
		t, err := e.tables.GetForRestaurantTx(ctx, tx, *table, b.RestaurantID)
		if err != nil {
			return nil, err
		}
		if t.Capacity < party {
			return nil, repository.ErrCapacityExceeded
		}
	}
	if table != nil && slotChanged {
		conflict, err := e.bookings.FindConflictTx(ctx, tx, *table, date, clockEff, b.ID)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, repository.ErrConflict
		}
	}

	if req.Status != nil && *req.Status != b.Status {
		if err := authorizeTransition(actor.Role, isOwner, b.Status, *req.Status); err != nil {
			return nil, err
		}
		b.Status = *req.Status
	}
	b.TableID = table
	b.BookingDate = date
	b.BookingTime = clockEff
	b.PartySize = party
	if req.ClearSpecialRequests {
		b.SpecialRequests = nil
	} else if req.SpecialRequests != nil {
		b.SpecialRequests = req.SpecialRequests
	}

	if err := e.bookings.UpdateTx(ctx, tx, b, e.now().Format(timestampLayout)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return b, nil
}

// Cancel is a convenience alias for Update with status cancelled.  It
// is a soft transition, never a physical delete, so history is
// preserved and the id is never reused.
func (e *Engine) Cancel(ctx context.Context, actor Actor, id uint64) error {
	status := model.StatusCancelled
	_, err := e.Update(ctx, actor, id, UpdateRequest{Status: &status})
	return err
}

// ListFilter narrows List results.  Limit is capped; zero means the
// default page size.
type ListFilter struct {
	Status       string
	RestaurantID uint64
	Limit        int
	Offset       int
}

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// List returns bookings visible to the actor ordered by booking date
// descending.  Non-admin callers are always scoped to their own
// bookings regardless of the filters supplied; admins may filter by
// status and restaurant.
func (e *Engine) List(ctx context.Context, actor Actor, f ListFilter) ([]model.Booking, error) {
	if f.Status != "" && !model.IsBookingStatus(f.Status) {
		return nil, repository.ErrInvalidInput
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	flt := repository.BookingFilter{
		RestaurantID: f.RestaurantID,
		Status:       f.Status,
		Limit:        limit,
		Offset:       f.Offset,
	}
	if !actor.isAdmin() {
		flt.UserID = actor.UserID
	}
	return e.bookings.List(ctx, flt)
}

func sameTable(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func validateDate(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return repository.ErrInvalidInput
	}
	return nil
}

// normalizeTime validates HH:MM and zero-pads a single-digit hour.
func normalizeTime(s string) (string, error) {
	if !timeRe.MatchString(s) {
		return "", repository.ErrInvalidInput
	}
	if len(s) == 4 {
		s = "0" + s
	}
	return s, nil
}
