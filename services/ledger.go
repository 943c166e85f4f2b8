package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutorhub-backend/config"
	"tutorhub-backend/models"
	"tutorhub-backend/repository"
	"tutorhub-backend/utils"
)

// Ledger owns the booking lifecycle and the no-overlap invariant: for a
// fixed bookable and date, confirmed bookings never intersect.
type Ledger struct {
	bookings  *repository.BookingRepository
	bookables *repository.BookableRepository
	customers *repository.CustomerRepository
	notifier  *Notifier

	grid        []string
	slotMinutes int
}

func NewLedger(
	bookings *repository.BookingRepository,
	bookables *repository.BookableRepository,
	customers *repository.CustomerRepository,
	notifier *Notifier,
	cfg *config.Config,
) *Ledger {
	return &Ledger{
		bookings:    bookings,
		bookables:   bookables,
		customers:   customers,
		notifier:    notifier,
		grid:        utils.Grid(cfg.GridStartHour, cfg.GridEndHour),
		slotMinutes: cfg.SlotMinutes,
	}
}

// Grid returns the fixed-grid slot start labels in ascending time order.
func (l *Ledger) Grid() []string {
	return l.grid
}

// SlotMinutes returns the nominal length of one fixed-grid slot.
func (l *Ledger) SlotMinutes() int {
	return l.slotMinutes
}

// CreateRequest describes one booking attempt. For chat bookings Source is
// models.SourceChat and ExternalUserID identifies the requester; name and
// phone then come from the registered customer record.
type CreateRequest struct {
	BookableID     uuid.UUID
	Date           string
	StartTime      string
	EndTime        string // empty means one fixed-grid slot
	Name           string
	Phone          string
	Note           string
	Source         string
	ExternalUserID string
}

// CreateBooking resolves the bookable, re-checks availability under lock,
// prices the interval with truncated whole hours and persists the confirmed
// booking together with the customer counter update. The success
// notification is dispatched after commit and never affects the result.
func (l *Ledger) CreateBooking(req CreateRequest) (*models.Booking, error) {
	if err := l.validateInterval(&req); err != nil {
		return nil, err
	}

	bookable, err := l.bookables.Get(req.BookableID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !bookable.IsActive {
		return nil, ErrNotFound
	}

	var externalUserID *string
	switch req.Source {
	case models.SourceChat:
		customer, err := l.customers.FindByExternalID(req.ExternalUserID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, ErrRegistrationRequired
		}
		req.Name = customer.Name
		req.Phone = customer.Phone
		externalUserID = &req.ExternalUserID
	case models.SourceWeb:
		if strings.TrimSpace(req.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidation)
		}
		if !utils.ValidatePhone(req.Phone) {
			return nil, fmt.Errorf("%w: invalid phone number", ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown source %q", ErrValidation, req.Source)
	}

	hours, err := utils.HoursBetween(req.StartTime, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	totalPrice := hours * bookable.HourlyRate

	booking, err := l.bookings.CreateIfAvailable(repository.CreateParams{
		Bookable:       bookable,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Hours:          hours,
		TotalPrice:     totalPrice,
		CustomerName:   req.Name,
		CustomerPhone:  req.Phone,
		ExternalUserID: externalUserID,
		Source:         req.Source,
		Note:           req.Note,
	})
	if errors.Is(err, repository.ErrOverlap) {
		utils.M.BookingConflicts.Inc()
		return nil, ErrSlotConflict
	}
	if errors.Is(err, repository.ErrIdentityBound) {
		return nil, ErrIdentityBound
	}
	if err != nil {
		return nil, err
	}

	utils.M.BookingsCreated.WithLabelValues(req.Source).Inc()
	if l.notifier != nil {
		l.notifier.Enqueue(Event{Type: EventConfirmed, Booking: booking})
	}
	return booking, nil
}

// CancelBooking transitions a confirmed booking to cancelled. Chat
// requesters must own the booking; admins bypass the ownership check.
// Cancelling an already-cancelled booking is an idempotent no-op.
func (l *Ledger) CancelBooking(id uuid.UUID, requester string, isAdmin bool) (*models.Booking, error) {
	booking, err := l.bookings.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if !isAdmin {
		if booking.ExternalUserID == nil || *booking.ExternalUserID != requester {
			return nil, ErrForbidden
		}
	}

	switch booking.Status {
	case models.StatusCancelled:
		return booking, nil
	case models.StatusCompleted:
		return nil, ErrNotCancellable
	}

	if err := l.bookings.UpdateStatus(id, models.StatusCancelled); err != nil {
		return nil, err
	}
	booking.Status = models.StatusCancelled

	by := "owner"
	if isAdmin {
		by = "admin"
	}
	utils.M.BookingsCancelled.WithLabelValues(by).Inc()

	if l.notifier != nil {
		l.notifier.Enqueue(Event{Type: EventCancelled, Booking: booking})
	}
	return booking, nil
}

// IsAvailable reports whether [start, end) is free for the bookable on date.
func (l *Ledger) IsAvailable(bookableID uuid.UUID, date, start, end string) (bool, error) {
	overlap, err := l.bookings.HasOverlap(bookableID, date, start, end)
	return !overlap, err
}

// AvailableSlots returns the fixed-grid start labels still free for the
// bookable on date, plus the labels already taken, both in grid order.
func (l *Ledger) AvailableSlots(bookableID uuid.UUID, date string) (available, booked []string, err error) {
	if _, err := l.bookables.Get(bookableID); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	} else if err != nil {
		return nil, nil, err
	}

	bookings, err := l.bookings.ConfirmedByDate(bookableID, date)
	if err != nil {
		return nil, nil, err
	}

	available = make([]string, 0, len(l.grid))
	booked = make([]string, 0)
	for _, label := range l.grid {
		slotEnd := utils.SlotEnd(label, l.slotMinutes)
		taken := false
		for _, b := range bookings {
			if utils.Overlaps(label, slotEnd, b.StartTime, b.EndTime) {
				taken = true
				break
			}
		}
		if taken {
			booked = append(booked, label)
		} else {
			available = append(available, label)
		}
	}
	return available, booked, nil
}

// CompletePastBookings moves confirmed bookings whose interval has passed to
// the completed state.
func (l *Ledger) CompletePastBookings(now time.Time) (int64, error) {
	return l.bookings.CompletePast(now)
}

func (l *Ledger) validateInterval(req *CreateRequest) error {
	day, err := utils.ParseDate(req.Date)
	if err != nil {
		return fmt.Errorf("%w: invalid date", ErrValidation)
	}
	if day.Before(utils.BeginningOfDay(time.Now())) {
		return fmt.Errorf("%w: cannot book a past date", ErrValidation)
	}
	start, err := utils.NormalizeTime(req.StartTime)
	if err != nil {
		return fmt.Errorf("%w: invalid start time", ErrValidation)
	}
	req.StartTime = start
	if req.EndTime == "" {
		req.EndTime = utils.SlotEnd(req.StartTime, l.slotMinutes)
	} else {
		end, err := utils.NormalizeTime(req.EndTime)
		if err != nil {
			return fmt.Errorf("%w: invalid end time", ErrValidation)
		}
		req.EndTime = end
	}
	if req.EndTime <= req.StartTime {
		return fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}
	return nil
}
