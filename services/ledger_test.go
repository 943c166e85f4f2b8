package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"tutorhub-backend/models"
	"tutorhub-backend/utils"
)

func webRequest(bookableID uuid.UUID, date, start, end string) CreateRequest {
	return CreateRequest{
		BookableID: bookableID,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		Name:       "張小明",
		Phone:      "0912345678",
		Source:     models.SourceWeb,
	}
}

func TestCreateBookingPricing(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		wantHours  int
		wantPrice  int
	}{
		{"two full hours", "09:00", "11:00", 2, 200},
		{"ninety minutes truncate to one hour", "09:00", "10:30", 1, 100},
		{"half hour truncates to zero", "09:00", "09:30", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newLedgerFixture(t)
			b := f.newBookable(t, "陳老師", 100, true)

			booking, err := f.ledger.CreateBooking(webRequest(b.ID, futureDate(7), tc.start, tc.end))
			if err != nil {
				t.Fatalf("CreateBooking: %v", err)
			}
			if booking.Hours != tc.wantHours {
				t.Errorf("Hours = %d, want %d", booking.Hours, tc.wantHours)
			}
			if booking.TotalPrice != tc.wantPrice {
				t.Errorf("TotalPrice = %d, want %d", booking.TotalPrice, tc.wantPrice)
			}
		})
	}
}

// The canonical contention sequence: two customers racing for 15:00, a third
// taking the adjacent hour, then the slot reopening after cancellation.
func TestCreateBookingConflict(t *testing.T) {
	f := newLedgerFixture(t)
	b := f.newBookable(t, "陳老師", 1000, true)
	date := futureDate(7)

	first, err := f.ledger.CreateBooking(webRequest(b.ID, date, "15:00", "16:00"))
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if !strings.HasPrefix(first.BookingNumber, "BK") {
		t.Errorf("BookingNumber = %q, want BK prefix", first.BookingNumber)
	}
	if first.TotalPrice != 1000 {
		t.Errorf("TotalPrice = %d, want 1000", first.TotalPrice)
	}

	second := webRequest(b.ID, date, "15:00", "16:00")
	second.Name = "李大華"
	second.Phone = "0987654321"
	if _, err := f.ledger.CreateBooking(second); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("second booking error = %v, want ErrSlotConflict", err)
	}

	third := webRequest(b.ID, date, "16:00", "17:00")
	third.Name = "王美麗"
	third.Phone = "0955555555"
	if _, err := f.ledger.CreateBooking(third); err != nil {
		t.Fatalf("adjacent booking: %v", err)
	}

	if _, err := f.ledger.CancelBooking(first.ID, "", true); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}

	available, _, err := f.ledger.AvailableSlots(b.ID, date)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if !contains(available, "15:00") {
		t.Errorf("15:00 not available after cancellation: %v", available)
	}

	if _, err := f.ledger.CreateBooking(second); err != nil {
		t.Errorf("rebooking freed slot: %v", err)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	f := newLedgerFixture(t)
	b := f.newBookable(t, "陳老師", 1000, true)
	inactive := f.newBookable(t, "前老師", 1000, false)
	date := futureDate(7)

	cases := []struct {
		name    string
		req     CreateRequest
		wantErr error
	}{
		{"past date", webRequest(b.ID, "2020-01-01", "15:00", "16:00"), ErrValidation},
		{"malformed date", webRequest(b.ID, "not-a-date", "15:00", "16:00"), ErrValidation},
		{"malformed start time", webRequest(b.ID, date, "3pm", "16:00"), ErrValidation},
		{"end before start", webRequest(b.ID, date, "16:00", "15:00"), ErrValidation},
		{"end equals start", webRequest(b.ID, date, "15:00", "15:00"), ErrValidation},
		{"missing name", func() CreateRequest {
			r := webRequest(b.ID, date, "15:00", "16:00")
			r.Name = "  "
			return r
		}(), ErrValidation},
		{"bad phone", func() CreateRequest {
			r := webRequest(b.ID, date, "15:00", "16:00")
			r.Phone = "12"
			return r
		}(), ErrValidation},
		{"unknown source", func() CreateRequest {
			r := webRequest(b.ID, date, "15:00", "16:00")
			r.Source = "fax"
			return r
		}(), ErrValidation},
		{"unknown bookable", webRequest(uuid.New(), date, "15:00", "16:00"), ErrNotFound},
		{"inactive bookable", webRequest(inactive.ID, date, "15:00", "16:00"), ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.CreateBooking(tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

// Labels compare as strings in every overlap check, so an accepted
// non-padded spelling like "9:00" must be stored as "09:00" — otherwise it
// would never collide with a padded booking over the same physical interval.
func TestCreateBookingNormalizesTimes(t *testing.T) {
	f := newLedgerFixture(t)
	b := f.newBookable(t, "陳老師", 100, true)
	date := futureDate(7)

	booking, err := f.ledger.CreateBooking(webRequest(b.ID, date, "9:00", "9:30"))
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if booking.StartTime != "09:00" || booking.EndTime != "09:30" {
		t.Errorf("interval = %s-%s, want 09:00-09:30", booking.StartTime, booking.EndTime)
	}

	if _, err := f.ledger.CreateBooking(webRequest(b.ID, date, "09:00", "10:00")); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("padded overlap error = %v, want ErrSlotConflict", err)
	}
	if _, err := f.ledger.CreateBooking(webRequest(b.ID, date, "9:15", "9:45")); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("non-padded overlap error = %v, want ErrSlotConflict", err)
	}

	available, booked, err := f.ledger.AvailableSlots(b.ID, date)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if contains(available, "09:00") || !contains(booked, "09:00") {
		t.Errorf("09:00 not marked booked: available=%v booked=%v", available, booked)
	}
}

func TestCreateBookingDefaultsEndTime(t *testing.T) {
	f := newLedgerFixture(t)
	b := f.newBookable(t, "陳老師", 1000, true)

	booking, err := f.ledger.CreateBooking(webRequest(b.ID, futureDate(7), "15:00", ""))
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if booking.EndTime != "16:00" {
		t.Errorf("EndTime = %q, want 16:00", booking.EndTime)
	}
	if booking.Hours != 1 || booking.TotalPrice != 1000 {
		t.Errorf("Hours/TotalPrice = %d/%d, want 1/1000", booking.Hours, booking.TotalPrice)
	}
}

func TestChatBookingRequiresRegistration(t *testing.T) {
	f := newLedgerFixture(t)
	b := f.newBookable(t, "陳老師", 1000, true)
	date := futureDate(7)

	req := CreateRequest{
		BookableID:     b.ID,
		Date:           date,
		StartTime:      "15:00",
		Source:         models.SourceChat,
		ExternalUserID: "U1",
	}
	if _, err := f.ledger.CreateBooking(req); !errors.Is(err, ErrRegistrationRequired) {
		t.Fatalf("error = %v, want ErrRegistrationRequired", err)
	}

	// Nothing may be persisted by the failed attempt.
	available, _, err := f.ledger.AvailableSlots(b.ID, date)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if !contains(available, "15:00") {
		t.Errorf("15:00 missing from availability after rejected attempt")
	}

	if _, err := f.customers.Register("張小明", "0912345678", "U1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	booking, err := f.ledger.CreateBooking(req)
	if err != nil {
		t.Fatalf("CreateBooking after registration: %v", err)
	}
	if booking.CustomerName != "張小明" || booking.CustomerPhone != "0912345678" {
		t.Errorf("customer = %s/%s, want registered identity",
			booking.CustomerName, booking.CustomerPhone)
	}
	if booking.Source != models.SourceChat {
		t.Errorf("Source = %q, want %q", booking.Source, models.SourceChat)
	}
	if booking.ExternalUserID == nil || *booking.ExternalUserID != "U1" {
		t.Errorf("ExternalUserID = %v, want U1", booking.ExternalUserID)
	}
}

func TestCancelBooking(t *testing.T) {
	setup := func(t *testing.T) (*ledgerFixture, *models.Booking) {
		f := newLedgerFixture(t)
		b := f.newBookable(t, "陳老師", 1000, true)
		if _, err := f.customers.Register("張小明", "0912345678", "U1"); err != nil {
			t.Fatalf("Register: %v", err)
		}
		booking, err := f.ledger.CreateBooking(CreateRequest{
			BookableID:     b.ID,
			Date:           futureDate(7),
			StartTime:      "15:00",
			Source:         models.SourceChat,
			ExternalUserID: "U1",
		})
		if err != nil {
			t.Fatalf("CreateBooking: %v", err)
		}
		return f, booking
	}

	t.Run("owner can cancel", func(t *testing.T) {
		f, booking := setup(t)
		cancelled, err := f.ledger.CancelBooking(booking.ID, "U1", false)
		if err != nil {
			t.Fatalf("CancelBooking: %v", err)
		}
		if cancelled.Status != models.StatusCancelled {
			t.Errorf("Status = %q, want %q", cancelled.Status, models.StatusCancelled)
		}
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		f, booking := setup(t)
		if _, err := f.ledger.CancelBooking(booking.ID, "U2", false); !errors.Is(err, ErrForbidden) {
			t.Fatalf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("admin bypasses ownership", func(t *testing.T) {
		f, booking := setup(t)
		cancelled, err := f.ledger.CancelBooking(booking.ID, "", true)
		if err != nil {
			t.Fatalf("CancelBooking: %v", err)
		}
		if cancelled.Status != models.StatusCancelled {
			t.Errorf("Status = %q, want %q", cancelled.Status, models.StatusCancelled)
		}
	})

	t.Run("re-cancel is idempotent", func(t *testing.T) {
		f, booking := setup(t)
		if _, err := f.ledger.CancelBooking(booking.ID, "U1", false); err != nil {
			t.Fatalf("first cancel: %v", err)
		}
		again, err := f.ledger.CancelBooking(booking.ID, "U1", false)
		if err != nil {
			t.Fatalf("second cancel: %v", err)
		}
		if again.Status != models.StatusCancelled {
			t.Errorf("Status = %q, want %q", again.Status, models.StatusCancelled)
		}
	})

	t.Run("completed booking cannot be cancelled", func(t *testing.T) {
		f, booking := setup(t)
		if err := f.bookings.UpdateStatus(booking.ID, models.StatusCompleted); err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
		if _, err := f.ledger.CancelBooking(booking.ID, "U1", false); !errors.Is(err, ErrNotCancellable) {
			t.Fatalf("error = %v, want ErrNotCancellable", err)
		}
	})

	t.Run("unknown booking", func(t *testing.T) {
		f, _ := setup(t)
		if _, err := f.ledger.CancelBooking(uuid.New(), "U1", false); !errors.Is(err, ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestAvailableSlots(t *testing.T) {
	f := newLedgerFixture(t)
	b := f.newBookable(t, "陳老師", 1000, true)
	date := futureDate(7)

	if _, err := f.ledger.CreateBooking(webRequest(b.ID, date, "10:00", "12:00")); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	available, booked, err := f.ledger.AvailableSlots(b.ID, date)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(available)+len(booked) != 12 {
		t.Fatalf("labels = %d available + %d booked, want 12 total", len(available), len(booked))
	}
	if len(booked) != 2 || booked[0] != "10:00" || booked[1] != "11:00" {
		t.Errorf("booked = %v, want [10:00 11:00]", booked)
	}
	if contains(available, "10:00") || contains(available, "11:00") {
		t.Errorf("available contains taken labels: %v", available)
	}
	if available[0] != "09:00" || available[len(available)-1] != "20:00" {
		t.Errorf("available bounds = %s..%s, want 09:00..20:00",
			available[0], available[len(available)-1])
	}

	if _, _, err := f.ledger.AvailableSlots(uuid.New(), date); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown bookable error = %v, want ErrNotFound", err)
	}
}

func TestCompletePastBookings(t *testing.T) {
	f := newLedgerFixture(t)
	b := f.newBookable(t, "陳老師", 1000, true)

	// Inserted directly: the ledger refuses past dates on the write path.
	past := models.Booking{
		BookingNumber: "BK202601010001",
		BookableID:    b.ID,
		CustomerName:  "張小明",
		CustomerPhone: "0912345678",
		Date:          "2026-01-01",
		StartTime:     "10:00",
		EndTime:       "11:00",
		Status:        models.StatusConfirmed,
		Source:        models.SourceWeb,
	}
	if err := f.db.Create(&past).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	future, err := f.ledger.CreateBooking(webRequest(b.ID, futureDate(7), "10:00", "11:00"))
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	n, err := f.ledger.CompletePastBookings(time.Now())
	if err != nil {
		t.Fatalf("CompletePastBookings: %v", err)
	}
	if n != 1 {
		t.Errorf("transitioned = %d, want 1", n)
	}

	refreshed, err := f.bookings.GetByID(past.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.Status != models.StatusCompleted {
		t.Errorf("past booking status = %q, want %q", refreshed.Status, models.StatusCompleted)
	}
	refreshed, err = f.bookings.GetByID(future.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.Status != models.StatusConfirmed {
		t.Errorf("future booking status = %q, want %q", refreshed.Status, models.StatusConfirmed)
	}
}

func TestGrid(t *testing.T) {
	f := newLedgerFixture(t)
	grid := f.ledger.Grid()
	if len(grid) != 12 {
		t.Fatalf("len(grid) = %d, want 12", len(grid))
	}
	if grid[0] != "09:00" || grid[11] != "20:00" {
		t.Errorf("grid bounds = %s..%s, want 09:00..20:00", grid[0], grid[11])
	}
	if utils.SlotEnd(grid[11], f.ledger.SlotMinutes()) != "21:00" {
		t.Errorf("last slot end = %s, want 21:00", utils.SlotEnd(grid[11], f.ledger.SlotMinutes()))
	}
}

func contains(labels []string, want string) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}
	return false
}
