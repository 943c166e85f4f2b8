package services

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// StartCompletionScheduler runs the confirmed-to-completed transition every
// hour, so past bookings stop showing up as upcoming.
func StartCompletionScheduler(ledger *Ledger) *cron.Cron {
	c := cron.New()

	c.AddFunc("@hourly", func() {
		n, err := ledger.CompletePastBookings(time.Now())
		if err != nil {
			log.Printf("Failed to complete past bookings: %v", err)
			return
		}
		if n > 0 {
			log.Printf("Marked %d past bookings completed", n)
		}
	})

	c.Start()
	log.Println("Booking completion scheduler started")
	return c
}
