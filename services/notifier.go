package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"tutorhub-backend/config"
	"tutorhub-backend/linebot"
	"tutorhub-backend/models"
	"tutorhub-backend/utils"
)

// Notification event types.
const (
	EventConfirmed = "confirmed"
	EventCancelled = "cancelled"
)

// Event is one finalized booking outcome to announce.
type Event struct {
	Type    string
	Booking *models.Booking
}

// Notifier delivers booking notifications asynchronously after the booking
// transaction has committed. Delivery is best-effort: failures are logged
// and counted, never propagated back to the booking operation.
type Notifier struct {
	db    *gorm.DB
	cfg   *config.Config
	line  *linebot.Client
	sms   *twilio.RestClient
	queue chan Event
}

func NewNotifier(db *gorm.DB, cfg *config.Config, line *linebot.Client) *Notifier {
	n := &Notifier{
		db:    db,
		cfg:   cfg,
		line:  line,
		queue: make(chan Event, 256),
	}
	if cfg.TwilioAccountSID != "" {
		n.sms = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}
	return n
}

// Start launches the delivery worker.
func (n *Notifier) Start() {
	go func() {
		for evt := range n.queue {
			n.dispatch(evt)
		}
	}()
	log.Println("Notification dispatcher started")
}

// Enqueue hands off an event without blocking the request path. A full
// queue drops the event with a log line; the booking is already committed.
func (n *Notifier) Enqueue(evt Event) {
	select {
	case n.queue <- evt:
	default:
		log.Printf("Notification queue full, dropping %s event for %s",
			evt.Type, evt.Booking.BookingNumber)
	}
}

func (n *Notifier) dispatch(evt Event) {
	booking := evt.Booking
	text := n.messageText(evt)

	if n.line != nil && n.line.Enabled() && booking.ExternalUserID != nil {
		err := n.line.PushText(*booking.ExternalUserID, text)
		n.record(booking, evt.Type, "line", *booking.ExternalUserID, err)
	}

	if n.sms != nil {
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(booking.CustomerPhone)
		params.SetFrom(n.cfg.TwilioFromNumber)
		params.SetBody(text)
		_, err := n.sms.Api.CreateMessage(params)
		n.record(booking, evt.Type, "sms", booking.CustomerPhone, err)
	}

	if n.cfg.SMTPHost != "" {
		if email := n.customerEmail(booking.CustomerPhone); email != "" {
			err := n.sendEmail(email, n.subject(evt), text)
			n.record(booking, evt.Type, "email", email, err)
		}
	}
}

func (n *Notifier) messageText(evt Event) string {
	b := evt.Booking
	switch evt.Type {
	case EventCancelled:
		return fmt.Sprintf("您的預約已取消\n\n預約編號：%s\n老師：%s\n時間：%s %s-%s",
			b.BookingNumber, b.BookableName, b.Date, b.StartTime, b.EndTime)
	default:
		return fmt.Sprintf("預約成功！\n\n預約編號：%s\n老師：%s\n時間：%s %s-%s\n時數：%d小時\n費用：%d元\n\n請準時出席，期待您的到來！",
			b.BookingNumber, b.BookableName, b.Date, b.StartTime, b.EndTime, b.Hours, b.TotalPrice)
	}
}

func (n *Notifier) subject(evt Event) string {
	if evt.Type == EventCancelled {
		return fmt.Sprintf("預約取消通知 %s", evt.Booking.BookingNumber)
	}
	return fmt.Sprintf("預約確認 %s", evt.Booking.BookingNumber)
}

func (n *Notifier) customerEmail(phone string) string {
	var customer models.Customer
	err := n.db.Where("phone = ?", phone).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ""
	}
	if err != nil {
		log.Printf("Failed to look up customer email for %s: %v", phone, err)
		return ""
	}
	return customer.Email
}

func (n *Notifier) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.EmailFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(n.cfg.SMTPHost, n.cfg.SMTPPort, n.cfg.SMTPUser, n.cfg.SMTPPassword)
	return d.DialAndSend(m)
}

// record writes the per-attempt delivery log row and bumps the counter.
func (n *Notifier) record(booking *models.Booking, event, channel, recipient string, sendErr error) {
	status := "sent"
	errorMsg := ""
	if sendErr != nil {
		status = "failed"
		errorMsg = sendErr.Error()
		log.Printf("Failed to send %s notification via %s for %s: %v",
			event, channel, booking.BookingNumber, sendErr)
	}
	utils.M.NotificationsSent.WithLabelValues(channel, status).Inc()

	entry := models.NotificationLog{
		BookingID:    booking.ID,
		Event:        event,
		Channel:      channel,
		Recipient:    recipient,
		Status:       status,
		ErrorMessage: errorMsg,
		SentAt:       time.Now(),
	}
	if err := n.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to log notification for %s: %v", booking.BookingNumber, err)
	}
}
