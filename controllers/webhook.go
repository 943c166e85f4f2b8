// controllers/webhook.go
package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tutorhub-backend/config"
	"tutorhub-backend/linebot"
	"tutorhub-backend/models"
	"tutorhub-backend/repository"
	"tutorhub-backend/services"
	"tutorhub-backend/utils"
)

// WebhookController handles the chat-platform webhook: signature
// verification, event de-duplication and the postback booking wizard. The
// wizard carries its state in postback payloads; the server persists nothing
// between webhook calls except the customer record.
type WebhookController struct {
	Cfg           *config.Config
	Ledger        *services.Ledger
	Bookables     *repository.BookableRepository
	Bookings      *repository.BookingRepository
	Customers     *repository.CustomerRepository
	Conversations *repository.ConversationRepository
	Line          *linebot.Client
	Redis         *redis.Client
}

// Handle is POST /webhook/line. Signature mismatches abort with 403 before
// any event processing; with no channel secret configured every request is
// rejected rather than admitted unverified. Malformed bodies are acknowledged
// with 200 so the platform does not retry them.
func (ctl *WebhookController) Handle(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusOK, "OK")
		return
	}

	signature := c.GetHeader("X-Line-Signature")
	if !linebot.ValidateSignature(ctl.Cfg.LineChannelSecret, signature, body) {
		log.Println("LINE signature verification failed")
		c.String(http.StatusForbidden, "Invalid signature")
		return
	}

	envelope, err := linebot.ParseEnvelope(body)
	if err != nil {
		log.Printf("Failed to parse webhook body: %v", err)
		c.String(http.StatusOK, "OK")
		return
	}

	for _, event := range envelope.Events {
		if event.Source.UserID == "" {
			continue
		}
		if ctl.alreadySeen(c.Request.Context(), event.WebhookEventID) {
			continue
		}
		utils.M.WebhookEvents.WithLabelValues(event.Type).Inc()

		switch {
		case event.Type == "message" && event.Message != nil && event.Message.Type == "text":
			ctl.handleText(event)
		case event.Type == "postback" && event.Postback != nil:
			ctl.handlePostback(event)
		case event.Type == "follow":
			ctl.Line.ReplyFlex(event.ReplyToken, "歡迎使用 K書中心預約系統", linebot.BuildWelcomeFlex())
		}
	}

	c.String(http.StatusOK, "OK")
}

// alreadySeen de-duplicates redelivered events via Redis SETNX. Without
// Redis (or an event id) every event is treated as new.
func (ctl *WebhookController) alreadySeen(ctx context.Context, eventID string) bool {
	if ctl.Redis == nil || eventID == "" {
		return false
	}
	ok, err := ctl.Redis.SetNX(ctx, "webhook:event:"+eventID, 1, 24*time.Hour).Result()
	if err != nil {
		log.Printf("Webhook dedup check failed: %v", err)
		return false
	}
	return !ok
}

func (ctl *WebhookController) handleText(event linebot.Event) {
	text := strings.TrimSpace(event.Message.Text)
	userID := event.Source.UserID

	switch {
	case strings.Contains(text, "老師名單") || strings.Contains(text, "老師列表"):
		bookables, err := ctl.Bookables.ListActive()
		if err != nil {
			ctl.Line.ReplyText(event.ReplyToken, "系統忙碌中，請稍後再試。")
			return
		}
		ctl.Line.ReplyFlex(event.ReplyToken,
			fmt.Sprintf("目前有 %d 位老師可預約", len(bookables)),
			linebot.BuildBookableCarousel(bookables))

	case strings.Contains(text, "查詢") || strings.Contains(text, "我的預約"):
		bookings, err := ctl.Bookings.ListByExternalID(userID, models.StatusConfirmed)
		if err != nil {
			ctl.Line.ReplyText(event.ReplyToken, "系統忙碌中，請稍後再試。")
			return
		}
		ctl.Line.ReplyFlex(event.ReplyToken,
			fmt.Sprintf("您有 %d 筆預約", len(bookings)),
			linebot.BuildMyBookingsFlex(bookings))

	case strings.HasPrefix(text, "註冊"):
		ctl.handleRegister(event.ReplyToken, userID, text)

	default:
		ctl.Line.ReplyFlex(event.ReplyToken, "K書中心預約系統", linebot.BuildWelcomeFlex())
	}
}

// handleRegister processes "註冊 <name> <phone>", the third step of the
// chat booking protocol for first-time users.
func (ctl *WebhookController) handleRegister(replyToken, userID, text string) {
	parts := strings.Fields(text)
	if len(parts) < 3 {
		ctl.Line.ReplyText(replyToken, "格式錯誤，請使用：\n註冊 姓名 手機號碼\n例：註冊 張小明 0912345678")
		return
	}
	name, phone := parts[1], parts[2]
	if !utils.ValidatePhone(phone) {
		ctl.Line.ReplyText(replyToken, "手機號碼格式錯誤，請重新輸入。")
		return
	}

	customer, err := ctl.Customers.Register(name, phone, userID)
	if errors.Is(err, repository.ErrIdentityBound) {
		ctl.Line.ReplyText(replyToken, "此帳號已綁定其他電話，如需變更請聯絡我們。")
		return
	}
	if err != nil {
		ctl.Line.ReplyText(replyToken, "註冊失敗，請稍後再試。")
		return
	}
	ctl.Line.ReplyText(replyToken,
		fmt.Sprintf("✅ 歡迎 %s！已完成註冊，請繼續選擇預約時間。", customer.Name))
}

func (ctl *WebhookController) handlePostback(event linebot.Event) {
	params, err := url.ParseQuery(event.Postback.Data)
	if err != nil {
		ctl.Line.ReplyText(event.ReplyToken, "未知操作，請重新選擇。")
		return
	}
	action := params.Get("action")
	userID := event.Source.UserID

	switch action {
	case "select_bookable":
		bookable, ok := ctl.resolveBookable(event.ReplyToken, params.Get("bookable_id"))
		if !ok {
			return
		}
		ctl.Line.ReplyFlex(event.ReplyToken,
			fmt.Sprintf("選擇預約日期 - %s 老師", bookable.Name),
			linebot.BuildDatePickerFlex(bookable, time.Now()))

	case "select_date":
		bookable, ok := ctl.resolveBookable(event.ReplyToken, params.Get("bookable_id"))
		if !ok {
			return
		}
		date := params.Get("date")
		available, _, err := ctl.Ledger.AvailableSlots(bookable.ID, date)
		if err != nil {
			ctl.Line.ReplyText(event.ReplyToken, "參數錯誤，請重新選擇。")
			return
		}
		ctl.Line.ReplyFlex(event.ReplyToken,
			fmt.Sprintf("%s 可用時段", date),
			linebot.BuildTimePickerFlex(bookable, date, available))

	case "select_time":
		bookable, ok := ctl.resolveBookable(event.ReplyToken, params.Get("bookable_id"))
		if !ok {
			return
		}
		date, startTime := params.Get("date"), params.Get("time")
		price := bookable.HourlyRate * ctl.Ledger.SlotMinutes() / 60
		ctl.Line.ReplyFlex(event.ReplyToken, "確認預約資訊",
			linebot.BuildConfirmFlex(bookable, date, startTime, ctl.Ledger.SlotMinutes(), price))

	case "confirm_booking":
		ctl.confirmBooking(event, params)

	case "cancel_booking":
		ctl.cancelBooking(event, params, userID)

	default:
		ctl.Line.ReplyText(event.ReplyToken, "未知操作，請重新選擇。")
	}
}

func (ctl *WebhookController) confirmBooking(event linebot.Event, params url.Values) {
	userID := event.Source.UserID
	bookableID, err := uuid.Parse(params.Get("bookable_id"))
	if err != nil {
		ctl.Line.ReplyText(event.ReplyToken, "參數錯誤，請重新選擇。")
		return
	}
	date, startTime := params.Get("date"), params.Get("time")

	booking, err := ctl.Ledger.CreateBooking(services.CreateRequest{
		BookableID:     bookableID,
		Date:           date,
		StartTime:      startTime,
		Source:         models.SourceChat,
		ExternalUserID: userID,
	})
	switch {
	case errors.Is(err, services.ErrRegistrationRequired):
		// Not an error: the three-step protocol routes first-time users
		// through registration, then they retry the confirmation.
		ctl.Line.ReplyFlex(event.ReplyToken, "請先完成註冊", linebot.BuildRegisterFlex())
		return
	case errors.Is(err, services.ErrSlotConflict):
		ctl.Line.ReplyText(event.ReplyToken,
			fmt.Sprintf("⚠️ 很抱歉，%s %s 已被預約，請重新選擇時段。", date, startTime))
		return
	case errors.Is(err, services.ErrNotFound):
		ctl.Line.ReplyText(event.ReplyToken, "老師不存在，請重新選擇。")
		return
	case err != nil:
		log.Printf("Chat booking failed for %s: %v", userID, err)
		ctl.Line.ReplyText(event.ReplyToken, "預約失敗，請稍後再試。")
		return
	}

	ctl.logConversation(userID,
		fmt.Sprintf("Postback confirm: bookable=%s date=%s time=%s", bookableID, date, startTime),
		"預約成功", "booking", &booking.ID)

	ctl.Line.ReplyFlex(event.ReplyToken,
		fmt.Sprintf("預約成功！%s", booking.BookingNumber),
		linebot.BuildSuccessFlex(booking))
}

func (ctl *WebhookController) cancelBooking(event linebot.Event, params url.Values, userID string) {
	bookingID, err := uuid.Parse(params.Get("booking_id"))
	if err != nil {
		ctl.Line.ReplyText(event.ReplyToken, "參數錯誤，請重新選擇。")
		return
	}

	booking, err := ctl.Ledger.CancelBooking(bookingID, userID, false)
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrForbidden) {
		ctl.Line.ReplyText(event.ReplyToken, "找不到此預約或您無權取消。")
		return
	}
	if errors.Is(err, services.ErrNotCancellable) {
		ctl.Line.ReplyText(event.ReplyToken, "此預約已結束，無法取消。")
		return
	}
	if err != nil {
		ctl.Line.ReplyText(event.ReplyToken, "取消失敗，請稍後再試。")
		return
	}

	ctl.logConversation(userID,
		fmt.Sprintf("Postback cancel: booking=%s", bookingID),
		"已取消", "cancel", &booking.ID)

	ctl.Line.ReplyText(event.ReplyToken,
		fmt.Sprintf("✅ 已取消預約 %s\n%s 老師 %s %s-%s",
			booking.BookingNumber, booking.BookableName,
			booking.Date, booking.StartTime, booking.EndTime))
}

func (ctl *WebhookController) resolveBookable(replyToken, rawID string) (*models.Bookable, bool) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		ctl.Line.ReplyText(replyToken, "參數錯誤，請重新選擇。")
		return nil, false
	}
	bookable, err := ctl.Bookables.Get(id)
	if err != nil || !bookable.IsActive {
		ctl.Line.ReplyText(replyToken, "老師不存在，請重新選擇。")
		return nil, false
	}
	return bookable, true
}

func (ctl *WebhookController) logConversation(userID, userMessage, response, intent string, bookingID *uuid.UUID) {
	conv := models.Conversation{
		ExternalUserID: userID,
		UserMessage:    userMessage,
		BotResponse:    response,
		Intent:         intent,
		BookingID:      bookingID,
	}
	if err := ctl.Conversations.Create(&conv); err != nil {
		log.Printf("Failed to log conversation for %s: %v", userID, err)
	}
}
