package linebot

import (
	"fmt"
	"time"

	"tutorhub-backend/models"
)

// Flex message builders for the chat booking wizard. These are presentation
// glue: every wizard step carries its state in the postback data payload, so
// the server stays stateless between webhook calls.

type flex = map[string]interface{}

var weekdayZh = []string{"日", "一", "二", "三", "四", "五", "六"}

func weekdayLabel(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return weekdayZh[int(d.Weekday())]
}

// BuildWelcomeFlex is the service menu shown on follow and unknown text.
func BuildWelcomeFlex() flex {
	return flex{
		"type": "bubble",
		"size": "mega",
		"header": flex{
			"type":   "box",
			"layout": "vertical",
			"contents": []interface{}{
				textComp("📚 K書中心", "xl", "#ffffff", true),
				textComp("請選擇您需要的服務", "sm", "#ffffff99", false),
			},
			"backgroundColor": "#4A90E2",
			"paddingAll":      "20px",
		},
		"body": flex{
			"type":    "box",
			"layout":  "vertical",
			"spacing": "md",
			"contents": []interface{}{
				messageButton("📋 查看老師名單", "老師名單", "primary", "#4A90E2"),
				messageButton("📅 查詢我的預約", "查詢預約", "secondary", ""),
			},
		},
	}
}

// BuildBookableCarousel lists active bookables with a select button each.
func BuildBookableCarousel(bookables []models.Bookable) flex {
	bubbles := make([]interface{}, 0, len(bookables))
	for _, b := range bookables {
		specialty := b.Specialty
		if len([]rune(specialty)) > 30 {
			specialty = string([]rune(specialty)[:30]) + "..."
		}
		bubbles = append(bubbles, flex{
			"type": "bubble",
			"size": "kilo",
			"header": flex{
				"type":   "box",
				"layout": "vertical",
				"contents": []interface{}{
					textComp(b.Name+" 老師", "lg", "#ffffff", true),
					textComp(b.Title, "sm", "#ffffff99", false),
				},
				"backgroundColor": "#4A90E2",
				"paddingAll":      "15px",
			},
			"body": flex{
				"type":    "box",
				"layout":  "vertical",
				"spacing": "sm",
				"contents": []interface{}{
					infoRow("專長", specialty),
					infoRow("時薪", fmt.Sprintf("$%d/hr", b.HourlyRate)),
				},
			},
			"footer": flex{
				"type":   "box",
				"layout": "vertical",
				"contents": []interface{}{
					postbackButton("選擇此老師",
						fmt.Sprintf("action=select_bookable&bookable_id=%s", b.ID),
						fmt.Sprintf("我想預約 %s 老師", b.Name),
						"primary", "#4A90E2"),
				},
			},
		})
	}
	return flex{"type": "carousel", "contents": bubbles}
}

// BuildDatePickerFlex offers the next seven days as postback buttons.
func BuildDatePickerFlex(b *models.Bookable, today time.Time) flex {
	buttons := make([]interface{}, 0, 7)
	for i := 1; i <= 7; i++ {
		d := today.AddDate(0, 0, i)
		date := d.Format("2006-01-02")
		buttons = append(buttons, postbackButton(
			fmt.Sprintf("%s (週%s)", d.Format("01/02"), weekdayZh[int(d.Weekday())]),
			fmt.Sprintf("action=select_date&bookable_id=%s&date=%s", b.ID, date),
			fmt.Sprintf("選擇 %s", date),
			"secondary", ""))
	}
	return flex{
		"type": "bubble",
		"size": "mega",
		"header": flex{
			"type":   "box",
			"layout": "vertical",
			"contents": []interface{}{
				textComp(fmt.Sprintf("預約 %s 老師", b.Name), "lg", "#ffffff", true),
				textComp("請選擇上課日期", "sm", "#ffffff99", false),
			},
			"backgroundColor": "#27AE60",
			"paddingAll":      "15px",
		},
		"body": flex{
			"type":     "box",
			"layout":   "vertical",
			"spacing":  "sm",
			"contents": buttons,
		},
	}
}

// BuildTimePickerFlex lays the free slot labels out three per row.
func BuildTimePickerFlex(b *models.Bookable, date string, available []string) flex {
	if len(available) == 0 {
		return flex{
			"type": "bubble",
			"body": flex{
				"type":   "box",
				"layout": "vertical",
				"contents": []interface{}{
					textComp("😢 此日期已無可用時段", "md", "", true),
					textComp("請返回選擇其他日期", "sm", "#888888", false),
				},
			},
			"footer": flex{
				"type":   "box",
				"layout": "vertical",
				"contents": []interface{}{
					postbackButton("← 重新選擇日期",
						fmt.Sprintf("action=select_bookable&bookable_id=%s", b.ID),
						"重新選擇日期", "secondary", ""),
				},
			},
		}
	}

	rows := make([]interface{}, 0)
	row := make([]interface{}, 0, 3)
	for i, label := range available {
		row = append(row, flex{
			"type":   "button",
			"style":  "secondary",
			"height": "sm",
			"flex":   1,
			"action": flex{
				"type":        "postback",
				"label":       label,
				"data":        fmt.Sprintf("action=select_time&bookable_id=%s&date=%s&time=%s", b.ID, date, label),
				"displayText": fmt.Sprintf("選擇 %s", label),
			},
		})
		if len(row) == 3 || i == len(available)-1 {
			for len(row) < 3 {
				row = append(row, flex{"type": "filler"})
			}
			rows = append(rows, flex{
				"type":     "box",
				"layout":   "horizontal",
				"spacing":  "sm",
				"contents": row,
			})
			row = make([]interface{}, 0, 3)
		}
	}

	return flex{
		"type": "bubble",
		"size": "mega",
		"header": flex{
			"type":   "box",
			"layout": "vertical",
			"contents": []interface{}{
				textComp(fmt.Sprintf("預約 %s 老師", b.Name), "lg", "#ffffff", true),
				textComp(fmt.Sprintf("📅 %s　請選擇時段", date), "sm", "#ffffff99", false),
			},
			"backgroundColor": "#27AE60",
			"paddingAll":      "15px",
		},
		"body": flex{
			"type":     "box",
			"layout":   "vertical",
			"spacing":  "sm",
			"contents": rows,
		},
	}
}

// BuildConfirmFlex is the confirmation card before the booking is created.
func BuildConfirmFlex(b *models.Bookable, date, startTime string, slotMinutes, price int) flex {
	return flex{
		"type": "bubble",
		"size": "mega",
		"header": flex{
			"type":   "box",
			"layout": "vertical",
			"contents": []interface{}{
				textComp("確認預約資訊", "xl", "#ffffff", true),
			},
			"backgroundColor": "#E67E22",
			"paddingAll":      "15px",
		},
		"body": flex{
			"type":    "box",
			"layout":  "vertical",
			"spacing": "md",
			"contents": []interface{}{
				infoRow("👨‍🏫 老師", b.Name+" 老師"),
				infoRow("📅 日期", fmt.Sprintf("%s (週%s)", date, weekdayLabel(date))),
				infoRow("🕐 時間", startTime),
				infoRow("⏱ 時長", fmt.Sprintf("%d 分鐘", slotMinutes)),
				infoRow("💰 費用", fmt.Sprintf("$ %d 元", price)),
				flex{"type": "separator", "margin": "md"},
				textComp("確認後將完成預約，請準時出席。", "xs", "#888888", false),
			},
		},
		"footer": flex{
			"type":    "box",
			"layout":  "horizontal",
			"spacing": "sm",
			"contents": []interface{}{
				postbackButton("← 返回",
					fmt.Sprintf("action=select_date&bookable_id=%s&date=%s", b.ID, date),
					"重新選擇時段", "secondary", ""),
				postbackButton("✅ 確認預約",
					fmt.Sprintf("action=confirm_booking&bookable_id=%s&date=%s&time=%s", b.ID, date, startTime),
					fmt.Sprintf("確認預約 %s 老師 %s %s", b.Name, date, startTime),
					"primary", "#27AE60"),
			},
		},
	}
}

// BuildSuccessFlex is the post-booking receipt card.
func BuildSuccessFlex(booking *models.Booking) flex {
	return flex{
		"type": "bubble",
		"size": "mega",
		"header": flex{
			"type":   "box",
			"layout": "vertical",
			"contents": []interface{}{
				textComp("🎉 預約成功！", "xl", "#ffffff", true),
				textComp(booking.BookingNumber, "sm", "#ffffff99", false),
			},
			"backgroundColor": "#27AE60",
			"paddingAll":      "15px",
		},
		"body": flex{
			"type":    "box",
			"layout":  "vertical",
			"spacing": "md",
			"contents": []interface{}{
				infoRow("👨‍🏫 老師", booking.BookableName+" 老師"),
				infoRow("📅 日期", fmt.Sprintf("%s (週%s)", booking.Date, weekdayLabel(booking.Date))),
				infoRow("🕐 時間", fmt.Sprintf("%s-%s", booking.StartTime, booking.EndTime)),
				infoRow("💰 費用", fmt.Sprintf("$ %d 元", booking.TotalPrice)),
				flex{"type": "separator", "margin": "md"},
				textComp("請準時出席，期待您的到來！", "sm", "#27AE60", true),
			},
		},
		"footer": flex{
			"type":   "box",
			"layout": "vertical",
			"contents": []interface{}{
				messageButton("查詢我的預約", "查詢預約", "secondary", ""),
			},
		},
	}
}

// BuildMyBookingsFlex lists a chat user's confirmed bookings with cancel
// buttons, or a prompt to start booking when there are none.
func BuildMyBookingsFlex(bookings []models.Booking) flex {
	if len(bookings) == 0 {
		return flex{
			"type": "bubble",
			"body": flex{
				"type":   "box",
				"layout": "vertical",
				"contents": []interface{}{
					textComp("📅 尚無預約記錄", "md", "", true),
					textComp("點下方按鈕開始預約課程", "sm", "#888888", false),
				},
			},
			"footer": flex{
				"type":   "box",
				"layout": "vertical",
				"contents": []interface{}{
					messageButton("查看老師名單", "老師名單", "primary", "#4A90E2"),
				},
			},
		}
	}

	bubbles := make([]interface{}, 0, len(bookings))
	for _, b := range bookings {
		bubbles = append(bubbles, flex{
			"type": "bubble",
			"size": "kilo",
			"body": flex{
				"type":    "box",
				"layout":  "vertical",
				"spacing": "sm",
				"contents": []interface{}{
					textComp(b.BookingNumber, "xs", "#888888", false),
					textComp(b.BookableName+" 老師", "md", "", true),
					textComp(fmt.Sprintf("📅 %s  🕐 %s-%s", b.Date, b.StartTime, b.EndTime), "sm", "#555555", false),
					textComp(fmt.Sprintf("💰 $%d 元", b.TotalPrice), "sm", "#E05A2B", false),
				},
			},
			"footer": flex{
				"type":   "box",
				"layout": "vertical",
				"contents": []interface{}{
					postbackButton("取消預約",
						fmt.Sprintf("action=cancel_booking&booking_id=%s", b.ID),
						fmt.Sprintf("取消預約 %s", b.BookingNumber),
						"secondary", "#FF4444"),
				},
			},
		})
	}

	if len(bubbles) == 1 {
		return bubbles[0].(flex)
	}
	return flex{"type": "carousel", "contents": bubbles}
}

// BuildRegisterFlex asks a first-time chat user for name and phone.
func BuildRegisterFlex() flex {
	return flex{
		"type": "bubble",
		"size": "mega",
		"header": flex{
			"type":   "box",
			"layout": "vertical",
			"contents": []interface{}{
				textComp("📝 完成註冊", "xl", "#ffffff", true),
				textComp("首次預約，請提供基本資料", "sm", "#ffffff99", false),
			},
			"backgroundColor": "#8E44AD",
			"paddingAll":      "15px",
		},
		"body": flex{
			"type":    "box",
			"layout":  "vertical",
			"spacing": "md",
			"contents": []interface{}{
				textComp("請回覆以下格式：\n\n註冊 姓名 手機號碼\n\n範例：\n註冊 張小明 0912345678", "sm", "#555555", false),
			},
		},
	}
}

func textComp(text, size, color string, bold bool) flex {
	comp := flex{"type": "text", "text": text, "size": size, "wrap": true}
	if color != "" {
		comp["color"] = color
	}
	if bold {
		comp["weight"] = "bold"
	}
	return comp
}

func infoRow(label, value string) flex {
	return flex{
		"type":    "box",
		"layout":  "baseline",
		"spacing": "sm",
		"contents": []interface{}{
			flex{"type": "text", "text": label, "color": "#888888", "size": "sm", "flex": 3},
			flex{"type": "text", "text": value, "wrap": true, "color": "#333333", "size": "sm", "flex": 5, "weight": "bold"},
		},
	}
}

func messageButton(label, text, style, color string) flex {
	button := flex{
		"type":   "button",
		"style":  style,
		"height": "sm",
		"action": flex{"type": "message", "label": label, "text": text},
	}
	if color != "" {
		button["color"] = color
	}
	return button
}

func postbackButton(label, data, displayText, style, color string) flex {
	button := flex{
		"type":   "button",
		"style":  style,
		"height": "sm",
		"action": flex{
			"type":        "postback",
			"label":       label,
			"data":        data,
			"displayText": displayText,
		},
	}
	if color != "" {
		button["color"] = color
	}
	return button
}
