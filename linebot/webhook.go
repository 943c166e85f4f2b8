package linebot

import "encoding/json"

// Envelope is the webhook request body: a list of platform events.
type Envelope struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is one platform event. Only message, postback and follow events are
// handled; everything else is acknowledged and ignored.
type Event struct {
	Type           string    `json:"type"`
	WebhookEventID string    `json:"webhookEventId"`
	ReplyToken     string    `json:"replyToken"`
	Source         Source    `json:"source"`
	Message        *Message  `json:"message,omitempty"`
	Postback       *Postback `json:"postback,omitempty"`
}

type Source struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type Message struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

type Postback struct {
	Data string `json:"data"`
}

// ParseEnvelope decodes a webhook body. Malformed bodies yield an error that
// callers swallow with a success status, per the platform convention.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}
