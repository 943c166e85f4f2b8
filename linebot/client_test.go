package linebot

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientPushText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClientWithBase("test-token", srv.URL)
	if err := c.PushText("U1", "hello"); err != nil {
		t.Fatalf("PushText: %v", err)
	}

	if gotPath != "/v2/bot/message/push" {
		t.Errorf("path = %q, want /v2/bot/message/push", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want Bearer test-token", gotAuth)
	}
	if gotBody["to"] != "U1" {
		t.Errorf("to = %v, want U1", gotBody["to"])
	}
	messages, ok := gotBody["messages"].([]interface{})
	if !ok || len(messages) != 1 {
		t.Fatalf("messages = %v, want one message", gotBody["messages"])
	}
	msg := messages[0].(map[string]interface{})
	if msg["type"] != "text" || msg["text"] != "hello" {
		t.Errorf("message = %v, want text hello", msg)
	}
}

func TestClientReplyFlex(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClientWithBase("test-token", srv.URL)
	contents := map[string]interface{}{"type": "bubble"}
	if err := c.ReplyFlex("reply-token-1", "alt", contents); err != nil {
		t.Fatalf("ReplyFlex: %v", err)
	}

	if gotPath != "/v2/bot/message/reply" {
		t.Errorf("path = %q, want /v2/bot/message/reply", gotPath)
	}
	if gotBody["replyToken"] != "reply-token-1" {
		t.Errorf("replyToken = %v, want reply-token-1", gotBody["replyToken"])
	}
	messages := gotBody["messages"].([]interface{})
	msg := messages[0].(map[string]interface{})
	if msg["type"] != "flex" || msg["altText"] != "alt" {
		t.Errorf("message = %v, want flex with altText", msg)
	}
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid reply token"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClientWithBase("test-token", srv.URL)
	if err := c.ReplyText("expired", "hello"); err == nil {
		t.Error("ReplyText = nil error, want error on 400")
	}
}

func TestClientDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request from disabled client")
	}))
	defer srv.Close()

	c := NewClientWithBase("", srv.URL)
	if c.Enabled() {
		t.Error("Enabled() = true without token")
	}
	if err := c.PushText("U1", "hello"); err != nil {
		t.Errorf("disabled PushText = %v, want nil", err)
	}
}

func TestParseEnvelope(t *testing.T) {
	body := []byte(`{
		"destination": "bot",
		"events": [{
			"type": "message",
			"webhookEventId": "evt-1",
			"replyToken": "rt-1",
			"source": {"type": "user", "userId": "U1"},
			"message": {"id": "m1", "type": "text", "text": "老師名單"}
		}]
	}`)

	envelope, err := ParseEnvelope(body)
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	if len(envelope.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(envelope.Events))
	}
	evt := envelope.Events[0]
	if evt.Type != "message" || evt.Source.UserID != "U1" {
		t.Errorf("event = %+v, want message from U1", evt)
	}
	if evt.Message == nil || evt.Message.Text != "老師名單" {
		t.Errorf("message = %+v, want 老師名單", evt.Message)
	}

	if _, err := ParseEnvelope([]byte("not json")); err == nil {
		t.Error("ParseEnvelope(not json) = nil error, want error")
	}
}
