// Package linebot is a thin client for the LINE Messaging API: reply/push
// sends and webhook signature verification. Message content is built by the
// template helpers; the core only depends on the send capability.
package linebot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.line.me"

// Client pushes and replies messages. Calls carry a short fixed timeout and
// failures are reported to the caller, who treats them as non-fatal.
type Client struct {
	token   string
	apiBase string
	http    *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:   token,
		apiBase: defaultAPIBase,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBase points the client at a different API host, for tests.
func NewClientWithBase(token, apiBase string) *Client {
	c := NewClient(token)
	c.apiBase = apiBase
	return c
}

// Enabled reports whether a channel access token is configured. All send
// methods no-op silently when it is not, mirroring a dev setup without LINE.
func (c *Client) Enabled() bool {
	return c.token != ""
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type flexMessage struct {
	Type     string                 `json:"type"`
	AltText  string                 `json:"altText"`
	Contents map[string]interface{} `json:"contents"`
}

func (c *Client) PushText(to, text string) error {
	return c.send("/v2/bot/message/push", map[string]interface{}{
		"to":       to,
		"messages": []interface{}{textMessage{Type: "text", Text: text}},
	})
}

func (c *Client) ReplyText(replyToken, text string) error {
	return c.send("/v2/bot/message/reply", map[string]interface{}{
		"replyToken": replyToken,
		"messages":   []interface{}{textMessage{Type: "text", Text: text}},
	})
}

func (c *Client) PushFlex(to, altText string, contents map[string]interface{}) error {
	return c.send("/v2/bot/message/push", map[string]interface{}{
		"to":       to,
		"messages": []interface{}{flexMessage{Type: "flex", AltText: altText, Contents: contents}},
	})
}

func (c *Client) ReplyFlex(replyToken, altText string, contents map[string]interface{}) error {
	return c.send("/v2/bot/message/reply", map[string]interface{}{
		"replyToken": replyToken,
		"messages":   []interface{}{flexMessage{Type: "flex", AltText: altText, Contents: contents}},
	})
}

func (c *Client) send(path string, payload map[string]interface{}) error {
	if !c.Enabled() {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.apiBase+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("line api %s: status %d: %s", path, resp.StatusCode, detail)
	}
	return nil
}
