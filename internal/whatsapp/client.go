// Package whatsapp talks to the WhatsApp Cloud API: an outbound client for
// text and button messages, and the webhook that receives citizen messages.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hudumalabs/districtbot/internal/flow"
)

const defaultBaseURL = "https://graph.facebook.com/v21.0"

// Client sends messages through the WhatsApp Cloud API.
type Client struct {
	phoneID     string
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// NewClient creates a Cloud API client for the given business phone number id.
func NewClient(phoneID, accessToken string) *Client {
	return &Client{
		phoneID:     phoneID,
		accessToken: accessToken,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SetBaseURL overrides the Cloud API endpoint. Used in tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

type interactivePayload struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Interactive      interactiveBody `json:"interactive"`
}

type interactiveBody struct {
	Type   string            `json:"type"`
	Body   textBody          `json:"body"`
	Action interactiveAction `json:"action"`
}

type interactiveAction struct {
	Buttons []interactiveButton `json:"buttons"`
}

type interactiveButton struct {
	Type  string      `json:"type"`
	Reply buttonReply `json:"reply"`
}

type buttonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("refusing to send an empty message to %s", to)
	}
	return c.post(ctx, textPayload{
		MessagingProduct: "whatsapp",
		To:               normalizePhone(to),
		Type:             "text",
		Text:             textBody{Body: body},
	})
}

// SendButtons sends a text message with interactive reply buttons. The Cloud
// API allows at most three buttons with 20-character titles, so extras are
// dropped and long titles truncated rather than failing the send.
func (c *Client) SendButtons(ctx context.Context, to, body string, buttons []flow.Button) error {
	if len(buttons) == 0 {
		return c.SendText(ctx, to, body)
	}
	if len(buttons) > 3 {
		buttons = buttons[:3]
	}

	var apiButtons []interactiveButton
	for _, b := range buttons {
		title := b.Title
		if len(title) > 20 {
			title = title[:20]
		}
		apiButtons = append(apiButtons, interactiveButton{
			Type:  "reply",
			Reply: buttonReply{ID: b.ID, Title: title},
		})
	}

	return c.post(ctx, interactivePayload{
		MessagingProduct: "whatsapp",
		To:               normalizePhone(to),
		Type:             "interactive",
		Interactive: interactiveBody{
			Type:   "button",
			Body:   textBody{Body: body},
			Action: interactiveAction{Buttons: apiButtons},
		},
	})
}

func (c *Client) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("cloud API returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// normalizePhone strips everything but digits, so "+255 712 345 678" and
// "255712345678" address the same recipient.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
