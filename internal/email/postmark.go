// Package email sends transactional mail through Postmark.
package email

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"
)

const defaultAPIURL = "https://api.postmarkapp.com/email"

var ErrNotConfigured = errors.New("email client not configured: missing server token")

type Client struct {
	serverToken string
	fromEmail   string
	baseURL     string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL points the client at a different Postmark endpoint.
func WithAPIURL(u string) Option {
	return func(cl *Client) {
		cl.apiURL = u
	}
}

func NewClient(serverToken, fromEmail, baseURL string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		baseURL:     baseURL,
		apiURL:      defaultAPIURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type message struct {
	From          string `json:"From"`
	To            string `json:"To"`
	Subject       string `json:"Subject"`
	HtmlBody      string `json:"HtmlBody"`
	TextBody      string `json:"TextBody"`
	MessageStream string `json:"MessageStream"`
}

type apiError struct {
	ErrorCode int    `json:"ErrorCode"`
	Message   string `json:"Message"`
}

// SendInviteCode mails a household invite code.
func (c *Client) SendInviteCode(toEmail, code, householdName, inviterName string) error {
	subject := fmt.Sprintf("%s ti ha invitato in %s su Housy", inviterName, householdName)
	text := fmt.Sprintf(
		"%s ti ha invitato a unirti a \"%s\".\n\nCodice invito: %s\n\nApri %s, registrati e inserisci il codice.",
		inviterName, householdName, code, c.baseURL,
	)
	body := fmt.Sprintf(
		`<p>%s ti ha invitato a unirti a <strong>%s</strong>.</p><p>Codice invito: <strong style="letter-spacing:4px">%s</strong></p><p><a href="%s">Apri Housy</a>, registrati e inserisci il codice.</p>`,
		html.EscapeString(inviterName), html.EscapeString(householdName), code, html.EscapeString(c.baseURL),
	)
	return c.send(message{To: toEmail, Subject: subject, TextBody: text, HtmlBody: body})
}

func (c *Client) send(m message) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	m.From = c.fromEmail
	m.MessageStream = "outbound"

	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var ae apiError
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &ae) == nil && ae.Message != "" {
			return fmt.Errorf("postmark API error %d: %s (status %d)", ae.ErrorCode, ae.Message, resp.StatusCode)
		}
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}
	return nil
}
