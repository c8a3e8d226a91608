// Package mailer sends transactional email through the Brevo HTTP API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.brevo.com"
	senderName     = "Courtside"

	sendAttempts = 3
	retryDelay   = time.Second
	sendTimeout  = 15 * time.Second
)

// Email is a single outbound message. HTML is optional.
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Service delivers email via the Brevo transactional endpoint. The zero
// credentials case is valid; Send then fails and Configured reports false.
type Service struct {
	apiKey  string
	sender  string
	baseURL string
	client  *http.Client
}

func NewService(apiKey, sender string) *Service {
	s := &Service{
		apiKey:  apiKey,
		sender:  sender,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: sendTimeout},
	}
	if !s.Configured() {
		log.Printf("WARNING: email sending not configured (api key set: %t, sender set: %t)",
			apiKey != "", sender != "")
	}
	return s
}

// Configured reports whether the service has credentials to send mail.
func (s *Service) Configured() bool {
	return s.apiKey != "" && s.sender != ""
}

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	TextContent string         `json:"textContent"`
	HTMLContent string         `json:"htmlContent,omitempty"`
}

// Send delivers one email, retrying failed attempts a few times before
// giving up.
func (s *Service) Send(ctx context.Context, email Email) error {
	if !s.Configured() {
		return fmt.Errorf("email sending is not configured")
	}

	payload := brevoRequest{
		Sender:      brevoAddress{Name: senderName, Email: s.sender},
		To:          []brevoAddress{{Email: email.To}},
		Subject:     email.Subject,
		TextContent: email.Text,
		HTMLContent: email.HTML,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= sendAttempts; attempt++ {
		lastErr = s.post(ctx, email.To, body)
		if lastErr == nil {
			return nil
		}
		log.Printf("WARNING: email send attempt %d/%d to %s failed: %v",
			attempt, sendAttempts, email.To, lastErr)
		if attempt < sendAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return fmt.Errorf("send email after %d attempts: %w", sendAttempts, lastErr)
}

func (s *Service) post(ctx context.Context, to string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("brevo returned HTTP %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		MessageID string `json:"messageId"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || result.MessageID == "" {
		result.MessageID = "unknown"
	}
	log.Printf("INFO: email sent to %s (message id %s)", to, result.MessageID)
	return nil
}
