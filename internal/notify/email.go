package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// EmailRelay sends through the EmailJS REST API.
type EmailRelay struct {
	Endpoint  string
	ServiceID string
	PublicKey string
	HTTP      *http.Client
}

func NewEmailRelay(endpoint, serviceID, publicKey string) *EmailRelay {
	return &EmailRelay{
		Endpoint:  endpoint,
		ServiceID: serviceID,
		PublicKey: publicKey,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
	}
}

type emailRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (e *EmailRelay) Notify(ctx context.Context, m Message) error {
	body, err := json.Marshal(emailRequest{
		ServiceID:  e.ServiceID,
		TemplateID: m.TemplateID,
		UserID:     e.PublicKey,
		TemplateParams: map[string]string{
			"to_email":  m.To,
			"from_name": fromName,
			"subject":   m.Subject,
			"message":   m.Body,
			"reply_to":  m.ReplyTo,
		},
	})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs send: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
