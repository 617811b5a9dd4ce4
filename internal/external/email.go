package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EmailClient talks to the transactional email collaborator. Its failures
// are never fatal to the operations that use it: a booking stands whether or
// not the ticket email goes out.
type EmailClient struct {
	baseURL    string
	apiKey     string
	sender     string
	httpClient *http.Client
}

type EmailConfig struct {
	BaseURL string
	APIKey  string
	Sender  string
	Timeout time.Duration
}

// TicketEmailRequest is the dispatch payload for a ticket email. QRContent
// carries the serialized ticket payload the collaborator renders into a QR
// image.
type TicketEmailRequest struct {
	Sender           string            `json:"sender"`
	Recipient        string            `json:"recipient"`
	CustomerName     string            `json:"customer_name"`
	BookingReference string            `json:"booking_reference"`
	ShowTitle        string            `json:"show_title"`
	ShowDatetime     time.Time         `json:"show_datetime"`
	Seats            []TicketEmailSeat `json:"seats"`
	TotalAmount      int64             `json:"total_amount"`
	QRContent        string            `json:"qr_content"`
}

type TicketEmailSeat struct {
	Section string `json:"section"`
	Row     string `json:"row"`
	Number  int    `json:"number"`
}

type emailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewEmailClient(cfg EmailConfig) *EmailClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &EmailClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		sender:  cfg.Sender,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SendTicket dispatches a ticket email. A non-2xx response or an unset
// success flag is reported as an error; callers decide whether that matters.
func (ec *EmailClient) SendTicket(ctx context.Context, req *TicketEmailRequest) error {
	if req.Sender == "" {
		req.Sender = ec.sender
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		ec.baseURL+"/api/v1/emails/ticket", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if ec.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+ec.apiKey)
	}

	resp, err := ec.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send ticket email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	var result emailResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode email response: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("email dispatch rejected: %s", result.Message)
	}

	return nil
}
