package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TicketSeat is the seat summary embedded in a ticket payload.
type TicketSeat struct {
	Section string `json:"section"`
	Row     string `json:"row"`
	Number  int    `json:"number"`
}

// TicketPayload is the self-describing record encoded into the ticket QR
// code. BookingID is zero when the payload is first built and is patched in
// once the booking row exists. The encoded form must stay parseable by the
// verifier for every booking ever issued, so fields are only ever added.
type TicketPayload struct {
	BookingID        int64        `json:"booking_id"`
	BookingReference string       `json:"booking_reference"`
	ShowID           int64        `json:"show_id"`
	ShowTitle        string       `json:"show_title"`
	ShowDatetime     time.Time    `json:"show_datetime"`
	CustomerName     string       `json:"customer_name"`
	Seats            []TicketSeat `json:"seats"`
}

// Encode serializes the payload into the transportable QR string.
func (p *TicketPayload) Encode() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode ticket payload: %w", err)
	}
	return string(data), nil
}

// DecodeTicketPayload parses a QR string back into a TicketPayload.
func DecodeTicketPayload(raw string) (*TicketPayload, error) {
	var payload TicketPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode ticket payload: %w", err)
	}
	return &payload, nil
}
