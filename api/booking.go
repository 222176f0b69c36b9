package api

import (
	"context"
	"time"
)

// Booking is a delivery slot reserved by a copra buyer at an oil mill.
type Booking struct {
	ID           string    `json:"id,omitempty"`
	OilMillID    string    `json:"oilMillId"`
	Description  string    `json:"description,omitempty"`
	CopraWeight  float64   `json:"copraWeight"`
	PlateNumber  string    `json:"plateNumber"`
	DeliveryDate time.Time `json:"deliveryDate"`
	Status       string    `json:"status,omitempty"`
}

// Bookings returns the caller's bookings.
func (c *Client) Bookings(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	if err := c.do(ctx, "GET", "/booking", nil, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CreateBooking reserves a delivery slot and returns the stored record.
func (c *Client) CreateBooking(ctx context.Context, booking Booking) (*Booking, error) {
	var created Booking
	if err := c.do(ctx, "POST", "/booking", nil, booking, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// VerifyBooking redeems a booking's QR token at the mill gate.
func (c *Client) VerifyBooking(ctx context.Context, qrToken string) (*Booking, error) {
	var verified Booking
	body := map[string]string{"token": qrToken}
	if err := c.do(ctx, "POST", "/verify-booking", nil, body, &verified); err != nil {
		return nil, err
	}
	return &verified, nil
}
