package api

import (
	"context"
	"net/url"
	"time"
)

// Transaction is a completed or in-progress copra delivery settlement.
type Transaction struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"bookingId"`
	SellerName    string    `json:"sellerName"`
	PlateNumber   string    `json:"plateNumber"`
	CopraWeight   float64   `json:"copraWeight"`
	PricePerKilo  float64   `json:"pricePerKilo"`
	TotalAmount   float64   `json:"totalAmount"`
	PaymentStatus string    `json:"paymentStatus"`
	Date          time.Time `json:"date"`
}

// Payment is the settlement record attached to a transaction.
type Payment struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transactionId"`
	Method        string    `json:"method"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	PaidAt        time.Time `json:"paidAt,omitempty"`
}

// Transactions returns the caller's transaction history.
func (c *Client) Transactions(ctx context.Context) ([]Transaction, error) {
	var transactions []Transaction
	if err := c.do(ctx, "GET", "/transactions", nil, nil, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Payment returns the payment attached to a transaction. A backend 404
// means no payment has been recorded yet.
func (c *Client) Payment(ctx context.Context, transactionID string) (*Payment, error) {
	var payment Payment
	query := url.Values{"transactionID": {transactionID}}
	if err := c.do(ctx, "GET", "/transactions/payment", query, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// CreatePayment records a new payment against a transaction.
func (c *Client) CreatePayment(ctx context.Context, transactionID string, payment Payment) error {
	query := url.Values{"transactionID": {transactionID}}
	return c.do(ctx, "POST", "/transactions/payment", query, payment, nil)
}

// UpdatePayment amends a previously recorded payment.
func (c *Client) UpdatePayment(ctx context.Context, transactionID string, payment Payment) error {
	query := url.Values{"transactionID": {transactionID}}
	return c.do(ctx, "PUT", "/transactions/payment", query, payment, nil)
}
