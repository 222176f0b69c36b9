package api

import "context"

// QueueItem is one truck in a mill's virtual queue.
type QueueItem struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	PlateNumber string `json:"plateNumber"`
	Status      string `json:"status"`
}

// VirtualQueue returns the mill's current truck queue.
func (c *Client) VirtualQueue(ctx context.Context) ([]QueueItem, error) {
	var items []QueueItem
	if err := c.do(ctx, "GET", "/queue", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// OilMill is a mill as shown on the buyer's map: location plus the
// prices it currently advertises.
type OilMill struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Price     float64 `json:"price"`
	Distance  float64 `json:"distance"`
	IsOpen    bool    `json:"isOpen"`
}

// OilMills returns the mills visible to the buyer, nearest first.
func (c *Client) OilMills(ctx context.Context) ([]OilMill, error) {
	var mills []OilMill
	if err := c.do(ctx, "GET", "/map", nil, nil, &mills); err != nil {
		return nil, err
	}
	return mills, nil
}
