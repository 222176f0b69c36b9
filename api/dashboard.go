package api

import "context"

// ChartData is a labelled series for the dashboard charts.
type ChartData struct {
	Labels   []string `json:"labels"`
	Datasets []struct {
		Data []float64 `json:"data"`
	} `json:"datasets"`
}

// ChartSummaryItem is one headline figure under a chart.
type ChartSummaryItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Dashboard is the oil-mill home screen payload.
type Dashboard struct {
	Expense          ChartData `json:"expense"`
	Weight           ChartData `json:"weight"`
	ChartSummaryData struct {
		Expense []ChartSummaryItem `json:"expense"`
		Weight  []ChartSummaryItem `json:"weight"`
	} `json:"chartSummaryData"`
	UnloadedTruck int `json:"unloadedTruck"`
}

// OilMillDashboard returns the mill's expense/weight charts and the
// count of trucks still waiting to unload.
func (c *Client) OilMillDashboard(ctx context.Context) (*Dashboard, error) {
	var dashboard Dashboard
	if err := c.do(ctx, "GET", "/dashboard/oilhome", nil, nil, &dashboard); err != nil {
		return nil, err
	}
	return &dashboard, nil
}
