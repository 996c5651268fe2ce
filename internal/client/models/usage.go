package models

// UsagePoint is one day of request statistics.
type UsagePoint struct {
	Date             string `json:"date"`
	Requests         int64  `json:"requests"`
	TotalTokens      int64  `json:"total_tokens"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
}

// UsageTotals aggregates a usage series.
type UsageTotals struct {
	Requests    int64
	TotalTokens int64
}

// SumUsage totals requests and tokens across points.
func SumUsage(points []UsagePoint) UsageTotals {
	var t UsageTotals
	for _, p := range points {
		t.Requests += p.Requests
		t.TotalTokens += p.TotalTokens
	}
	return t
}

// UsageQuery selects the window of GET /api/usage. An empty UserID means all
// users.
type UsageQuery struct {
	Days   int
	UserID string
}
