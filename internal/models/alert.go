package models

// WatchRow is one watchlist symbol evaluated in an alert cycle.
type WatchRow struct {
	Symbol    string   `json:"symbol"`
	ChangePct float64  `json:"change_pct"`
	LastPrice *float64 `json:"last_price"`
	Triggered bool     `json:"triggered"`
}

// WatchResult is the outcome of one watchlist evaluation cycle.
type WatchResult struct {
	Day          string     `json:"day"` // 2006-01-02 in exchange time
	Rows         []WatchRow `json:"rows"`
	AnyTriggered bool       `json:"any_triggered"`
	ShouldSend   bool       `json:"should_send"`
}
