package hermes

import "time"

type Weights struct {
	D int `json:"d"`
	P int `json:"p"`
	R int `json:"r"`
}

// ID is generated by the ranker and is the only value placed in event
// subjects. RequestID is the caller's correlation id, if any.
type RankCompletedEvent struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id,omitempty"`
	Transport   string    `json:"transport"`
	RecordCount int       `json:"record_count"`
	Weights     Weights   `json:"weights"`
	DurationMs  float64   `json:"duration_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

type RankRejectedEvent struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id,omitempty"`
	Transport string    `json:"transport"`
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}
