package models

// Prediction is a suggested label with its score (0-1)
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// DownloadStats contains statistics from downloading one repository
type DownloadStats struct {
	Repo     string `json:"repo"`
	Kind     string `json:"kind"` // "issue" or "pull"
	Pages    int    `json:"pages"`
	Loaded   int    `json:"loaded"`
	Included int    `json:"included"`
	Total    int    `json:"total"`
	Outcome  string `json:"outcome"`
}

// IndexStats contains statistics from an indexing operation
type IndexStats struct {
	TotalRecords int `json:"total_records"`
	Indexed      int `json:"indexed"`
	Skipped      int `json:"skipped"`
	Errors       int `json:"errors"`
	DurationMs   int `json:"duration_ms"`
}

// LabelResult contains the result of labeling a single issue or PR
type LabelResult struct {
	Number      int          `json:"number"`
	Predictions []Prediction `json:"predictions,omitempty"`
	Applied     string       `json:"applied,omitempty"`
	Removed     string       `json:"removed,omitempty"`
	Skipped     bool         `json:"skipped"`
	SkipReason  string       `json:"skip_reason,omitempty"`
	Error       string       `json:"error,omitempty"`
}
