package entity

// Snippet is one ranked chunk of retrieved knowledge-base text.
type Snippet struct {
	Content   string  `json:"content"`
	SourceURL string  `json:"source_url,omitempty"`
	Score     float64 `json:"score"`
}
