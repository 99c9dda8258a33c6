package summary

import "haberozet/internal/domain/entity"

// Request is the body of POST /summaries. Either Text or URL must be set;
// URL wins when both are present.
type Request struct {
	Text      string `json:"text"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Sentences int    `json:"sentences"`
	Method    string `json:"method"`
}

// Response is the summary result plus the article it came from.
type Response struct {
	entity.SummaryResult
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}
