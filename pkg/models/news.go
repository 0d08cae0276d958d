package models

import "time"

// NewsItem represents a single headline pulled from a provider news feed.
type NewsItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// FilingDocument is the extracted text of a single filing document.
type FilingDocument struct {
	Filing    Filing `json:"filing"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"` // text hit the extraction length cap
}

// Filing represents a single SEC filing reference for a company.
type Filing struct {
	Symbol      string    `json:"symbol,omitempty"`
	CIK         string    `json:"cik"`
	FormType    string    `json:"form_type"` // "10-K", "10-Q", "8-K", ...
	FiledAt     time.Time `json:"filed_at"`
	AccessionNo string    `json:"accession_no"`
	PrimaryDoc  string    `json:"primary_doc,omitempty"`
	URL         string    `json:"url,omitempty"`
}
