package models

import "time"

// NewsItem is a single headline returned by a news provider.
type NewsItem struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Publisher string    `json:"publisher"`
	Published time.Time `json:"published"`
	Summary   string    `json:"summary"`
	Source    string    `json:"source"`

	TitleTranslated   string `json:"title_translated,omitempty"`
	SummaryTranslated string `json:"summary_translated,omitempty"`
	TitleOK           bool   `json:"title_ok"`
	SummaryOK         bool   `json:"summary_ok"`
}

// DisplayTitle prefers the translated title.
func (n NewsItem) DisplayTitle() string {
	if n.TitleTranslated != "" {
		return n.TitleTranslated
	}
	return n.Title
}

func (n NewsItem) DisplaySummary() string {
	if n.SummaryTranslated != "" {
		return n.SummaryTranslated
	}
	return n.Summary
}
