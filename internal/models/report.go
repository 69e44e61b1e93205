package models

import "time"

// Report is one analyzed upload with the payload exactly as the analyzer
// returned it.
type Report struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	Payload   []byte    `json:"-"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportSummary is a Report without its payload, for history listings.
type ReportSummary struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type ReportFilter struct {
	Filename string
	Limit    int
	Offset   int
	OrderDir string
}
