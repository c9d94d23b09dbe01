package acta

import "time"

// TemplatesResponse lists the available templates
type TemplatesResponse struct {
	Templates []string `json:"templates"`
	Default   string   `json:"default"`
}

// RunResponse represents one generation run of the audit log
type RunResponse struct {
	ID              string                 `json:"id"`
	Operation       string                 `json:"operation,omitempty"`
	TemplateName    string                 `json:"template_name,omitempty"`
	Provider        string                 `json:"provider"`
	Model           string                 `json:"model"`
	Status          string                 `json:"status"`
	AuthorName      string                 `json:"author_name,omitempty"`
	TranscriptChars int                    `json:"transcript_chars"`
	AttendeeCount   int                    `json:"attendee_count"`
	TopicCount      int                    `json:"topic_count"`
	CommitmentCount int                    `json:"commitment_count"`
	DurationMs      int64                  `json:"duration_ms"`
	ErrorKind       *string                `json:"error_kind,omitempty"`
	LastError       *string                `json:"last_error,omitempty"`
	Archived        bool                   `json:"archived"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// ListRunsResponse wraps a page of runs
type ListRunsResponse struct {
	Runs  []*RunResponse `json:"runs"`
	Count int            `json:"count"`
}

// DownloadResponse carries a temporary link to an archived acta
type DownloadResponse struct {
	URL string `json:"url"`
}
