package acta

// ExtractRequest represents the payload for extracting a meeting record
type ExtractRequest struct {
	Transcript string `json:"transcript" form:"transcript" validate:"notblank"`
	AuthorName string `json:"author_name" form:"author_name" validate:"max=200"`
	AuthorRole string `json:"author_role" form:"author_role" validate:"max=200"`
}

// GenerateRequest represents the payload for generating an acta document
type GenerateRequest struct {
	Transcript string `json:"transcript" form:"transcript" validate:"notblank"`
	AuthorName string `json:"author_name" form:"author_name" validate:"max=200"`
	AuthorRole string `json:"author_role" form:"author_role" validate:"max=200"`
	Template   string `json:"template,omitempty" form:"template" validate:"omitempty,max=255"`
}

// ListRunsRequest represents query parameters for listing generation runs
type ListRunsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}
