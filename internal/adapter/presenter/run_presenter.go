package presenter

import (
	"encoding/json"

	"github.com/johnquangdev/acta-generator/internal/adapter/dto/acta"
	"github.com/johnquangdev/acta-generator/internal/domain/entities"
)

// ToRunResponse converts a GenerationJob entity to RunResponse DTO
func ToRunResponse(j *entities.GenerationJob) *acta.RunResponse {
	if j == nil {
		return nil
	}

	// Parse metadata from JSON
	var metadata map[string]interface{}
	if len(j.Metadata) > 0 {
		_ = json.Unmarshal(j.Metadata, &metadata)
	}

	response := &acta.RunResponse{
		ID:              j.ID.String(),
		TemplateName:    j.TemplateName,
		Provider:        j.Provider,
		Model:           j.Model,
		Status:          string(j.Status),
		AuthorName:      j.AuthorName,
		TranscriptChars: j.TranscriptChars,
		AttendeeCount:   j.AttendeeCount,
		TopicCount:      j.TopicCount,
		CommitmentCount: j.CommitmentCount,
		DurationMs:      j.DurationMs,
		ErrorKind:       j.ErrorKind,
		LastError:       j.LastError,
		Archived:        j.ObjectKey != nil,
		Metadata:        metadata,
		CompletedAt:     j.CompletedAt,
		CreatedAt:       j.CreatedAt,
	}

	if op, ok := metadata["operation"].(string); ok {
		response.Operation = op
	}

	return response
}

// ToRunResponses converts a list of jobs
func ToRunResponses(jobs []*entities.GenerationJob) []*acta.RunResponse {
	out := make([]*acta.RunResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, ToRunResponse(j))
	}
	return out
}
