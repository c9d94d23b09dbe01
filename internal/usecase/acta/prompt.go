package acta

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/acta-generator/internal/domain/entities"
)

// PromptBuilder renders the fixed extraction instructions around a transcript
type PromptBuilder struct {
	header string
}

// NewPromptBuilder creates a builder for the given organization name
func NewPromptBuilder(organization string) *PromptBuilder {
	subject := "Analiza esta transcripción de reunión"
	if org := strings.TrimSpace(organization); org != "" {
		subject += " de la " + org
	}

	header := fmt.Sprintf(`%s y extrae:
%s, %s, %s, %s,
%s (resumen narrativo del desarrollo de la reunión),
%s (lista con %s y %s),
%s (lista con %s y %s),
%s (lista con %s, %s y %s).
Conserva el orden en que aparecen en el texto.
Devuelve SOLO un objeto JSON válido con esas claves, sin texto adicional.
TEXTO: `,
		subject,
		entities.KeyDate, entities.KeyCity, entities.KeySite, entities.KeyObjective,
		entities.KeyNarrative,
		entities.KeyAttendees, entities.KeyAttendeeName, entities.KeyAttendeeRole,
		entities.KeyTopics, entities.KeyTopic, entities.KeyTopicDiscussion,
		entities.KeyCommitments, entities.KeyCommitment, entities.KeyCommitmentOwner, entities.KeyCommitmentDeadline,
	)

	return &PromptBuilder{header: header}
}

// BuildPrompt embeds the transcript verbatim after the instructions.
// The transcript is not escaped.
func (b *PromptBuilder) BuildPrompt(transcript string) string {
	return b.header + transcript
}
