package entities

// NotAvailable is substituted for any list sub-field the model left out
const NotAvailable = "N/A"

// Template placeholder names. Renaming one silently blanks that section in
// every existing template, so these are part of the template contract.
const (
	KeyDate        = "FECHA"
	KeyCity        = "CIUDAD"
	KeySite        = "SEDE"
	KeyObjective   = "OBJETIVO_DE_LA_REUNION"
	KeyNarrative   = "DESARROLLO_REUNION"
	KeyAttendees   = "ASISTENTES_REUNION"
	KeyTopics      = "TEMAS_TRATADOS"
	KeyCommitments = "COMPROMISOS_R"
	KeyAuthorName  = "ELABORADO_POR"
	KeyAuthorRole  = "CARGO_ELABORADO_POR"

	KeyAttendeeName       = "nombreasistentereu"
	KeyAttendeeRole       = "cargoasistentereunion"
	KeyTopic              = "tema"
	KeyTopicDiscussion    = "desarrollo"
	KeyCommitment         = "compromiso"
	KeyCommitmentOwner    = "responsable"
	KeyCommitmentDeadline = "fechaejecucion"
)

// Attendee is one person present at the meeting
type Attendee struct {
	Name string `json:"nombreasistentereu"`
	Role string `json:"cargoasistentereunion"`
}

// Topic is one agenda item and what was said about it
type Topic struct {
	Topic      string `json:"tema"`
	Discussion string `json:"desarrollo"`
}

// Commitment is an agreed action with its owner and deadline
type Commitment struct {
	Commitment string `json:"compromiso"`
	Owner      string `json:"responsable"`
	DueDate    string `json:"fechaejecucion"`
}

// ExtractionRequest is the input of one acta generation.
// Author fields never reach the model.
type ExtractionRequest struct {
	Transcript string
	AuthorName string
	AuthorRole string
}

// MeetingRecord is the normalized acta content handed to the template renderer.
// List fields are never nil and every element has all of its sub-fields set.
type MeetingRecord struct {
	Date        string       `json:"FECHA"`
	City        string       `json:"CIUDAD"`
	Site        string       `json:"SEDE"`
	Objective   string       `json:"OBJETIVO_DE_LA_REUNION"`
	Narrative   string       `json:"DESARROLLO_REUNION"`
	Attendees   []Attendee   `json:"ASISTENTES_REUNION"`
	Topics      []Topic      `json:"TEMAS_TRATADOS"`
	Commitments []Commitment `json:"COMPROMISOS_R"`
	AuthorName  string       `json:"ELABORADO_POR"`
	AuthorRole  string       `json:"CARGO_ELABORADO_POR"`
}

// NewMeetingRecord returns an empty, fully shaped record
func NewMeetingRecord() *MeetingRecord {
	return &MeetingRecord{
		Attendees:   make([]Attendee, 0),
		Topics:      make([]Topic, 0),
		Commitments: make([]Commitment, 0),
	}
}

// TemplateContext flattens the record into the placeholder mapping templates are written against
func (r *MeetingRecord) TemplateContext() map[string]interface{} {
	attendees := make([]map[string]interface{}, 0, len(r.Attendees))
	for _, a := range r.Attendees {
		attendees = append(attendees, map[string]interface{}{
			KeyAttendeeName: a.Name,
			KeyAttendeeRole: a.Role,
		})
	}

	topics := make([]map[string]interface{}, 0, len(r.Topics))
	for _, t := range r.Topics {
		topics = append(topics, map[string]interface{}{
			KeyTopic:           t.Topic,
			KeyTopicDiscussion: t.Discussion,
		})
	}

	commitments := make([]map[string]interface{}, 0, len(r.Commitments))
	for _, c := range r.Commitments {
		commitments = append(commitments, map[string]interface{}{
			KeyCommitment:         c.Commitment,
			KeyCommitmentOwner:    c.Owner,
			KeyCommitmentDeadline: c.DueDate,
		})
	}

	return map[string]interface{}{
		KeyDate:        r.Date,
		KeyCity:        r.City,
		KeySite:        r.Site,
		KeyObjective:   r.Objective,
		KeyNarrative:   r.Narrative,
		KeyAttendees:   attendees,
		KeyTopics:      topics,
		KeyCommitments: commitments,
		KeyAuthorName:  r.AuthorName,
		KeyAuthorRole:  r.AuthorRole,
	}
}

// Document is a rendered acta ready for download
type Document struct {
	RunID       string
	FileName    string
	ContentType string
	Data        []byte
	Record      *MeetingRecord
}

// DocxContentType is the MIME type of Word documents
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
