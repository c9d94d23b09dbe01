package acta

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/johnquangdev/acta-generator/internal/domain/entities"
)

const snippetLen = 200

// Parser turns raw model replies into fully shaped meeting records
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// Normalize extracts the JSON object from the model reply and fills every gap
// with defaults. Only a missing or unparseable object is an error.
// Author fields always come from the request.
func (p *Parser) Normalize(raw string, req entities.ExtractionRequest) (*entities.MeetingRecord, error) {
	span, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(span)
	if err != nil {
		return nil, &entities.ExtractionError{Reason: "model reply is not valid JSON", Snippet: snippet(span), Err: err}
	}

	record := entities.NewMeetingRecord()
	record.Date = scalar(obj, entities.KeyDate)
	record.City = scalar(obj, entities.KeyCity)
	record.Site = scalar(obj, entities.KeySite)
	record.Objective = scalar(obj, entities.KeyObjective)
	record.Narrative = scalar(obj, entities.KeyNarrative)

	for _, el := range list(obj, entities.KeyAttendees) {
		f, ok := fields(el, entities.KeyAttendeeName, entities.KeyAttendeeRole)
		if !ok {
			continue
		}
		record.Attendees = append(record.Attendees, entities.Attendee{Name: f[0], Role: f[1]})
	}

	for _, el := range list(obj, entities.KeyTopics) {
		f, ok := fields(el, entities.KeyTopic, entities.KeyTopicDiscussion)
		if !ok {
			continue
		}
		record.Topics = append(record.Topics, entities.Topic{Topic: f[0], Discussion: f[1]})
	}

	for _, el := range list(obj, entities.KeyCommitments) {
		f, ok := fields(el, entities.KeyCommitment, entities.KeyCommitmentOwner, entities.KeyCommitmentDeadline)
		if !ok {
			continue
		}
		record.Commitments = append(record.Commitments, entities.Commitment{Commitment: f[0], Owner: f[1], DueDate: f[2]})
	}

	record.AuthorName = req.AuthorName
	record.AuthorRole = req.AuthorRole

	return record, nil
}

// extractJSON strips markdown fences and returns the span from the first '{' to the last '}'
func extractJSON(content string) (string, error) {
	content = stripFences(content)

	start := strings.Index(content, "{")
	if start == -1 {
		return "", &entities.ExtractionError{Reason: "no JSON object in model reply", Snippet: snippet(content)}
	}
	end := strings.LastIndex(content, "}")
	if end < start {
		return "", &entities.ExtractionError{Reason: "JSON object in model reply is not closed", Snippet: snippet(content)}
	}
	return content[start : end+1], nil
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	}
	content = strings.TrimSpace(content)
	content = strings.TrimSuffix(content, "```")

	return strings.TrimSpace(content)
}

// decodeObject parses exactly one JSON object, keeping numbers as written
func decodeObject(span string) (map[string]interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(span))
	dec.UseNumber()

	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}
	if obj == nil {
		return nil, fmt.Errorf("JSON value is not an object")
	}
	return obj, nil
}

// lookup matches the key exactly first, then ignoring case.
// A null under one spelling never hides a value under another.
func lookup(obj map[string]interface{}, key string) (interface{}, bool) {
	exact, found := obj[key]
	if found && exact != nil {
		return exact, true
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k != key && obj[k] != nil && strings.EqualFold(strings.TrimSpace(k), key) {
			return obj[k], true
		}
	}
	if found {
		return nil, true
	}
	for _, k := range keys {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return nil, true
		}
	}
	return nil, false
}

func scalar(obj map[string]interface{}, key string) string {
	v, ok := lookup(obj, key)
	if !ok || v == nil {
		return ""
	}
	return stringify(v)
}

func list(obj map[string]interface{}, key string) []interface{} {
	v, ok := lookup(obj, key)
	if !ok {
		return nil
	}
	items, _ := v.([]interface{})
	return items
}

// fields reads the named sub-fields of one list element. Absent, null and
// blank sub-fields become NotAvailable. A bare string fills the first
// sub-field; other non-object elements are rejected.
func fields(el interface{}, names ...string) ([]string, bool) {
	out := make([]string, len(names))
	for i := range out {
		out[i] = entities.NotAvailable
	}

	switch v := el.(type) {
	case map[string]interface{}:
		for i, name := range names {
			if fv, ok := lookup(v, name); ok && fv != nil {
				out[i] = orNotAvailable(stringify(fv))
			}
		}
		return out, true
	case string:
		out[0] = orNotAvailable(v)
		return out, true
	default:
		return nil, false
	}
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return entities.NotAvailable
	}
	return s
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, "\n")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) <= snippetLen {
		return s
	}
	return string(r[:snippetLen]) + "..."
}
