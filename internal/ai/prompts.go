package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"apptcal/internal/model"
)

// ErrUnknownClient is returned when the parsed client is not in the roster
var ErrUnknownClient = errors.New("no client matches the request")

// ParsedAppointment is an appointment parsed from natural language
type ParsedAppointment struct {
	Client      string `json:"client"`
	StartTime   string `json:"start_time"` // 2006-01-02T15:04:05
	EndTime     string `json:"end_time"`   // empty when no duration was given
	Description string `json:"description"`
}

// ParseAppointmentResponse decodes the model's JSON answer
func ParseAppointmentResponse(response string) (*ParsedAppointment, error) {
	response = stripMarkdownCodeFences(response)

	var parsed ParsedAppointment
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	return &parsed, nil
}

// stripMarkdownCodeFences removes ```json ... ``` wrappers
func stripMarkdownCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Input resolves the client against the roster and builds the create body
func (p *ParsedAppointment) Input(clients []model.Client) (model.AppointmentInput, error) {
	client, ok := model.MatchClient(p.Client, clients)
	if !ok {
		return model.AppointmentInput{}, fmt.Errorf("%w: %q", ErrUnknownClient, p.Client)
	}

	start, err := model.ParseTimestamp(p.StartTime)
	if err != nil {
		return model.AppointmentInput{}, fmt.Errorf("start_time: %w", err)
	}

	in := model.AppointmentInput{
		ClientID:        model.Ptr(client.ID),
		AppointmentTime: start,
	}
	if p.EndTime != "" {
		end, err := model.ParseTimestamp(p.EndTime)
		if err != nil {
			return model.AppointmentInput{}, fmt.Errorf("end_time: %w", err)
		}
		in.EndTime = model.Ptr(end)
	}
	if d := strings.TrimSpace(p.Description); d != "" {
		in.Description = model.Ptr(d)
	}
	return in, nil
}

// ParseAppointmentPrompt builds a prompt turning input into an appointment for one of clients
func ParseAppointmentPrompt(input string, clients []model.Client, now time.Time) string {
	names := make([]string, 0, len(clients))
	for _, c := range clients {
		names = append(names, "- "+c.Name)
	}

	return fmt.Sprintf(`Parse this natural language into an appointment.

Current date/time: %s (%s)

Known clients:
%s

User input: "%s"

Respond with ONLY a JSON object (no markdown, no explanation):
{
  "client": "client name exactly as listed above",
  "start_time": "2024-12-25T10:00:00",
  "end_time": "2024-12-25T10:30:00",
  "description": "short description, otherwise empty string"
}

Rules:
- start_time and end_time use the format YYYY-MM-DDTHH:MM:SS in local time, without a timezone
- If no duration or end is mentioned, set end_time to an empty string
- client must be one of the known clients
- Use the current date/time to interpret relative dates like "tomorrow", "next Monday"

Respond with ONLY the JSON, no other text.`, model.FormatTimestamp(now), now.Weekday(), strings.Join(names, "\n"), input)
}
