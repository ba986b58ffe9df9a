package summarize

import "encoding/json"

// Topic is one subject discussed in the meeting.
type Topic struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// Decision is one decision made during the meeting.
type Decision struct {
	Description string  `json:"description"`
	Responsible *string `json:"responsible"`
}

// ActionItem is one task that came out of the meeting.
type ActionItem struct {
	Task     string  `json:"task"`
	Assignee *string `json:"assignee"`
	Deadline *string `json:"deadline"`
	Priority *string `json:"priority"`
}

// EncodeJSON serializes a structured list for storage in a text column. A nil
// slice is stored as an empty array: a completed report must read back with
// all summary fields present, even when one of them has no entries.
func EncodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return "[]", nil
	}
	return string(b), nil
}

// DecodeTopics parses a stored topics column. A parse failure or empty
// column degrades to nil rather than an error: a corrupt field reads as
// absent, never as a failed report read.
func DecodeTopics(s string) []Topic {
	if s == "" {
		return nil
	}
	var topics []Topic
	if err := json.Unmarshal([]byte(s), &topics); err != nil {
		return nil
	}
	return topics
}

// DecodeDecisions parses a stored decisions column.
func DecodeDecisions(s string) []Decision {
	if s == "" {
		return nil
	}
	var decisions []Decision
	if err := json.Unmarshal([]byte(s), &decisions); err != nil {
		return nil
	}
	return decisions
}

// DecodeActionItems parses a stored action_items column.
func DecodeActionItems(s string) []ActionItem {
	if s == "" {
		return nil
	}
	var items []ActionItem
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil
	}
	return items
}
