// Package summarize adapts the external language model into the structured
// summary the report pipeline stores: summary text plus ordered topics,
// decisions and action items.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kalambet/minute/internal/openai"
)

// Error wraps a transport failure or fully malformed (non-JSON) model output.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("summary generation failed: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is the validated structured summary of one transcription.
type Result struct {
	Summary     string
	Topics      []Topic
	Decisions   []Decision
	ActionItems []ActionItem

	// Dropped counts entries removed per field because they were missing
	// their required key. JSON-mode output is not schema-guaranteed, so
	// malformed entries are filtered instead of failing the whole call.
	Dropped DroppedCounts
}

// DroppedCounts records how many malformed entries each field lost.
type DroppedCounts struct {
	Topics      int
	Decisions   int
	ActionItems int
}

// Total returns the number of dropped entries across all fields.
func (d DroppedCounts) Total() int {
	return d.Topics + d.Decisions + d.ActionItems
}

// Chatter is the subset of the OpenAI client the generator needs.
type Chatter interface {
	ChatJSON(ctx context.Context, model string, messages []openai.Message) (string, error)
}

// Generator produces structured meeting summaries via chat completions.
type Generator struct {
	client Chatter
	model  string
}

// NewGenerator creates a Generator using the given client and model name.
func NewGenerator(client Chatter, model string) *Generator {
	return &Generator{client: client, model: model}
}

// rawResult mirrors the model output loosely: every field is re-validated
// entry by entry before it becomes part of the Result.
type rawResult struct {
	Summary     string            `json:"summary"`
	Topics      []json.RawMessage `json:"topics"`
	Decisions   []json.RawMessage `json:"decisions"`
	ActionItems []json.RawMessage `json:"action_items"`
}

// Summarize generates a structured summary of the transcription. Transport
// failures and non-JSON output are returned as *Error; individually
// malformed entries are dropped and counted instead.
func (g *Generator) Summarize(ctx context.Context, transcription string) (*Result, error) {
	raw, err := g.client.ChatJSON(ctx, g.model, BuildPrompt(transcription))
	if err != nil {
		return nil, &Error{Err: err}
	}

	var parsed rawResult
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &Error{Err: fmt.Errorf("model returned malformed JSON: %w", err)}
	}

	result := &Result{Summary: parsed.Summary}
	result.Topics, result.Dropped.Topics = parseTopics(parsed.Topics)
	result.Decisions, result.Dropped.Decisions = parseDecisions(parsed.Decisions)
	result.ActionItems, result.Dropped.ActionItems = parseActionItems(parsed.ActionItems)
	return result, nil
}

// parseTopics keeps entries that carry a title and counts the rest. The kept
// slice is never nil, so an entry-free summary still stores an empty array.
func parseTopics(raw []json.RawMessage) ([]Topic, int) {
	kept := []Topic{}
	dropped := 0
	for _, entry := range raw {
		var t Topic
		if err := json.Unmarshal(entry, &t); err != nil || t.Title == "" {
			dropped++
			continue
		}
		kept = append(kept, t)
	}
	return kept, dropped
}

// parseDecisions keeps entries that carry a description and counts the rest.
func parseDecisions(raw []json.RawMessage) ([]Decision, int) {
	kept := []Decision{}
	dropped := 0
	for _, entry := range raw {
		var d Decision
		if err := json.Unmarshal(entry, &d); err != nil || d.Description == "" {
			dropped++
			continue
		}
		kept = append(kept, d)
	}
	return kept, dropped
}

// parseActionItems keeps entries that carry a task and counts the rest.
func parseActionItems(raw []json.RawMessage) ([]ActionItem, int) {
	kept := []ActionItem{}
	dropped := 0
	for _, entry := range raw {
		var a ActionItem
		if err := json.Unmarshal(entry, &a); err != nil || a.Task == "" {
			dropped++
			continue
		}
		kept = append(kept, a)
	}
	return kept, dropped
}
