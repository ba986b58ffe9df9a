// Package render turns a report's structured fields into export artifacts.
// Rendering is a pure derivation: any absent field silently omits its
// section, and no section errors for being empty.
package render

import (
	"fmt"

	"github.com/kalambet/minute/internal/summarize"
)

// Document carries everything a rendered report can contain. Zero-valued
// fields are omitted from the output.
type Document struct {
	Title         string
	Date          string
	Duration      float64 // seconds; 0 omits the line
	Language      string
	Summary       string
	Topics        []summarize.Topic
	Decisions     []summarize.Decision
	ActionItems   []summarize.ActionItem
	Transcription string
}

// Section headings, fixed across both output formats.
const (
	headingSummary     = "Executive Summary"
	headingTopics      = "Topics Discussed"
	headingDecisions   = "Decisions Made"
	headingActionItems = "Action Items"
	headingTranscript  = "Full Transcription"
)

// metadataLines returns the label/value pairs of the metadata block, in order.
func (d Document) metadataLines() [][2]string {
	var lines [][2]string
	if d.Date != "" {
		lines = append(lines, [2]string{"Date", d.Date})
	}
	if d.Duration > 0 {
		lines = append(lines, [2]string{"Duration", formatDuration(d.Duration)})
	}
	if d.Language != "" {
		lines = append(lines, [2]string{"Language", d.Language})
	}
	return lines
}

func formatDuration(seconds float64) string {
	total := int(seconds + 0.5)
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	return fmt.Sprintf("%dm %02ds", total/60, total%60)
}

// decisionSuffix renders the parenthesized attribution of a decision, or "".
func decisionSuffix(d summarize.Decision) string {
	if d.Responsible == nil || *d.Responsible == "" {
		return ""
	}
	return fmt.Sprintf(" (Responsible: %s)", *d.Responsible)
}

// actionItemDetails renders the detail list of an action item, or nil.
func actionItemDetails(a summarize.ActionItem) []string {
	var details []string
	if a.Assignee != nil && *a.Assignee != "" {
		details = append(details, "Assignee: "+*a.Assignee)
	}
	if a.Deadline != nil && *a.Deadline != "" {
		details = append(details, "Deadline: "+*a.Deadline)
	}
	if a.Priority != nil && *a.Priority != "" {
		details = append(details, "Priority: "+*a.Priority)
	}
	return details
}
