package render

import (
	"fmt"
	"strings"
)

// Markdown renders the document as Markdown text. Section order is fixed:
// metadata, summary, topics, decisions, action items, transcription.
func Markdown(doc Document) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", doc.Title)

	if meta := doc.metadataLines(); len(meta) > 0 {
		for _, line := range meta {
			fmt.Fprintf(&sb, "**%s:** %s  \n", line[0], line[1])
		}
		sb.WriteString("\n")
	}

	if doc.Summary != "" {
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n", headingSummary, doc.Summary)
	}

	if len(doc.Topics) > 0 {
		fmt.Fprintf(&sb, "## %s\n\n", headingTopics)
		for i, topic := range doc.Topics {
			fmt.Fprintf(&sb, "%d. **%s**\n", i+1, topic.Title)
			if topic.Description != nil && *topic.Description != "" {
				fmt.Fprintf(&sb, "   %s\n", *topic.Description)
			}
			sb.WriteString("\n")
		}
	}

	if len(doc.Decisions) > 0 {
		fmt.Fprintf(&sb, "## %s\n\n", headingDecisions)
		for i, decision := range doc.Decisions {
			fmt.Fprintf(&sb, "%d. %s", i+1, decision.Description)
			if suffix := decisionSuffix(decision); suffix != "" {
				fmt.Fprintf(&sb, " *%s*", strings.TrimSpace(suffix))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(doc.ActionItems) > 0 {
		fmt.Fprintf(&sb, "## %s\n\n", headingActionItems)
		for i, item := range doc.ActionItems {
			fmt.Fprintf(&sb, "%d. %s", i+1, item.Task)
			if details := actionItemDetails(item); len(details) > 0 {
				fmt.Fprintf(&sb, " *(%s)*", strings.Join(details, ", "))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if doc.Transcription != "" {
		fmt.Fprintf(&sb, "## %s\n\n%s\n", headingTranscript, doc.Transcription)
	}

	return sb.String()
}
