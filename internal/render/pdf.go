package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	titleFontSize   = 24
	sectionFontSize = 16
	bodyFontSize    = 11
	lineHeight      = 6
)

// PDF renders the document as PDF bytes, with the same section order as the
// Markdown form. The full transcription starts on a fresh page.
func PDF(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Core fonts are cp1252; translate UTF-8 input so accented text survives.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", titleFontSize)
	pdf.MultiCell(0, 10, tr(doc.Title), "", "C", false)
	pdf.Ln(4)

	if meta := doc.metadataLines(); len(meta) > 0 {
		pdf.SetFont("Helvetica", "", bodyFontSize)
		for _, line := range meta {
			pdf.MultiCell(0, lineHeight, tr(fmt.Sprintf("%s: %s", line[0], line[1])), "", "L", false)
		}
		pdf.Ln(4)
	}

	if doc.Summary != "" {
		sectionHeader(pdf, headingSummary)
		bodyText(pdf, tr(doc.Summary))
	}

	if len(doc.Topics) > 0 {
		sectionHeader(pdf, headingTopics)
		for i, topic := range doc.Topics {
			pdf.SetFont("Helvetica", "B", bodyFontSize)
			pdf.MultiCell(0, lineHeight, tr(fmt.Sprintf("%d. %s", i+1, topic.Title)), "", "L", false)
			if topic.Description != nil && *topic.Description != "" {
				bodyText(pdf, tr(*topic.Description))
			}
			pdf.Ln(2)
		}
	}

	if len(doc.Decisions) > 0 {
		sectionHeader(pdf, headingDecisions)
		for i, decision := range doc.Decisions {
			line := fmt.Sprintf("%d. %s%s", i+1, decision.Description, decisionSuffix(decision))
			bodyText(pdf, tr(line))
		}
	}

	if len(doc.ActionItems) > 0 {
		sectionHeader(pdf, headingActionItems)
		for i, item := range doc.ActionItems {
			line := fmt.Sprintf("%d. %s", i+1, item.Task)
			if details := actionItemDetails(item); len(details) > 0 {
				line += fmt.Sprintf(" (%s)", strings.Join(details, ", "))
			}
			bodyText(pdf, tr(line))
		}
	}

	if doc.Transcription != "" {
		pdf.AddPage()
		sectionHeader(pdf, headingTranscript)
		bodyText(pdf, tr(doc.Transcription))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func sectionHeader(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", sectionFontSize)
	pdf.MultiCell(0, 8, title, "", "L", false)
	pdf.Ln(1)
}

func bodyText(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", bodyFontSize)
	pdf.MultiCell(0, lineHeight, text, "", "L", false)
	pdf.Ln(1)
}
