package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kalambet/minute/internal/summarize"
)

func strPtr(s string) *string { return &s }

func fullDocument() Document {
	return Document{
		Title:    "Meeting Report - meeting.mp3",
		Date:     "2026-08-29 10:00",
		Duration: 125,
		Language: "en",
		Summary:  "We planned the release.",
		Topics: []summarize.Topic{
			{Title: "Release", Description: strPtr("Scope and date")},
			{Title: "Hiring"},
		},
		Decisions: []summarize.Decision{
			{Description: "Ship Friday", Responsible: strPtr("alice")},
			{Description: "Freeze main Thursday"},
		},
		ActionItems: []summarize.ActionItem{
			{Task: "Write changelog", Assignee: strPtr("bob"), Deadline: strPtr("Thursday"), Priority: strPtr("high")},
			{Task: "Tag the build"},
		},
		Transcription: "alice: let's ship friday. bob: ok.",
	}
}

func TestMarkdownSectionOrder(t *testing.T) {
	md := Markdown(fullDocument())

	wantInOrder := []string{
		"# Meeting Report - meeting.mp3",
		"**Date:** 2026-08-29 10:00",
		"**Duration:** 2m 05s",
		"**Language:** en",
		"## Executive Summary",
		"## Topics Discussed",
		"## Decisions Made",
		"## Action Items",
		"## Full Transcription",
	}
	last := -1
	for _, want := range wantInOrder {
		idx := strings.Index(md, want)
		if idx == -1 {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
		if idx < last {
			t.Errorf("%q out of order", want)
		}
		last = idx
	}
}

func TestMarkdownContent(t *testing.T) {
	md := Markdown(fullDocument())

	for _, want := range []string{
		"1. **Release**",
		"Scope and date",
		"2. **Hiring**",
		"1. Ship Friday *(Responsible: alice)*",
		"2. Freeze main Thursday",
		"1. Write changelog *(Assignee: bob, Deadline: Thursday, Priority: high)*",
		"2. Tag the build",
		"alice: let's ship friday. bob: ok.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

// Export before summarization degrades gracefully: only the metadata and
// transcription sections appear.
func TestMarkdownTranscriptOnly(t *testing.T) {
	md := Markdown(Document{
		Title:         "Meeting Report - raw.wav",
		Date:          "2026-08-29 10:00",
		Duration:      30,
		Language:      "en",
		Transcription: "just the transcript",
	})

	for _, absent := range []string{
		"## Executive Summary", "## Topics Discussed", "## Decisions Made", "## Action Items",
	} {
		if strings.Contains(md, absent) {
			t.Errorf("markdown without summary should omit %q", absent)
		}
	}
	if !strings.Contains(md, "## Full Transcription") {
		t.Error("transcription section missing")
	}
}

func TestMarkdownEmptyDocument(t *testing.T) {
	md := Markdown(Document{Title: "Meeting Report - pending.mp3"})

	if !strings.HasPrefix(md, "# Meeting Report - pending.mp3") {
		t.Errorf("markdown = %q", md)
	}
	if strings.Contains(md, "##") {
		t.Errorf("empty document rendered sections:\n%s", md)
	}
}

func TestPDFFullDocument(t *testing.T) {
	data, err := PDF(fullDocument())
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not start with PDF header")
	}
	if len(data) < 1000 {
		t.Errorf("suspiciously small PDF: %d bytes", len(data))
	}
}

func TestPDFEmptyDocument(t *testing.T) {
	data, err := PDF(Document{Title: "Meeting Report - pending.mp3"})
	if err != nil {
		t.Fatalf("PDF on empty document: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output does not start with PDF header")
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0.4, "0s"},
		{59, "59s"},
		{60, "1m 00s"},
		{125, "2m 05s"},
		{3600, "60m 00s"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.seconds); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
