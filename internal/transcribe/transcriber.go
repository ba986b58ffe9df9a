// Package transcribe adapts the external speech-to-text engine into the
// normalized result the report pipeline stores.
package transcribe

import (
	"context"
	"fmt"

	"github.com/kalambet/minute/internal/openai"
)

// Error wraps whatever the underlying engine reported (rate limit, malformed
// audio, network failure). The adapter does not interpret or classify the
// failure, only wraps it.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Segment is one timed slice of the transcript. Speaker is always nil:
// the engine has no diarization support. This is a documented capability
// gap, not a bug.
type Segment struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker *string `json:"speaker"`
}

// Result is the normalized transcription of one audio file.
type Result struct {
	Transcription string
	Language      string
	Duration      float64 // seconds
	Segments      []Segment
}

// AudioClient is the subset of the OpenAI client the adapter needs.
type AudioClient interface {
	Transcribe(ctx context.Context, model, path, language string) (*openai.Transcription, error)
}

// Adapter transcribes audio files via the Whisper API.
type Adapter struct {
	client AudioClient
	model  string
}

// NewAdapter creates an Adapter using the given client and model name.
func NewAdapter(client AudioClient, model string) *Adapter {
	return &Adapter{client: client, model: model}
}

// Transcribe transcribes the audio file at path with an optional language
// hint (empty string autodetects). Any engine failure is returned as *Error.
func (a *Adapter) Transcribe(ctx context.Context, path, language string) (*Result, error) {
	resp, err := a.client.Transcribe(ctx, a.model, path, language)
	if err != nil {
		return nil, &Error{Err: err}
	}

	segments := make([]Segment, len(resp.Segments))
	for i, s := range resp.Segments {
		segments[i] = Segment{Text: s.Text, Start: s.Start, End: s.End}
	}

	detected := resp.Language
	if detected == "" {
		detected = language
	}

	return &Result{
		Transcription: resp.Text,
		Language:      detected,
		Duration:      resp.Duration,
		Segments:      segments,
	}, nil
}
