package summarize

import (
	"fmt"

	"github.com/kalambet/minute/internal/openai"
)

const systemPrompt = "You are an expert meeting analyst. Your task is to analyze meeting transcriptions and extract key information in a structured format."

const promptTemplate = `Analyze the following meeting transcription and provide a structured summary in JSON format.

Transcription:
%s

Please provide your analysis in the following JSON structure:
{
    "summary": "A concise paragraph summarizing the main points of the meeting",
    "topics": [
        {
            "title": "Topic name",
            "description": "Brief description of what was discussed"
        }
    ],
    "decisions": [
        {
            "description": "What was decided",
            "responsible": "Who is responsible (if mentioned)"
        }
    ],
    "action_items": [
        {
            "task": "What needs to be done",
            "assignee": "Who should do it (if mentioned)",
            "deadline": "When it should be done (if mentioned)",
            "priority": "high/medium/low (if mentioned)"
        }
    ]
}

Instructions:
- Be concise but comprehensive
- Extract all important decisions and action items
- If information is not mentioned in the transcription, use null for that field
- Focus on actionable information
- Identify key topics discussed
`

// BuildPrompt constructs the chat messages for structured summary extraction.
func BuildPrompt(transcription string) []openai.Message {
	return []openai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(promptTemplate, transcription)},
	}
}
