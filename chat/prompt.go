package chat

import (
	"strings"
)

// SummaryInputLimit caps how much of a document is sent for summarizing.
const SummaryInputLimit = 4000

const structuredInstruction = `Respond with a single JSON object and nothing else, in the form {"reply": "<what you say>", "expression": "<one word describing your facial expression, e.g. happy, sad, surprised, thinking, neutral>"}.`

const summaryInstruction = "Summarize the following document for your friend in natural spoken language. Use complete paragraphs with no lists, asterisks or numbering, and let your tone carry some warmth and emphasis so it sounds like a real person talking:"

// buildPrompt assembles the single user message sent to the model.
func buildPrompt(persona string, memories []string, context, message string, structured bool) string {
	var b strings.Builder

	b.WriteString(persona)
	if structured {
		b.WriteString("\n")
		b.WriteString(structuredInstruction)
	}
	b.WriteString("\n\n")

	if len(memories) > 0 {
		b.WriteString("Things you said recently:\n")
		for _, m := range memories {
			b.WriteString("- ")
			b.WriteString(m)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if context != "" {
		b.WriteString(context)
		b.WriteString("\n")
	}

	b.WriteString("user: ")
	b.WriteString(message)
	b.WriteString("\nassistant:")

	return b.String()
}

func buildSummaryPrompt(persona, text string) string {
	return persona + "\n" + summaryInstruction + "\n" + truncateRunes(text, SummaryInputLimit)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
