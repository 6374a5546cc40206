package core

import (
	"fmt"
	"strings"

	"sunbeaminfo.com/smart-assistant/internal/session"
)

// FallbackAnswer is the sentence the model must emit verbatim whenever
// the answer cannot be derived from the retrieved context. It is part
// of the grounding contract and must not be reworded.
const FallbackAnswer = "The requested information is not available in the provided documents."

// emptyContextMarker replaces the context block when retrieval found
// nothing, so the model falls through to the fallback sentence.
const emptyContextMarker = "(no matching documents)"

// BuildPrompt assembles the grounding-only instruction for one
// question. Pure function: identical inputs produce an identical
// prompt. History should already be bounded to the recent window.
func BuildPrompt(context string, history []session.Turn, question string, language session.Language) string {
	var b strings.Builder

	b.WriteString("You are an academic counselor assistant for Sunbeam Institute.\n")
	b.WriteString("\n")
	b.WriteString("RULES:\n")
	b.WriteString("- Answer ONLY using the CONTEXT below.\n")
	b.WriteString("- Do not use outside knowledge.\n")
	fmt.Fprintf(&b, "- Answer strictly in %s.\n", language)
	b.WriteString("- If the answer is not in the context, reply exactly:\n")
	fmt.Fprintf(&b, "  %q\n", FallbackAnswer)
	b.WriteString("\n")

	b.WriteString("Context:\n")
	if strings.TrimSpace(context) == "" {
		b.WriteString(emptyContextMarker)
	} else {
		b.WriteString(context)
	}
	b.WriteString("\n\n")

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			switch turn.Role {
			case session.RoleUser:
				fmt.Fprintf(&b, "User: %s\n", turn.Content)
			case session.RoleAssistant:
				fmt.Fprintf(&b, "Assistant: %s\n", turn.Content)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("Question:\n")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")

	return b.String()
}
