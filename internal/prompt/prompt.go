package prompt

// Package prompt assembles the context strings sent to the generation
// endpoint. Only string concatenation and truncation happen here.

import (
	"strings"

	"docassist/internal/model"
)

const documentLabel = "Document contents:"

// Builder assembles generation contexts from a fixed system prompt.
type Builder struct {
	SystemPrompt string
	// MaxTextChars caps the document text embedded in a context.
	// Zero means no cap.
	MaxTextChars int
}

// Document wraps extracted document text with the fixed label prefix.
func (b *Builder) Document(filename, text string) string {
	text = b.truncate(text)

	var sb strings.Builder
	if b.SystemPrompt != "" {
		sb.WriteString(b.SystemPrompt)
		sb.WriteString("\n\n")
	}
	sb.WriteString("A user uploaded the document '" + filename + "' for analysis.\n\n")
	sb.WriteString(documentLabel + "\n")
	sb.WriteString(text)
	sb.WriteString("\n\nAnalyze this document and reply with a brief summary and recommendations.")
	return sb.String()
}

// Image builds the text part accompanying an inline image, folding in the
// user's caption when present.
func (b *Builder) Image(caption string) string {
	var sb strings.Builder
	if b.SystemPrompt != "" {
		sb.WriteString(b.SystemPrompt)
		sb.WriteString("\n\n")
	}
	sb.WriteString("A user sent an image for analysis.\n\n")
	if caption != "" {
		sb.WriteString("User's description: " + caption + "\n\n")
		sb.WriteString("Analyze this image taking the description into account and describe what you see.")
	} else {
		sb.WriteString("Analyze this image and describe what you see.")
	}
	return sb.String()
}

// Chat builds a conversation context from the memory summary, prior
// history turns, and the current message.
func (b *Builder) Chat(memoryContext string, history []model.ChatTurn, message string) string {
	var sb strings.Builder
	if b.SystemPrompt != "" {
		sb.WriteString(b.SystemPrompt)
		sb.WriteString("\n\n")
	}
	if memoryContext != "" {
		sb.WriteString("USER MEMORY:\n")
		sb.WriteString(memoryContext)
		sb.WriteString("\n\n")
	}
	for _, turn := range history {
		switch turn.Role {
		case "assistant":
			sb.WriteString("Assistant: " + turn.Content + "\n")
		default:
			sb.WriteString("User: " + turn.Content + "\n")
		}
	}
	sb.WriteString("User: " + message + "\n")
	sb.WriteString("Assistant:")
	return sb.String()
}

func (b *Builder) truncate(text string) string {
	if b.MaxTextChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= b.MaxTextChars {
		return text
	}
	return string(runes[:b.MaxTextChars]) + "..."
}
