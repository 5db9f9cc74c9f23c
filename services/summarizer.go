package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Summarizer condenses external content with Gemini before it is stored, and
// grades video metadata for literature relevance.
type Summarizer struct {
	client *genai.Client
	model  string
}

// NewSummarizer creates a summarizer using the given Gemini model.
func NewSummarizer(client *genai.Client, model string) *Summarizer {
	return &Summarizer{client: client, model: model}
}

// Summarize extracts and condenses the information in context relevant to
// query into a single paragraph. An empty query summarizes the whole text.
func (s *Summarizer) Summarize(ctx context.Context, context_, query string) (string, error) {
	var prompt string
	if query != "" {
		prompt = fmt.Sprintf(`Given the following context and query, extract and summarize all relevant information.
Return a single string with the extracted information.
Don't include the context or query in the response.
Don't return lists or bullet points, just a single string.

## Context:
%s
## Query:
%s`, context_, query)
	} else {
		prompt = fmt.Sprintf(`Write a concise summary of the following context in a few sentences.
Return a single string with the summary.
Don't include the context in the response.
Don't return lists or bullet points, just a single string.

## Context:
%s`, context_)
	}

	return s.generate(ctx, prompt)
}

// GradeVideoRelevance returns true if the video title/description relate to
// literature. Used before transcript processing to keep off-topic videos out
// of the cache.
func (s *Summarizer) GradeVideoRelevance(ctx context.Context, title, description string) (bool, error) {
	prompt := fmt.Sprintf(`You grade video metadata for a literature assistant.
Answer with a single word, YES or NO: is this video about literature, books, authors or book reviews?

## Title:
%s
## Description:
%s`, title, description)

	answer, err := s.generate(ctx, prompt)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(answer)), "YES"), nil
}

func (s *Summarizer) generate(ctx context.Context, prompt string) (string, error) {
	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	var responseText strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p.Text != "" {
			responseText.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(responseText.String()), nil
}
