package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nefac-ai/nefacrag/llm"
	"go.uber.org/zap"
)

// Citation is one supporting quote inside a structured result.
type Citation struct {
	ID      string `json:"id"`
	Context string `json:"context"`
}

// StructuredResult is one entry of the structured search response.
type StructuredResult struct {
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Summary   string     `json:"summary"`
	Citations []Citation `json:"citations"`
}

type structuredResponse struct {
	Results []StructuredResult `json:"results"`
}

// StructuredSearch runs a single retrieval on the query and asks the
// answer model for a JSON list of unique relevant sources. Malformed model
// output goes through one repair pass; if repair also fails, a single
// synthetic error result is returned rather than an error.
func (r *Router) StructuredSearch(ctx context.Context, query string, filter FilterOptions) ([]StructuredResult, error) {
	retriever := r.retriever
	if !filter.Empty() {
		retriever = retriever.WithFilter(BuildFilter(filter))
	}

	chunks, err := retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	resp, err := r.provider.Completion(ctx, &llm.ChatRequest{
		Model:       r.answerModel,
		Messages:    []llm.Message{llm.NewUserMessage(fmt.Sprintf(structuredSearchPrompt, FormatChunks(chunks), query))},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("structured completion: %w", err)
	}

	results, err := parseStructuredResponse(resp.Text())
	if err == nil {
		return results, nil
	}
	r.logger.Warn("structured output malformed, attempting repair", zap.Error(err))

	repaired, repairErr := r.repairJSON(ctx, resp.Text())
	if repairErr == nil {
		if results, err := parseStructuredResponse(repaired); err == nil {
			return results, nil
		}
	}

	// Both the original output and the repair failed to parse. The caller
	// gets a benign synthetic result, never raw model text or an error.
	return []StructuredResult{{
		Title:   "Error",
		Summary: "The search results could not be processed. Please try rephrasing your query.",
	}}, nil
}

// repairJSON re-prompts the prompt model to coerce malformed text into the
// expected structure.
func (r *Router) repairJSON(ctx context.Context, malformed string) (string, error) {
	resp, err := r.provider.Completion(ctx, &llm.ChatRequest{
		Model:       r.contextualizer.model,
		Messages:    []llm.Message{llm.NewUserMessage(fmt.Sprintf(jsonRepairPrompt, malformed))},
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func parseStructuredResponse(text string) ([]StructuredResult, error) {
	payload := extractJSON(text)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object found in output")
	}
	var parsed structuredResponse
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("decode structured output: %w", err)
	}
	return parsed.Results, nil
}

// extractJSON strips code fences and surrounding prose, returning the
// outermost JSON object in text, or "" when none exists.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if after, ok := strings.CutPrefix(text, "```json"); ok {
		text = after
	} else if after, ok := strings.CutPrefix(text, "```"); ok {
		text = after
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
