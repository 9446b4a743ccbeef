// Package mocks provides test doubles for the LLM provider and embedding
// capabilities. Supports fixed responses, prompt-matched rules, streaming,
// and error injection.
package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/nefac-ai/nefacrag/llm"
)

// Rule maps a prompt substring to a canned reply. The first rule whose
// Match occurs anywhere in the request's concatenated message contents
// wins, for both Completion and Stream.
type Rule struct {
	Match string
	Reply string
	Err   error
}

// MockProvider is a rule-driven llm.Provider double. Requests are recorded
// for later assertion.
type MockProvider struct {
	mu sync.Mutex

	rules        []Rule
	defaultReply string
	err          error

	requests []llm.ChatRequest
}

func NewMockProvider() *MockProvider {
	return &MockProvider{defaultReply: "Mock response"}
}

// WithRule adds a prompt-matched reply.
func (m *MockProvider) WithRule(match, reply string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, Rule{Match: match, Reply: reply})
	return m
}

// WithRuleError makes requests matching the substring fail.
func (m *MockProvider) WithRuleError(match string, err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, Rule{Match: match, Err: err})
	return m
}

// WithDefaultReply sets the reply for requests matching no rule.
func (m *MockProvider) WithDefaultReply(reply string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultReply = reply
	return m
}

// WithError makes every request fail.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Requests returns a copy of all recorded requests.
func (m *MockProvider) Requests() []llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestsMatching returns recorded requests whose concatenated message
// contents contain the substring.
func (m *MockProvider) RequestsMatching(substring string) []llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []llm.ChatRequest
	for _, req := range m.requests {
		if strings.Contains(joinContents(&req), substring) {
			out = append(out, req)
		}
	}
	return out
}

func (m *MockProvider) resolve(req *llm.ChatRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, *req)

	if m.err != nil {
		return "", m.err
	}
	contents := joinContents(req)
	for _, rule := range m.rules {
		if strings.Contains(contents, rule.Match) {
			return rule.Reply, rule.Err
		}
	}
	return m.defaultReply, nil
}

func (m *MockProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reply, err := m.resolve(req)
	if err != nil {
		return nil, err
	}
	return &llm.ChatResponse{
		Model: req.Model,
		Choices: []llm.ChatChoice{{
			Message:      llm.NewAssistantMessage(reply),
			FinishReason: "stop",
		}},
	}, nil
}

func (m *MockProvider) Stream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reply, err := m.resolve(req)

	ch := make(chan llm.StreamChunk, 16)
	go func() {
		defer close(ch)
		if err != nil {
			llmErr, ok := err.(*llm.Error)
			if !ok {
				llmErr = &llm.Error{Code: llm.ErrUpstreamError, Message: err.Error()}
			}
			ch <- llm.StreamChunk{Err: llmErr}
			return
		}
		for _, token := range tokenize(reply) {
			select {
			case ch <- llm.StreamChunk{Delta: llm.Message{Role: llm.RoleAssistant, Content: token}}:
			case <-ctx.Done():
				return
			}
		}
		ch <- llm.StreamChunk{FinishReason: "stop"}
	}()
	return ch, nil
}

func (m *MockProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true}, nil
}

func (m *MockProvider) Name() string { return "mock" }

// tokenize splits a reply into word-level stream fragments, keeping the
// separating spaces so concatenation reproduces the reply exactly.
func tokenize(reply string) []string {
	if reply == "" {
		return nil
	}
	words := strings.SplitAfter(reply, " ")
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func joinContents(req *llm.ChatRequest) string {
	var b strings.Builder
	for _, msg := range req.Messages {
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}
