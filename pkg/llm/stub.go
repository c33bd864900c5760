package llm

import (
	"context"
	"fmt"
	"sync"
)

// StubClient provides a controllable Client implementation for testing.
// It replays predefined results in order and records every request it sees.
type StubClient struct {
	mu       sync.Mutex
	name     string
	results  []Result
	errs     []error
	index    int
	requests []Request
}

// NewStubClient creates a stub that returns texts in order, one per call.
func NewStubClient(name string, texts ...string) *StubClient {
	results := make([]Result, len(texts))
	for i, text := range texts {
		results[i] = Result{Text: text, InputTokens: 10, OutputTokens: 20}
	}
	return &StubClient{name: name, results: results}
}

// NewStubClientWithErrors creates a stub that replays results and errors in
// call order. A nil error at position i yields results[i].
func NewStubClientWithErrors(name string, results []Result, errs []error) *StubClient {
	return &StubClient{name: name, results: results, errs: errs}
}

// Generate returns the next scripted result or error.
func (s *StubClient) Generate(_ context.Context, req Request) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)

	i := s.index
	s.index++

	if i < len(s.errs) && s.errs[i] != nil {
		return Result{}, s.errs[i]
	}
	if i >= len(s.results) {
		return Result{}, fmt.Errorf("stub client %s: no more responses (call %d)", s.name, i+1)
	}
	return s.results[i], nil
}

// ModelName returns the stub's name.
func (s *StubClient) ModelName() string {
	return s.name
}

// Requests returns a copy of every request observed so far.
func (s *StubClient) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Calls returns how many times Generate was invoked.
func (s *StubClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}
