package answer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	vec    []float32
	err    error
	calls  int
	lastIn string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.lastIn = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 7}, nil
}

type mockSearcher struct {
	docs      []domain.RetrievedDocument
	err       error
	calls     int
	lastLimit int
}

func (m *mockSearcher) Search(_ context.Context, _ []float32, limit int) ([]domain.RetrievedDocument, error) {
	m.calls++
	m.lastLimit = limit
	return m.docs, m.err
}

type mockExtractor struct {
	result  extraction
	err     error
	calls   int
	lastReq domain.ExtractionRequest
}

func (m *mockExtractor) Extract(_ context.Context, req domain.ExtractionRequest, out any) error {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return m.err
	}
	data, err := json.Marshal(m.result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// --- Helpers ---

func strPtr(s string) *string { return &s }

func threeCandidates() []domain.RetrievedDocument {
	return []domain.RetrievedDocument{
		{ID: 10, Title: "Visit A", Content: "Patient presented with cough.", Score: 0.92},
		{ID: 11, Title: "Visit B", Content: "Prescribed Lisinopril 10mg.", Score: 0.88},
		{ID: 12, Title: "Visit C", Content: "Follow-up scheduled.", Score: 0.71},
	}
}

func newTestService(t *testing.T, search *mockSearcher, extract *mockExtractor) (*Service, *mockEmbedder) {
	t.Helper()
	embed := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	return New(embed, search, extract), embed
}
