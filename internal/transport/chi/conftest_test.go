package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
	answeruc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/answer"
	documentuc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/document"
	healthuc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/health"
	noteuc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/note"
	seeduc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/seed"
)

// --- Provider fakes shared across handler tests ---

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type fakeSearcher struct {
	docs []domain.RetrievedDocument
	err  error
}

func (f *fakeSearcher) Search(context.Context, []float32, int) ([]domain.RetrievedDocument, error) {
	return f.docs, f.err
}

// fakeExtractor unmarshals a canned JSON payload into out, mimicking a
// structured extraction response.
type fakeExtractor struct {
	payload string
	err     error
}

func (f *fakeExtractor) Extract(_ context.Context, _ domain.ExtractionRequest, out any) error {
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.payload), out)
}

type fakeCache struct {
	entries map[string]domain.NoteSummary
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]domain.NoteSummary)}
}

func (f *fakeCache) Get(_ context.Context, note string) (domain.NoteSummary, bool) {
	summary, ok := f.entries[note]
	return summary, ok
}

func (f *fakeCache) Set(_ context.Context, note string, summary domain.NoteSummary) {
	f.entries[note] = summary
}

type fakeDocRepo struct {
	docs   map[int64]domain.Document
	nextID int64
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[int64]domain.Document), nextID: 1}
}

func (f *fakeDocRepo) Create(_ context.Context, title, content string, inVectorDB bool) (domain.Document, error) {
	doc := domain.Document{ID: f.nextID, Title: title, Content: content, InVectorDB: inVectorDB}
	f.docs[doc.ID] = doc
	f.nextID++
	return doc, nil
}

func (f *fakeDocRepo) Get(_ context.Context, id int64) (domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (f *fakeDocRepo) List(_ context.Context) ([]domain.Document, error) {
	out := make([]domain.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		out = append(out, doc)
	}
	return out, nil
}

func (f *fakeDocRepo) Patch(_ context.Context, id int64, p domain.DocumentPatch) (domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	if p.Title != nil {
		doc.Title = *p.Title
	}
	if p.Content != nil {
		doc.Content = *p.Content
	}
	f.docs[id] = doc
	return doc, nil
}

func (f *fakeDocRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.docs[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(f.docs, id)
	return nil
}

type fakeIndex struct{}

func (fakeIndex) Upsert(context.Context, int64, string, string, []float32) error { return nil }
func (fakeIndex) Delete(context.Context, int64) error                            { return nil }

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

// --- Test server assembly ---

type testDeps struct {
	embed    *fakeEmbedder
	search   *fakeSearcher
	extract  *fakeExtractor
	repo     *fakeDocRepo
	redis    *fakePinger
	sql      *fakePinger
	notesDir string
}

func defaultDeps(t *testing.T) *testDeps {
	t.Helper()
	return &testDeps{
		embed: &fakeEmbedder{},
		search: &fakeSearcher{docs: []domain.RetrievedDocument{
			{ID: 10, Title: "Visit A", Content: "Cough noted.", Score: 0.9},
			{ID: 11, Title: "Visit B", Content: "Prescribed Lisinopril.", Score: 0.8},
		}},
		extract:  &fakeExtractor{payload: `{"answer": "An answer.", "document_ids": [10]}`},
		repo:     newFakeDocRepo(),
		redis:    &fakePinger{},
		sql:      &fakePinger{},
		notesDir: t.TempDir(),
	}
}

func newTestRouter(t *testing.T, deps *testDeps) chi.Router {
	t.Helper()
	logger := zap.NewNop()

	answerSvc := answeruc.New(deps.embed, deps.search, deps.extract)
	noteSvc := noteuc.New(deps.extract, newFakeCache())
	docSvc := documentuc.New(deps.repo, fakeIndex{}, deps.embed)
	seedSvc := seeduc.New(docSvc, deps.notesDir, logger)
	healthSvc := healthuc.New(deps.redis, deps.sql)

	srv := NewServer(answerSvc, noteSvc, docSvc, seedSvc, healthSvc, logger)
	r := chi.NewRouter()
	srv.Register(r)
	return r
}

func doRequest(t *testing.T, r chi.Router, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func wantDetail(t *testing.T, rec *httptest.ResponseRecorder, status int, detail string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	var er ErrorResponse
	decodeBody(t, rec, &er)
	if er.Detail != detail {
		t.Errorf("detail = %q, want %q", er.Detail, detail)
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
}
