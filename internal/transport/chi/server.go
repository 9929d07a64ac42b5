// Package chi exposes the HTTP surface of the service. Error responses use a
// {"detail": "..."} body with a human-readable reason; internals stay out of
// the wire beyond a short cause string.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
	answeruc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/answer"
	documentuc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/document"
	healthuc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/health"
	noteuc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/note"
	seeduc "github.com/shaiyon/AI-Engineer-Take-Home/internal/usecase/seed"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Server wires use case services to HTTP handlers.
type Server struct {
	answer    *answeruc.Service
	note      *noteuc.Service
	documents *documentuc.Service
	seed      *seeduc.Service
	health    *healthuc.Service
	logger    *zap.Logger
}

// NewServer creates an HTTP server facade.
func NewServer(
	answer *answeruc.Service,
	note *noteuc.Service,
	documents *documentuc.Service,
	seed *seeduc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		answer:    answer,
		note:      note,
		documents: documents,
		seed:      seed,
		health:    health,
		logger:    logger,
	}
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Post("/answer_question", s.AnswerQuestion)
	r.Post("/summarize_note", s.SummarizeNote)

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.ListDocuments)
		r.Post("/", s.CreateDocument)
		r.Get("/{id}", s.GetDocument)
		r.Patch("/{id}", s.PatchDocument)
		r.Delete("/{id}", s.DeleteDocument)
	})

	r.Post("/seed", s.SeedDocuments)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// AnswerQuestion handles POST /answer_question?top_k=N.
func (s *Server) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	topK := answeruc.DefaultTopK
	if r.URL.Query().Has("top_k") {
		if err := runtime.BindQueryParameter("form", true, false, "top_k", r.URL.Query(), &topK); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid top_k: "+err.Error())
			return
		}
	}
	if topK < answeruc.MinTopK || topK > answeruc.MaxTopK {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidTopK.Error())
		return
	}

	answer, err := s.answer.Answer(r.Context(), body.Query, topK)
	if err != nil {
		s.handleAnswerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleAnswerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery), errors.Is(err, domain.ErrInvalidTopK):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNoRelevantDocuments):
		writeError(w, http.StatusNotFound, "No relevant documents found for the given question.")
	case errors.Is(err, domain.ErrNoAnswer):
		writeError(w, http.StatusNotFound, "No answer was able to be generated for the given question.")
	default:
		s.logger.Error("answer question failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error answering question: "+err.Error())
	}
}

// SummarizeNote handles POST /summarize_note.
func (s *Server) SummarizeNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	summary, err := s.note.Summarize(r.Context(), body.Text)
	if err != nil {
		if errors.Is(err, domain.ErrNoteTooShort) {
			writeError(w, http.StatusBadRequest,
				"Note must be at least "+strconv.Itoa(domain.MinNoteLength)+" characters long.")
			return
		}
		s.logger.Error("summarize note failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error summarizing note: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context())
	if err != nil {
		s.handleDocumentError(w, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// CreateDocument handles POST /documents?add_to_vector_db=bool.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if body.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	addToVectorDB := false
	if r.URL.Query().Has("add_to_vector_db") {
		if err := runtime.BindQueryParameter(
			"form", true, false, "add_to_vector_db", r.URL.Query(), &addToVectorDB,
		); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid add_to_vector_db: "+err.Error())
			return
		}
	}

	doc, err := s.documents.Create(r.Context(), body.Title, body.Content, addToVectorDB)
	if err != nil {
		s.handleDocumentError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	doc, err := s.documents.Get(r.Context(), id)
	if err != nil {
		s.handleDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// PatchDocument handles PATCH /documents/{id}.
func (s *Server) PatchDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	var patch domain.DocumentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := s.documents.Patch(r.Context(), id, patch)
	if err != nil {
		s.handleDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	if err := s.documents.Delete(r.Context(), id); err != nil {
		s.handleDocumentError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SeedDocuments handles POST /seed.
func (s *Server) SeedDocuments(w http.ResponseWriter, r *http.Request) {
	seeded, err := s.seed.Seed(r.Context())
	if err != nil {
		s.logger.Error("seed failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error seeding documents: "+err.Error())
		return
	}

	if len(seeded) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"message": "No notes found to seed."})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Seeded " + strconv.Itoa(len(seeded)) + " documents successfully",
		"documents": seeded,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDocumentError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrDocumentNotFound) {
		writeError(w, http.StatusNotFound, "Document not found")
		return
	}
	s.logger.Error("document operation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

// documentID parses the {id} path parameter, writing a 400 on failure.
func documentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		writeError(w, http.StatusBadRequest, "Invalid document id: "+raw)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}
