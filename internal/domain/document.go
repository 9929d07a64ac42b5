package domain

// Document is a stored medical document. CreatedAt/UpdatedAt are ISO-8601 strings.
type Document struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	InVectorDB bool   `json:"in_vector_db"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// DocumentPatch carries partial updates for a document. Nil fields are untouched.
type DocumentPatch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// IsEmpty reports whether the patch changes nothing.
func (p DocumentPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil
}

// RetrievedDocument is one vector search hit: a document plus its similarity
// score. Materialized fresh per request and never cached.
type RetrievedDocument struct {
	ID      int64
	Title   string
	Content string
	Score   float64
}
