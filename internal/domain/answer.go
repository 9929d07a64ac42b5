package domain

// AnswerDocument is a cited source document returned alongside an answer.
type AnswerDocument struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Answer is the final grounded answer. Every entry in Documents is guaranteed
// to come from the candidate set retrieved for the same request.
type Answer struct {
	Answer    string           `json:"answer"`
	Documents []AnswerDocument `json:"documents"`
}
