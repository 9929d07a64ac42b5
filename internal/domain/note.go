package domain

// MinNoteLength is the minimum character count accepted for summarization.
const MinNoteLength = 200

// NoteSummary is the structured extraction of a clinical note.
// PatientChiefComplaint is nil when the note does not state one.
type NoteSummary struct {
	Summary               string   `json:"summary"`
	LaypersonParaphrase   string   `json:"layperson_paraphrase"`
	Keywords              []string `json:"keywords"`
	PatientChiefComplaint *string  `json:"patient_chief_complaint"`
}
