package answer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// systemPrompt carries the grounding constraints as a behavioral contract:
// the model answers only from the supplied documents, cites only documents it
// is certain about, and returns null/null when no confident answer exists.
const systemPrompt = `You are a highly trained medical expert with 25 years of experience.
Your task is to answer a question based ONLY from the provided list of medical documents.
Be concise, precise, and factual in your extractions.
Avoid non-factual information, exposition, and hyperbole.
If you cannot confirm with absolute certainty the relationship between the question and a document, you may NOT reference it.
You may NOT link information about a generic individual to a named individual.

Extract the following information in the specified format exactly:
` + "`answer`" + `: string or null - The answer to the user's question, if it is able to be discerned from the documents.
` + "`document_ids`" + `: list of integer or null - A list of integer ids that were highly relevant to and used in answering the question.
If no confident answer exists, both fields must be null.`

// answerSchema is the strict output schema for answer extraction. Both fields
// are required and nullable; null in either means "no answer found".
var answerSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"answer": {
			"type": ["string", "null"],
			"description": "The answer to the user's question, or null if none can be discerned from the documents."
		},
		"document_ids": {
			"type": ["array", "null"],
			"items": {"type": "integer"},
			"description": "Ids of the documents used in answering the question, or null if no answer was found."
		}
	},
	"required": ["answer", "document_ids"],
	"additionalProperties": false
}`)

// extraction is the model's claim about which candidates ground which answer.
// Nil pointers and nil slices distinguish "absent" from "empty".
type extraction struct {
	Answer      *string `json:"answer"`
	DocumentIDs []int64 `json:"document_ids"`
}

// buildPayload serializes the question and every candidate document into a
// tagged textual payload so the model can cite documents unambiguously by id.
func buildPayload(query string, cands *candidateSet) string {
	var docs strings.Builder
	for i, id := range cands.order {
		if i > 0 {
			docs.WriteByte('\n')
		}
		doc := cands.byID[id]
		fmt.Fprintf(&docs, "<document id=%d><title>%s</title><content>%s</content></document>",
			doc.ID, doc.Title, doc.Content)
	}
	return fmt.Sprintf("<question>%s</question>\n<documents>%s</documents>", query, docs.String())
}
