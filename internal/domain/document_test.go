package domain

import "testing"

func TestDocumentPatch_IsEmpty(t *testing.T) {
	if !(DocumentPatch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}

	title := "t"
	if (DocumentPatch{Title: &title}).IsEmpty() {
		t.Error("patch with title should not be empty")
	}

	empty := ""
	if (DocumentPatch{Content: &empty}).IsEmpty() {
		t.Error("patch with explicit empty content should not be empty")
	}
}
