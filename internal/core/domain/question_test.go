package domain

import "testing"

func TestAnswerInsufficient(t *testing.T) {
	answer := &Answer{Text: "We don't have enough information.", Confidence: 0}
	if !answer.Insufficient() {
		t.Error("expected zero-confidence answer with no sources to be insufficient")
	}

	answer = &Answer{
		Text:       "The storage fee is $45 per day.",
		Confidence: 0.82,
		Sources:    []SourceRef{{ID: "source-1", FileName: "harris-impound.pdf"}},
	}
	if answer.Insufficient() {
		t.Error("expected grounded answer not to be insufficient")
	}
}

func TestAnswerCaps(t *testing.T) {
	if MaxAnswerConfidence != 0.95 {
		t.Errorf("expected confidence cap 0.95, got %f", MaxAnswerConfidence)
	}
	if MaxAnswerCitations != 10 {
		t.Errorf("expected citation cap 10, got %d", MaxAnswerCitations)
	}
	if MaxFollowUpQuestions != 4 {
		t.Errorf("expected follow-up cap 4, got %d", MaxFollowUpQuestions)
	}
}
