package domain

// QuestionContext scopes a question to a jurisdiction. Ephemeral value
// object; no identity, never persisted.
type QuestionContext struct {
	County    string   `json:"county"`
	State     string   `json:"state"`
	Topic     Topic    `json:"topic,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

const (
	// MaxAnswerConfidence is a hard ceiling; the system never claims
	// near-certainty no matter how strong retrieval looks.
	MaxAnswerConfidence = 0.95

	// MaxAnswerCitations caps the citation list on a synthesized answer.
	MaxAnswerCitations = 10

	// MaxFollowUpQuestions caps suggested follow-ups.
	MaxFollowUpQuestions = 4
)

// SourceRef is the display record for a source used in an answer.
type SourceRef struct {
	ID       string  `json:"id"`
	FileName string  `json:"file_name"`
	FileType string  `json:"file_type"`
	FilePath *string `json:"file_path,omitempty"`
}

// Answer is a synthesized, grounded response to a question.
type Answer struct {
	Text       string      `json:"answer"`
	Confidence float64     `json:"confidence"` // 0.0 .. MaxAnswerConfidence
	Citations  []Citation  `json:"citations"`
	Sources    []SourceRef `json:"sources"`
	FollowUps  []string    `json:"follow_up_questions"`
}

// Insufficient reports whether the answer is the no-data terminal state.
func (a *Answer) Insufficient() bool {
	return a.Confidence == 0 && len(a.Sources) == 0
}
