package domain

const (
	// DefaultSearchLimit caps result lists when the caller does not.
	DefaultSearchLimit = 10

	// DefaultSimilarityThreshold is the precision bar for direct search.
	DefaultSimilarityThreshold = 0.7

	// AnswerSimilarityThreshold is the recall-leaning bar used when
	// assembling context for answer synthesis. Deliberately lower than
	// the search default; the two are tuned independently.
	AnswerSimilarityThreshold = 0.6

	// TextSearchPlaceholderScore is reported for lexical matches, which
	// carry no vector similarity. Display-only; never feeds confidence.
	TextSearchPlaceholderScore = 0.5
)

// SearchOptions configures a search request.
type SearchOptions struct {
	State               string  `json:"state,omitempty"`
	County              string  `json:"county,omitempty"`
	Topic               Topic   `json:"topic,omitempty"`
	Phase               Phase   `json:"phase,omitempty"`
	Limit               int     `json:"limit"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

// DefaultSearchOptions returns the defaults for direct search.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Limit:               DefaultSearchLimit,
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// SearchResult is a single scored retrieval hit.
type SearchResult struct {
	ChunkID    string         `json:"chunk_id"`
	Content    string         `json:"content"`
	Similarity float64        `json:"similarity"`
	Source     *Source        `json:"source,omitempty"`
	Metadata   ResultMetadata `json:"metadata"`
}

// ResultMetadata carries resolved display fields for a result.
type ResultMetadata struct {
	StateName  string  `json:"state_name,omitempty"`
	CountyName string  `json:"county_name,omitempty"`
	Topic      Topic   `json:"topic,omitempty"`
	Phase      Phase   `json:"phase,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
	Confidence float64 `json:"confidence"` // retrieval confidence placeholder
}
