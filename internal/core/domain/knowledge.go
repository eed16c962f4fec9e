package domain

import "time"

// Topic classifies a knowledge chunk by subject area.
type Topic string

const (
	TopicImpound Topic = "impound"
	TopicBail    Topic = "bail"
	TopicDMV     Topic = "dmv"
	TopicCourt   Topic = "court"
	TopicSCRAM   Topic = "scram"
	TopicLicense Topic = "license"
)

// KnownTopics returns the topics the corpus is curated around.
func KnownTopics() []Topic {
	return []Topic{TopicImpound, TopicBail, TopicDMV, TopicCourt, TopicSCRAM, TopicLicense}
}

// Known reports whether the topic is one of the curated set.
// Unknown values are preserved as-is; the corpus may contain topics
// added before the enumeration catches up.
func (t Topic) Known() bool {
	switch t {
	case TopicImpound, TopicBail, TopicDMV, TopicCourt, TopicSCRAM, TopicLicense:
		return true
	}
	return false
}

// Phase is the case lifecycle stage a chunk applies to, arrest through
// post-conviction.
type Phase string

const (
	PhaseArrest         Phase = "arrest"
	PhasePretrial       Phase = "pretrial"
	PhaseTrial          Phase = "trial"
	PhasePostConviction Phase = "post_conviction"
)

// Known reports whether the phase is one of the four lifecycle stages.
func (p Phase) Known() bool {
	switch p {
	case PhaseArrest, PhasePretrial, PhaseTrial, PhasePostConviction:
		return true
	}
	return false
}

// KnowledgeChunk is a retrievable unit of source text.
// Chunks are created by the ingestion pipeline and are immutable here;
// the retrieval core never writes them.
type KnowledgeChunk struct {
	ID         string    `json:"id"`
	SourceID   string    `json:"source_id"`
	Content    string    `json:"content"`
	ChunkIndex int       `json:"chunk_index"` // position within the source document
	Topic      Topic     `json:"topic"`
	Phase      Phase     `json:"phase"`
	StateID    string    `json:"state_id"`
	CountyID   *string   `json:"county_id,omitempty"`
	AllCounty  bool      `json:"applies_to_all_counties"`
	Embedding  []float32 `json:"embedding,omitempty"` // nil until computed
	CreatedAt  time.Time `json:"created_at"`
}

// HasEmbedding reports whether the chunk can participate in vector scoring.
func (c *KnowledgeChunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// Source is a document one or more chunks were extracted from.
type Source struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	FileType  string    `json:"file_type"`
	FilePath  *string   `json:"file_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CitationType classifies a legal citation. Open enumeration: the corpus
// may carry types beyond the known constants.
type CitationType string

const (
	CitationStatute    CitationType = "statute"
	CitationRegulation CitationType = "regulation"
	CitationCase       CitationType = "case"
	CitationPolicy     CitationType = "policy"
	CitationWebsite    CitationType = "website"
)

// Citation is a legal or reference citation tied to a source.
type Citation struct {
	ID           string       `json:"id"`
	SourceID     string       `json:"source_id"`
	Text         string       `json:"citation_text"`
	Type         CitationType `json:"citation_type"`
	Jurisdiction *string      `json:"jurisdiction,omitempty"`
	URL          *string      `json:"url,omitempty"`
}

// GoldDustPriority marks a curated record as a high-value insight.
const GoldDustPriority = 10

// CuratedData is a structured extraction tied to a source and topic.
// Priority runs 0-10; priority 10 records are the "gold dust" set.
type CuratedData struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	Topic    Topic  `json:"topic"`
	StateID  string `json:"state_id"`
	CountyID *string `json:"county_id,omitempty"`
	Field    string `json:"field"`
	Value    string `json:"value"`
	Priority int    `json:"priority"`
}

// IsGoldDust reports whether the record is a high-value insight.
func (d *CuratedData) IsGoldDust() bool {
	return d.Priority == GoldDustPriority
}

// ChunkFilter narrows a knowledge store query. Zero values mean "no filter".
type ChunkFilter struct {
	StateID  string
	CountyID string
	Topic    Topic
	Phase    Phase
}
