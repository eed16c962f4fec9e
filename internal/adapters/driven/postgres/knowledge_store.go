package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/duiatlas/brain-core/internal/core/domain"
	"github.com/duiatlas/brain-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.KnowledgeStore = (*KnowledgeStore)(nil)

// KnowledgeStore implements driven.KnowledgeStore using PostgreSQL.
// Embeddings are stored inline as float arrays; similarity scoring
// happens in the application layer, not in SQL.
type KnowledgeStore struct {
	db *DB
}

// NewKnowledgeStore creates a new KnowledgeStore
func NewKnowledgeStore(db *DB) *KnowledgeStore {
	return &KnowledgeStore{db: db}
}

const chunkColumns = `id, source_id, content, chunk_index, topic, phase,
	COALESCE(state_id, ''), county_id, all_counties, embedding, created_at`

// FindChunks retrieves chunks matching the filter, up to limit.
// Zero-value filter fields are not applied.
func (s *KnowledgeStore) FindChunks(ctx context.Context, filter domain.ChunkFilter, limit int) ([]*domain.KnowledgeChunk, error) {
	var conditions []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, strings.Replace(cond, "?", placeholder(len(args)), 1))
	}

	if filter.StateID != "" {
		add("state_id = ?", filter.StateID)
	}
	if filter.CountyID != "" {
		add("(county_id = ? OR all_counties)", filter.CountyID)
	}
	if filter.Topic != "" {
		add("topic = ?", string(filter.Topic))
	}
	if filter.Phase != "" {
		add("phase = ?", string(filter.Phase))
	}

	query := `SELECT ` + chunkColumns + ` FROM knowledge_chunks`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, id"
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT " + placeholder(len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.KnowledgeChunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// GetSourcesByIDs retrieves sources by their IDs. Unknown IDs are skipped.
func (s *KnowledgeStore) GetSourcesByIDs(ctx context.Context, ids []string) ([]*domain.Source, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, file_name, file_type, file_path, created_at
		FROM sources
		WHERE id = ANY($1)
	`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*domain.Source
	for rows.Next() {
		var src domain.Source
		var filePath sql.NullString
		if err := rows.Scan(&src.ID, &src.FileName, &src.FileType, &filePath, &src.CreatedAt); err != nil {
			return nil, err
		}
		src.FilePath = StringPtr(filePath)
		sources = append(sources, &src)
	}
	return sources, rows.Err()
}

// GetCitationsBySourceIDs retrieves citations for the given sources.
// Citations without a jurisdiction always match; jurisdiction-tagged
// citations match case-insensitively against the supplied names.
func (s *KnowledgeStore) GetCitationsBySourceIDs(ctx context.Context, sourceIDs []string, jurisdictions []string) ([]*domain.Citation, error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, source_id, citation_text, citation_type, jurisdiction, url
		FROM citations
		WHERE source_id = ANY($1)
	`
	args := []interface{}{pq.Array(sourceIDs)}

	if len(jurisdictions) > 0 {
		lowered := make([]string, len(jurisdictions))
		for i, j := range jurisdictions {
			lowered[i] = strings.ToLower(j)
		}
		query += ` AND (jurisdiction IS NULL OR lower(jurisdiction) = ANY($2))`
		args = append(args, pq.Array(lowered))
	}
	query += ` ORDER BY source_id, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var citations []*domain.Citation
	for rows.Next() {
		var c domain.Citation
		var jurisdiction, url sql.NullString
		if err := rows.Scan(&c.ID, &c.SourceID, &c.Text, &c.Type, &jurisdiction, &url); err != nil {
			return nil, err
		}
		c.Jurisdiction = StringPtr(jurisdiction)
		c.URL = StringPtr(url)
		citations = append(citations, &c)
	}
	return citations, rows.Err()
}

// ResolveStateNames maps state IDs to display names. Unknown IDs are
// absent from the result, never an error.
func (s *KnowledgeStore) ResolveStateNames(ctx context.Context, ids []string) (map[string]string, error) {
	return s.resolveNames(ctx, "states", ids)
}

// ResolveCountyNames maps county IDs to display names
func (s *KnowledgeStore) ResolveCountyNames(ctx context.Context, ids []string) (map[string]string, error) {
	return s.resolveNames(ctx, "counties", ids)
}

func (s *KnowledgeStore) resolveNames(ctx context.Context, table string, ids []string) (map[string]string, error) {
	names := make(map[string]string)
	if len(ids) == 0 {
		return names, nil
	}

	query := `SELECT id, name FROM ` + table + ` WHERE id = ANY($1)`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// FindCuratedData retrieves curated records for a jurisdiction, highest
// priority first
func (s *KnowledgeStore) FindCuratedData(ctx context.Context, stateID, countyID string, topic domain.Topic) ([]*domain.CuratedData, error) {
	return s.findCurated(ctx, stateID, countyID, topic, false)
}

// FindHighPriorityCuratedData retrieves only priority-10 records
func (s *KnowledgeStore) FindHighPriorityCuratedData(ctx context.Context, stateID, countyID string, topic domain.Topic) ([]*domain.CuratedData, error) {
	return s.findCurated(ctx, stateID, countyID, topic, true)
}

func (s *KnowledgeStore) findCurated(ctx context.Context, stateID, countyID string, topic domain.Topic, goldOnly bool) ([]*domain.CuratedData, error) {
	conditions := []string{"state_id = $1"}
	args := []interface{}{stateID}

	if countyID != "" {
		args = append(args, countyID)
		conditions = append(conditions, "county_id = "+placeholder(len(args)))
	}
	if topic != "" {
		args = append(args, string(topic))
		conditions = append(conditions, "topic = "+placeholder(len(args)))
	}
	if goldOnly {
		conditions = append(conditions, "priority = 10")
	}

	query := `
		SELECT id, source_id, topic, state_id, county_id, field, value, priority
		FROM curated_data
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY priority DESC, field
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.CuratedData
	for rows.Next() {
		var record domain.CuratedData
		var countyID sql.NullString
		if err := rows.Scan(&record.ID, &record.SourceID, &record.Topic, &record.StateID,
			&countyID, &record.Field, &record.Value, &record.Priority); err != nil {
			return nil, err
		}
		record.CountyID = StringPtr(countyID)
		records = append(records, &record)
	}
	return records, rows.Err()
}

// ListChunksMissingEmbedding returns chunks whose embedding has not been
// computed yet. Used by the backfill tool, not by the retrieval core.
func (s *KnowledgeStore) ListChunksMissingEmbedding(ctx context.Context, limit int) ([]*domain.KnowledgeChunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM knowledge_chunks WHERE embedding IS NULL ORDER BY created_at, id`
	var args []interface{}
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $1"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.KnowledgeChunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// SetChunkEmbedding writes a computed embedding back to a chunk
func (s *KnowledgeStore) SetChunkEmbedding(ctx context.Context, id string, embedding []float32) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE knowledge_chunks SET embedding = $2 WHERE id = $1`,
		id, pq.Array(embedding))
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanner covers both sql.Rows and sql.Row
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanChunk(row scanner) (*domain.KnowledgeChunk, error) {
	var chunk domain.KnowledgeChunk
	var countyID sql.NullString
	var embedding pq.Float32Array

	err := row.Scan(
		&chunk.ID,
		&chunk.SourceID,
		&chunk.Content,
		&chunk.ChunkIndex,
		&chunk.Topic,
		&chunk.Phase,
		&chunk.StateID,
		&countyID,
		&chunk.AllCounty,
		&embedding,
		&chunk.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	chunk.CountyID = StringPtr(countyID)
	chunk.Embedding = []float32(embedding)
	return &chunk, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
