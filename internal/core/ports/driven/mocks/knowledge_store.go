package mocks

import (
	"context"
	"strings"

	"github.com/duiatlas/brain-core/internal/core/domain"
)

// MockKnowledgeStore is an in-memory implementation of KnowledgeStore for testing
type MockKnowledgeStore struct {
	chunks    []*domain.KnowledgeChunk
	sources   map[string]*domain.Source
	citations []*domain.Citation
	curated   []*domain.CuratedData
	states    map[string]string
	counties  map[string]string
	failNext  error
}

// NewMockKnowledgeStore creates a new MockKnowledgeStore
func NewMockKnowledgeStore() *MockKnowledgeStore {
	return &MockKnowledgeStore{
		sources:  make(map[string]*domain.Source),
		states:   make(map[string]string),
		counties: make(map[string]string),
	}
}

func (m *MockKnowledgeStore) FindChunks(ctx context.Context, filter domain.ChunkFilter, limit int) ([]*domain.KnowledgeChunk, error) {
	if err := m.takeErr(); err != nil {
		return nil, err
	}

	var out []*domain.KnowledgeChunk
	for _, chunk := range m.chunks {
		if filter.StateID != "" && chunk.StateID != filter.StateID {
			continue
		}
		if filter.CountyID != "" && !chunk.AllCounty &&
			(chunk.CountyID == nil || *chunk.CountyID != filter.CountyID) {
			continue
		}
		if filter.Topic != "" && chunk.Topic != filter.Topic {
			continue
		}
		if filter.Phase != "" && chunk.Phase != filter.Phase {
			continue
		}
		out = append(out, chunk)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockKnowledgeStore) GetSourcesByIDs(ctx context.Context, ids []string) ([]*domain.Source, error) {
	if err := m.takeErr(); err != nil {
		return nil, err
	}

	var out []*domain.Source
	for _, id := range ids {
		if src, ok := m.sources[id]; ok {
			out = append(out, src)
		}
	}
	return out, nil
}

func (m *MockKnowledgeStore) GetCitationsBySourceIDs(ctx context.Context, sourceIDs []string, jurisdictions []string) ([]*domain.Citation, error) {
	if err := m.takeErr(); err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(sourceIDs))
	for _, id := range sourceIDs {
		wanted[id] = true
	}

	var out []*domain.Citation
	for _, citation := range m.citations {
		if !wanted[citation.SourceID] {
			continue
		}
		if len(jurisdictions) > 0 && citation.Jurisdiction != nil {
			matched := false
			for _, j := range jurisdictions {
				if strings.EqualFold(*citation.Jurisdiction, j) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, citation)
	}
	return out, nil
}

func (m *MockKnowledgeStore) ResolveStateNames(ctx context.Context, ids []string) (map[string]string, error) {
	if err := m.takeErr(); err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for _, id := range ids {
		if name, ok := m.states[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func (m *MockKnowledgeStore) ResolveCountyNames(ctx context.Context, ids []string) (map[string]string, error) {
	if err := m.takeErr(); err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for _, id := range ids {
		if name, ok := m.counties[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func (m *MockKnowledgeStore) FindCuratedData(ctx context.Context, stateID, countyID string, topic domain.Topic) ([]*domain.CuratedData, error) {
	if err := m.takeErr(); err != nil {
		return nil, err
	}

	var out []*domain.CuratedData
	for _, record := range m.curated {
		if record.StateID != stateID {
			continue
		}
		if countyID != "" && (record.CountyID == nil || *record.CountyID != countyID) {
			continue
		}
		if topic != "" && record.Topic != topic {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (m *MockKnowledgeStore) FindHighPriorityCuratedData(ctx context.Context, stateID, countyID string, topic domain.Topic) ([]*domain.CuratedData, error) {
	records, err := m.FindCuratedData(ctx, stateID, countyID, topic)
	if err != nil {
		return nil, err
	}

	var out []*domain.CuratedData
	for _, record := range records {
		if record.IsGoldDust() {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *MockKnowledgeStore) takeErr() error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	return nil
}

// Helper methods for testing

func (m *MockKnowledgeStore) AddChunk(chunk *domain.KnowledgeChunk) {
	m.chunks = append(m.chunks, chunk)
}

func (m *MockKnowledgeStore) AddSource(src *domain.Source) {
	m.sources[src.ID] = src
}

func (m *MockKnowledgeStore) AddCitation(citation *domain.Citation) {
	m.citations = append(m.citations, citation)
}

func (m *MockKnowledgeStore) AddCurated(record *domain.CuratedData) {
	m.curated = append(m.curated, record)
}

func (m *MockKnowledgeStore) AddState(id, name string) {
	m.states[id] = name
}

func (m *MockKnowledgeStore) AddCounty(id, name string) {
	m.counties[id] = name
}

func (m *MockKnowledgeStore) SetFailNext(err error) {
	m.failNext = err
}
