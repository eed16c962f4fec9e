package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/duiatlas/brain-core/internal/core/domain"
)

const answerPrefix = "answer:"

// DefaultAnswerTTL bounds how long a synthesized answer is reused.
// Corpus updates (new fees, changed deadlines) become visible once the
// cached entry ages out.
const DefaultAnswerTTL = 15 * time.Minute

// AnswerCache stores synthesized answers keyed by question and
// jurisdiction. It is a transport-level optimization: the synthesis
// services never see it.
type AnswerCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnswerCache creates a new Redis-backed AnswerCache
func NewAnswerCache(client *redis.Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = DefaultAnswerTTL
	}
	return &AnswerCache{client: client, ttl: ttl}
}

// Key derives the cache key for a question in a jurisdiction.
// Question text is normalized so trivial variations share an entry.
func Key(question string, qctx domain.QuestionContext) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	raw := strings.Join([]string{
		normalized,
		strings.ToLower(qctx.State),
		strings.ToLower(qctx.County),
		string(qctx.Topic),
	}, "|")

	sum := sha256.Sum256([]byte(raw))
	return answerPrefix + hex.EncodeToString(sum[:])
}

// Get retrieves a cached answer. Returns domain.ErrNotFound on a miss.
func (c *AnswerCache) Get(ctx context.Context, question string, qctx domain.QuestionContext) (*domain.Answer, error) {
	data, err := c.client.Get(ctx, Key(question, qctx)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}

	var answer domain.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answer: %w", err)
	}
	return &answer, nil
}

// Set stores an answer with the cache TTL
func (c *AnswerCache) Set(ctx context.Context, question string, qctx domain.QuestionContext, answer *domain.Answer) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}

	if err := c.client.Set(ctx, Key(question, qctx), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}
	return nil
}
