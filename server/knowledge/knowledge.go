package knowledge

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"

	"github.com/sweax/sweax/store"
)

// Embedder produces an embedding vector for a piece of text.
type Embedder interface {
	Embedding(ctx context.Context, text string) ([]float32, error)
}

// Service caches fetched summaries and serves similarity lookups over
// them. Lookups degrade to keyword matching when embeddings are
// missing or the driver has no vector support.
type Service struct {
	store    *store.Store
	embedder Embedder
}

func NewService(store *store.Store, embedder Embedder) *Service {
	return &Service{store: store, embedder: embedder}
}

// Record stores a summary under its topic. Embedding the content is
// best effort; a failed or unavailable embedder still leaves the
// record usable for keyword lookups.
func (s *Service) Record(ctx context.Context, topic, content, sourceURL, lang string) (*store.KnowledgeRecord, error) {
	record, err := s.store.CreateKnowledgeRecord(ctx, &store.KnowledgeRecord{
		Topic:     normalizeTopic(topic),
		Content:   content,
		SourceURL: sourceURL,
		Lang:      lang,
		CreatedTs: time.Now().Unix(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to record knowledge")
	}

	if s.embedder != nil {
		vector, err := s.embedder.Embedding(ctx, content)
		if err != nil {
			slog.Warn("knowledge embedding failed", "topic", topic, "error", err)
			return record, nil
		}
		if err := s.store.UpsertKnowledgeEmbedding(ctx, &store.KnowledgeEmbedding{
			KnowledgeID: record.ID,
			Embedding:   vector,
			CreatedTs:   time.Now().Unix(),
		}); err != nil {
			slog.Warn("knowledge embedding upsert failed", "topic", topic, "error", err)
		}
	}

	return record, nil
}

// Lookup returns the freshest cached record for an exact topic, or nil.
func (s *Service) Lookup(ctx context.Context, topic string) (*store.KnowledgeRecord, error) {
	query := normalizeTopic(topic)
	limit := 1
	list, err := s.store.ListKnowledgeRecords(ctx, &store.FindKnowledgeRecord{
		Query: &query,
		Limit: &limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up knowledge")
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// FindSimilar returns up to limit records related to the query, most
// relevant first.
func (s *Service) FindSimilar(ctx context.Context, query string, limit int) ([]*store.KnowledgeRecord, error) {
	if limit <= 0 {
		limit = 3
	}

	if s.embedder != nil {
		if vector, err := s.embedder.Embedding(ctx, query); err == nil {
			records, _, err := s.store.SearchKnowledgeByVector(ctx, vector, limit)
			if err == nil {
				return records, nil
			}
			if !errors.Is(err, store.ErrVectorSearchUnsupported) {
				slog.Warn("vector search failed", "error", err)
			}
		}
	}

	return s.keywordScan(ctx, query, limit)
}

// keywordScan matches records whose topics share a word with the query.
func (s *Service) keywordScan(ctx context.Context, query string, limit int) ([]*store.KnowledgeRecord, error) {
	seen := map[int32]bool{}
	results := []*store.KnowledgeRecord{}
	for _, word := range queryWords(query) {
		w := word
		list, err := s.store.ListKnowledgeRecords(ctx, &store.FindKnowledgeRecord{
			Query: &w,
			Limit: &limit,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan knowledge")
		}
		for _, record := range list {
			if seen[record.ID] {
				continue
			}
			seen[record.ID] = true
			results = append(results, record)
			if len(results) >= limit {
				return results, nil
			}
		}
	}
	return results, nil
}

func normalizeTopic(topic string) string {
	return strings.ToLowerSpecial(unicode.TurkishCase, strings.TrimSpace(topic))
}

func queryWords(query string) []string {
	words := []string{}
	for _, w := range strings.Fields(normalizeTopic(query)) {
		w = strings.Trim(w, "?!.,:;")
		// Short function words rarely identify a topic.
		if len([]rune(w)) < 3 {
			continue
		}
		words = append(words, w)
	}
	return words
}
