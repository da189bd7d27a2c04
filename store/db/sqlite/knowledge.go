package sqlite

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/sweax/sweax/store"
)

func (d *DB) CreateKnowledgeRecord(ctx context.Context, create *store.KnowledgeRecord) (*store.KnowledgeRecord, error) {
	fields := []string{"topic", "content", "source_url", "lang", "created_ts"}
	args := []any{create.Topic, create.Content, create.SourceURL, create.Lang, create.CreatedTs}

	stmt := `INSERT INTO knowledge (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create knowledge record")
	}

	return create, nil
}

func (d *DB) ListKnowledgeRecords(ctx context.Context, find *store.FindKnowledgeRecord) ([]*store.KnowledgeRecord, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.Query != nil {
		where, args = append(where, "topic LIKE "+placeholder(len(args)+1)), append(args, "%"+*find.Query+"%")
	}

	query := `SELECT id, topic, content, source_url, lang, created_ts FROM knowledge WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id DESC`
	if find.Limit != nil {
		query += ` LIMIT ` + placeholder(len(args)+1)
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list knowledge records")
	}
	defer rows.Close()

	list := make([]*store.KnowledgeRecord, 0)
	for rows.Next() {
		r := &store.KnowledgeRecord{}
		if err := rows.Scan(&r.ID, &r.Topic, &r.Content, &r.SourceURL, &r.Lang, &r.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan knowledge record")
		}
		list = append(list, r)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate knowledge records")
	}

	return list, nil
}

func (d *DB) UpsertKnowledgeEmbedding(ctx context.Context, upsert *store.KnowledgeEmbedding) error {
	buf, err := json.Marshal(upsert.Embedding)
	if err != nil {
		return errors.Wrap(err, "failed to encode embedding")
	}

	stmt := `
		INSERT INTO knowledge_embedding (knowledge_id, embedding, model, created_ts)
		VALUES (` + placeholders(4) + `)
		ON CONFLICT (knowledge_id)
		DO UPDATE SET embedding = EXCLUDED.embedding, model = EXCLUDED.model
	`
	if _, err := d.db.ExecContext(ctx, stmt, upsert.KnowledgeID, string(buf), upsert.Model, upsert.CreatedTs); err != nil {
		return errors.Wrap(err, "failed to upsert knowledge embedding")
	}
	return nil
}

// SearchKnowledgeByVector scans every stored embedding and ranks by
// cosine similarity in process. Fine for the small corpora a personal
// assistant accumulates.
func (d *DB) SearchKnowledgeByVector(ctx context.Context, embedding []float32, limit int) ([]*store.KnowledgeRecord, []float32, error) {
	query := `
		SELECT k.id, k.topic, k.content, k.source_url, k.lang, k.created_ts, e.embedding
		FROM knowledge k
		JOIN knowledge_embedding e ON e.knowledge_id = k.id
	`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to query knowledge embeddings")
	}
	defer rows.Close()

	type scored struct {
		record *store.KnowledgeRecord
		score  float32
	}
	candidates := []scored{}
	for rows.Next() {
		r := &store.KnowledgeRecord{}
		var raw string
		if err := rows.Scan(&r.ID, &r.Topic, &r.Content, &r.SourceURL, &r.Lang, &r.CreatedTs, &raw); err != nil {
			return nil, nil, errors.Wrap(err, "failed to scan knowledge embedding")
		}
		var vec []float32
		if err := json.Unmarshal([]byte(raw), &vec); err != nil {
			continue
		}
		candidates = append(candidates, scored{record: r, score: cosineSimilarity(embedding, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to iterate knowledge embeddings")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	records := make([]*store.KnowledgeRecord, 0, len(candidates))
	scores := make([]float32, 0, len(candidates))
	for _, c := range candidates {
		records = append(records, c.record)
		scores = append(scores, c.score)
	}
	return records, scores, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
