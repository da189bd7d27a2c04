package postgres

import (
	"context"
	"strings"

	"github.com/pgvector/pgvector-go"
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
		where, args = append(where, "topic ILIKE "+placeholder(len(args)+1)), append(args, "%"+*find.Query+"%")
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
	stmt := `
		INSERT INTO knowledge_embedding (knowledge_id, embedding, model, created_ts)
		VALUES (` + placeholders(4) + `)
		ON CONFLICT (knowledge_id)
		DO UPDATE SET embedding = EXCLUDED.embedding, model = EXCLUDED.model
	`
	vector := pgvector.NewVector(upsert.Embedding)
	if _, err := d.db.ExecContext(ctx, stmt, upsert.KnowledgeID, vector, upsert.Model, upsert.CreatedTs); err != nil {
		return errors.Wrap(err, "failed to upsert knowledge embedding")
	}
	return nil
}

// SearchKnowledgeByVector ranks records by cosine similarity using the
// pgvector <=> operator.
func (d *DB) SearchKnowledgeByVector(ctx context.Context, embedding []float32, limit int) ([]*store.KnowledgeRecord, []float32, error) {
	query := `
		SELECT k.id, k.topic, k.content, k.source_url, k.lang, k.created_ts,
			1 - (e.embedding <=> $1) AS similarity
		FROM knowledge k
		JOIN knowledge_embedding e ON e.knowledge_id = k.id
		ORDER BY e.embedding <=> $1
		LIMIT $2
	`
	rows, err := d.db.QueryContext(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to search knowledge by vector")
	}
	defer rows.Close()

	records := []*store.KnowledgeRecord{}
	scores := []float32{}
	for rows.Next() {
		r := &store.KnowledgeRecord{}
		var score float32
		if err := rows.Scan(&r.ID, &r.Topic, &r.Content, &r.SourceURL, &r.Lang, &r.CreatedTs, &score); err != nil {
			return nil, nil, errors.Wrap(err, "failed to scan knowledge search result")
		}
		records = append(records, r)
		scores = append(scores, score)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to iterate knowledge search results")
	}

	return records, scores, nil
}
