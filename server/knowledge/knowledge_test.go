package knowledge

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/sweax/sweax/internal/profile"
	"github.com/sweax/sweax/store"
	"github.com/sweax/sweax/store/db"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embedding(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func newTestStore(t *testing.T) *store.Store {
	p := &profile.Profile{
		Mode:   "prod",
		Data:   t.TempDir(),
		Driver: "sqlite",
	}
	p.DSN = filepath.Join(p.Data, "knowledge_test.db")

	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)
	ts := store.New(driver, p)
	require.NoError(t, ts.Migrate(context.Background()))
	t.Cleanup(func() { _ = ts.Close() })
	return ts
}

func TestRecordAndLookup(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestStore(t), nil)

	record, err := svc.Record(ctx, "  İstanbul  ", "İstanbul özeti", "https://tr.wikipedia.org/wiki/İstanbul", "tr")
	require.NoError(t, err)
	require.Equal(t, "istanbul", record.Topic)

	found, err := svc.Lookup(ctx, "İSTANBUL")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, record.ID, found.ID)

	none, err := svc.Lookup(ctx, "ankara")
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestRecordSurvivesEmbedderFailure(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestStore(t), &fakeEmbedder{err: errors.New("model offline")})

	record, err := svc.Record(ctx, "menemen", "Menemen tarifi", "", "tr")
	require.NoError(t, err)
	require.NotNil(t, record)

	found, err := svc.Lookup(ctx, "menemen")
	require.NoError(t, err)
	require.NotNil(t, found)
}

func TestFindSimilarVector(t *testing.T) {
	ctx := context.Background()
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"İstanbul özeti": {1, 0, 0},
		"Ankara özeti":   {0, 1, 0},
		"istanbul nedir": {0.9, 0.1, 0},
	}}
	svc := NewService(newTestStore(t), embedder)

	_, err := svc.Record(ctx, "istanbul", "İstanbul özeti", "", "tr")
	require.NoError(t, err)
	_, err = svc.Record(ctx, "ankara", "Ankara özeti", "", "tr")
	require.NoError(t, err)

	records, err := svc.FindSimilar(ctx, "istanbul nedir", 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "istanbul", records[0].Topic)
}

func TestFindSimilarKeywordFallback(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestStore(t), &fakeEmbedder{err: errors.New("model offline")})

	_, err := svc.Record(ctx, "kuru fasulye", "Kuru fasulye tarifi", "", "tr")
	require.NoError(t, err)

	records, err := svc.FindSimilar(ctx, "fasulye nasıl yapılır", 3)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "kuru fasulye", records[0].Topic)
}
