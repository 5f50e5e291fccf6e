package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
)

func TestNewPaperStore(t *testing.T) {
	store := NewPaperStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.papers)
	assert.NotNil(t, store.chunks)
}

func TestPaperStore_SavePaper(t *testing.T) {
	store := NewPaperStore()
	ctx := context.Background()

	err := store.SavePaper(ctx, &domain.Paper{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = store.SavePaper(ctx, &domain.Paper{ID: "p1", Title: "A Paper", FullText: "body"})
	require.NoError(t, err)

	got, err := store.GetPaper(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "A Paper", got.Title)
	assert.False(t, got.ProcessedAt.IsZero())
}

func TestPaperStore_GetPaper_NotFound(t *testing.T) {
	store := NewPaperStore()

	_, err := store.GetPaper(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaperStore_GetFullText(t *testing.T) {
	store := NewPaperStore()
	ctx := context.Background()

	require.NoError(t, store.SavePaper(ctx, &domain.Paper{ID: "p1", FullText: "body"}))

	text, err := store.GetFullText(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "body", text)

	_, err = store.GetFullText(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaperStore_ListPaperIDs(t *testing.T) {
	store := NewPaperStore()
	ctx := context.Background()

	require.NoError(t, store.SavePaper(ctx, &domain.Paper{ID: "b"}))
	require.NoError(t, store.SavePaper(ctx, &domain.Paper{ID: "a"}))

	ids, err := store.ListPaperIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestPaperStore_Chunks(t *testing.T) {
	store := NewPaperStore()
	ctx := context.Background()

	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "p1:1", PaperID: "p1", Content: "b", Position: 1},
		{ID: "p1:0", PaperID: "p1", Content: "a", Position: 0},
		{ID: "p2:0", PaperID: "p2", Content: "other", Position: 0},
	}))

	chunk, err := store.GetChunk(ctx, "p1:0")
	require.NoError(t, err)
	assert.Equal(t, "a", chunk.Content)

	_, err = store.GetChunk(ctx, "ghost:0")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := store.GetChunksByPaper(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, 1, chunks[1].Position)
}

func TestPaperStore_DeleteChunksByPaper(t *testing.T) {
	store := NewPaperStore()
	ctx := context.Background()

	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "p1:1", PaperID: "p1", Position: 1},
		{ID: "p1:0", PaperID: "p1", Position: 0},
		{ID: "p2:0", PaperID: "p2", Position: 0},
	}))

	ids, err := store.DeleteChunksByPaper(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1:0", "p1:1"}, ids)

	chunks, err := store.GetChunksByPaper(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	other, err := store.GetChunksByPaper(ctx, "p2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestPaperStore_DeletePaper(t *testing.T) {
	store := NewPaperStore()
	ctx := context.Background()

	require.NoError(t, store.SavePaper(ctx, &domain.Paper{ID: "p1"}))
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "p1:0", PaperID: "p1", Position: 0},
	}))

	require.NoError(t, store.DeletePaper(ctx, "p1"))

	_, err := store.GetPaper(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := store.GetChunksByPaper(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestPaperStore_Stats(t *testing.T) {
	store := NewPaperStore()
	ctx := context.Background()

	require.NoError(t, store.SavePaper(ctx, &domain.Paper{ID: "p1"}))
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "p1:0", PaperID: "p1", Position: 0},
		{ID: "p1:1", PaperID: "p1", Position: 1},
	}))

	papers, chunks, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, papers)
	assert.Equal(t, 2, chunks)
}
