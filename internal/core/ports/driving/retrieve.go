package driving

import (
	"context"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
)

// RetrieveService resolves semantic queries against the indexed corpus.
type RetrieveService interface {
	// Query embeds the text, searches the vector index and
	// materialises the k nearest chunks as readable results, ordered
	// by ascending distance.
	Query(ctx context.Context, text string, k int) ([]domain.RetrievalResult, error)

	// Paper returns a stored paper with its chunks in position order,
	// for inspecting what a result's surrounding context looks like.
	// Returns an error wrapping domain.ErrNotFound for an unknown ID.
	Paper(ctx context.Context, paperID string) (*domain.Paper, []domain.Chunk, error)
}
