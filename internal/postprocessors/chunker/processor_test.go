package chunker

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p, err := New(WithChunkSize(500))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("overlap equals chunk size", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(100))
		if !errors.Is(err, domain.ErrInvalidChunking) {
			t.Errorf("expected ErrInvalidChunking, got %v", err)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(150))
		if !errors.Is(err, domain.ErrInvalidChunking) {
			t.Errorf("expected ErrInvalidChunking, got %v", err)
		}
	})

	t.Run("negative overlap", func(t *testing.T) {
		_, err := New(WithOverlap(-1))
		if !errors.Is(err, domain.ErrInvalidChunking) {
			t.Errorf("expected ErrInvalidChunking, got %v", err)
		}
	})

	t.Run("non-positive chunk size", func(t *testing.T) {
		_, err := New(WithChunkSize(0))
		if !errors.Is(err, domain.ErrInvalidChunking) {
			t.Errorf("expected ErrInvalidChunking, got %v", err)
		}
	})

	t.Run("zero overlap is valid", func(t *testing.T) {
		if _, err := New(WithChunkSize(100), WithOverlap(0)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p, _ := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func mustNew(t *testing.T, opts ...Option) *Processor {
	t.Helper()
	p, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestProcessor_Process_EmptyText(t *testing.T) {
	p := mustNew(t)
	paper := &domain.Paper{ID: "P1"}

	chunks, err := p.Process(context.Background(), paper, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty text, got %d", len(chunks))
	}
}

func TestProcessor_Process_ShortText(t *testing.T) {
	p := mustNew(t, WithChunkSize(100), WithOverlap(20))
	paper := &domain.Paper{
		ID:       "P1",
		FullText: "This is a small piece of content.",
	}

	chunks, err := p.Process(context.Background(), paper, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for short text, got %d", len(chunks))
	}
	if chunks[0].Content != paper.FullText {
		t.Error("expected single chunk to equal the whole text")
	}
	if chunks[0].ID != "P1:0" {
		t.Errorf("expected chunk ID P1:0, got %s", chunks[0].ID)
	}
	if chunks[0].Position != 0 {
		t.Errorf("expected position 0, got %d", chunks[0].Position)
	}
}

func TestProcessor_Process_BoundaryArithmetic(t *testing.T) {
	// 2500 characters at size 1000, overlap 200: windows start every
	// 800 characters, so boundaries are [0,1000) [800,1800) [1600,2500)
	// [2400,2500).
	p := mustNew(t, WithChunkSize(1000), WithOverlap(200))
	text := strings.Repeat("a", 2500)
	paper := &domain.Paper{ID: "P1", FullText: text}

	chunks, err := p.Process(context.Background(), paper, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}

	wantLens := []int{1000, 1000, 900, 100}
	for i, want := range wantLens {
		if got := len(chunks[i].Content); got != want {
			t.Errorf("chunk %d: expected length %d, got %d", i, want, got)
		}
		if chunks[i].Position != i {
			t.Errorf("chunk %d: expected position %d, got %d", i, i, chunks[i].Position)
		}
		if want := domain.ChunkID("P1", i); chunks[i].ID != want {
			t.Errorf("chunk %d: expected ID %s, got %s", i, want, chunks[i].ID)
		}
	}
}

func TestProcessor_Process_Reconstruction(t *testing.T) {
	// Dropping each chunk's leading overlap and concatenating must
	// reproduce the original text exactly.
	texts := []string{
		strings.Repeat("abcdefghij", 250),
		strings.Repeat("x", 1001),
		"short text",
		strings.Repeat("paragraph. ", 500),
	}

	p := mustNew(t, WithChunkSize(1000), WithOverlap(200))

	for _, text := range texts {
		paper := &domain.Paper{ID: "P1", FullText: text}
		chunks, err := p.Process(context.Background(), paper, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Every chunk except the last repeats its trailing overlap at
		// the start of the next chunk, so its unique contribution is
		// the first size-overlap characters. The last chunk is kept
		// whole.
		step := p.ChunkSize() - p.Overlap()
		var b strings.Builder
		for i, ch := range chunks {
			if i == len(chunks)-1 {
				b.WriteString(ch.Content)
			} else {
				b.WriteString(ch.Content[:step])
			}
		}
		if b.String() != text {
			t.Errorf("reconstruction mismatch for text of length %d", len(text))
		}
	}
}

func TestProcessor_Process_Deterministic(t *testing.T) {
	p := mustNew(t, WithChunkSize(300), WithOverlap(50))
	paper := &domain.Paper{ID: "P1", FullText: strings.Repeat("determinism ", 200)}

	first, err := p.Process(context.Background(), paper, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Process(context.Background(), paper, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !reflect.DeepEqual(first[i], second[i]) {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestProcessor_Process_NoEmptyChunks(t *testing.T) {
	// Text length one past a window boundary produces a trailing
	// remainder; it must never be an empty chunk.
	p := mustNew(t, WithChunkSize(10), WithOverlap(2))
	paper := &domain.Paper{ID: "P1", FullText: strings.Repeat("y", 17)}

	chunks, err := p.Process(context.Background(), paper, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, ch := range chunks {
		if ch.Content == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}
