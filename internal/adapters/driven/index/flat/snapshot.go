package flat

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
)

// Snapshot format: a 4-byte magic, a version byte, then a
// zstd-compressed gob stream. Entries are stored in insertion order so
// that tie-breaking behaves identically after a restore.
var snapshotMagic = [4]byte{'P', 'D', 'X', '1'}

const snapshotVersion = 1

type snapshot struct {
	Dimension int
	IDs       []string
	Vectors   [][]float32
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteTo serialises the index to w. The caller is expected to hold no
// locks; the index takes a read lock for the duration of the write.
func (i *Index) WriteTo(w io.Writer) (int64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	snap := snapshot{
		Dimension: i.dim,
		IDs:       make([]string, len(i.entries)),
		Vectors:   make([][]float32, len(i.entries)),
	}
	for n, e := range i.entries {
		snap.IDs[n] = e.id
		snap.Vectors[n] = e.vec
	}

	cw := &countingWriter{w: w}
	if _, err := cw.Write(snapshotMagic[:]); err != nil {
		return cw.n, fmt.Errorf("write snapshot header: %w", err)
	}
	if _, err := cw.Write([]byte{snapshotVersion}); err != nil {
		return cw.n, fmt.Errorf("write snapshot header: %w", err)
	}

	zw, err := zstd.NewWriter(cw)
	if err != nil {
		return cw.n, fmt.Errorf("create snapshot compressor: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(snap); err != nil {
		zw.Close()
		return cw.n, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("flush snapshot: %w", err)
	}
	return cw.n, nil
}

// Read restores an index from a snapshot previously produced by
// WriteTo.
func Read(r io.Reader) (*Index, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read snapshot header: %w", err)
	}
	if !bytes.Equal(header[:4], snapshotMagic[:]) {
		return nil, fmt.Errorf("%w: not an index snapshot", domain.ErrInvalidInput)
	}
	if header[4] != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported snapshot version %d", domain.ErrInvalidInput, header[4])
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open snapshot decompressor: %w", err)
	}
	defer zr.Close()

	var snap snapshot
	if err := gob.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(snap.IDs) != len(snap.Vectors) {
		return nil, fmt.Errorf("%w: corrupt snapshot", domain.ErrInvalidInput)
	}

	idx, err := New(snap.Dimension)
	if err != nil {
		return nil, err
	}
	for n, id := range snap.IDs {
		if err := idx.add(id, snap.Vectors[n]); err != nil {
			return nil, fmt.Errorf("restore snapshot entry %q: %w", id, err)
		}
	}
	return idx, nil
}

// Open loads the snapshot at path, or returns a fresh empty index when
// no snapshot exists there yet. A snapshot whose dimensionality differs
// from the requested one is rejected.
func Open(path string, dimension int) (*Index, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(dimension)
	}
	if err != nil {
		return nil, fmt.Errorf("open index snapshot: %w", err)
	}
	defer f.Close()

	idx, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("load index snapshot %s: %w", path, err)
	}
	if idx.dim != dimension {
		return nil, &domain.DimensionMismatchError{Want: dimension, Got: idx.dim}
	}
	return idx, nil
}

// Save writes the index to path atomically: the snapshot is written to
// a temporary file in the same directory and renamed into place.
func (i *Index) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := i.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temporary snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace index snapshot: %w", err)
	}
	return nil
}
