// Package flat implements an exact flat L2 vector index with a simple
// binary on-disk format. The corpus is small enough that a brute-force
// scan outperforms approximate structures once build cost is counted.
package flat

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driven"
)

var _ driven.VectorIndex = (*Index)(nil)

// File layout: magic, format version, dimensions, record count, then
// count records of (id length, id bytes, dimensions little-endian
// float32 values).
const (
	fileMagic   uint32 = 0x50535956 // "PSYV"
	fileVersion uint32 = 1

	// maxIDLength bounds a single chunk ID on disk. Anything larger
	// means the file is corrupt.
	maxIDLength = 4096

	// maxDimensions and maxRecords bound the header fields so a corrupt
	// header cannot drive huge allocations before the body is read.
	maxDimensions = 1 << 14
	maxRecords    = 1 << 24
)

// Index holds all vectors in memory and persists them on Flush.
// Safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	path    string
	dim     int
	ids     []string
	pos     map[string]int
	vectors [][]float32
}

// New creates an empty index that will persist to path. dim of 0 means
// the dimensionality is adopted from the first added vector.
func New(path string, dim int) *Index {
	return &Index{
		path: path,
		dim:  dim,
		pos:  make(map[string]int),
	}
}

// Open loads an index previously written by Flush. A missing file
// yields an empty index; a malformed file fails with an error wrapping
// domain.ErrIndexLoad.
func Open(path string) (*Index, error) {
	ix := New(path, 0)

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return ix, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexLoad, err)
	}
	defer f.Close()

	if err := ix.read(bufio.NewReader(f)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrIndexLoad, path, err)
	}
	return ix, nil
}

func (ix *Index) read(r io.Reader) error {
	var header struct {
		Magic   uint32
		Version uint32
		Dim     uint32
		Count   uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("read header: %v", err)
	}
	if header.Magic != fileMagic {
		return fmt.Errorf("bad magic %#x", header.Magic)
	}
	if header.Version != fileVersion {
		return fmt.Errorf("unsupported format version %d", header.Version)
	}
	if header.Dim > maxDimensions {
		return fmt.Errorf("implausible dimension count %d", header.Dim)
	}
	if header.Count > maxRecords {
		return fmt.Errorf("implausible record count %d", header.Count)
	}
	if header.Count > 0 && header.Dim == 0 {
		return fmt.Errorf("zero dimensions for %d records", header.Count)
	}

	ix.dim = int(header.Dim)
	for i := 0; i < int(header.Count); i++ {
		var idLen uint32
		if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
			return fmt.Errorf("record %d: read id length: %v", i, err)
		}
		if idLen == 0 || idLen > maxIDLength {
			return fmt.Errorf("record %d: implausible id length %d", i, idLen)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(r, idBytes); err != nil {
			return fmt.Errorf("record %d: read id: %v", i, err)
		}
		vector := make([]float32, ix.dim)
		if err := binary.Read(r, binary.LittleEndian, vector); err != nil {
			return fmt.Errorf("record %d: read vector: %v", i, err)
		}

		id := string(idBytes)
		ix.pos[id] = len(ix.ids)
		ix.ids = append(ix.ids, id)
		ix.vectors = append(ix.vectors, vector)
	}
	return nil
}

// Add inserts a vector, replacing any existing vector for the same
// chunk ID so that re-ingesting a book does not leave duplicates.
func (ix *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	if chunkID == "" {
		return fmt.Errorf("%w: empty chunk ID", domain.ErrInvalidInput)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding for %s", domain.ErrInvalidInput, chunkID)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.dim == 0 {
		ix.dim = len(embedding)
	}
	if len(embedding) != ix.dim {
		return fmt.Errorf("%w: vector for %s has %d dimensions, index has %d",
			domain.ErrInvalidInput, chunkID, len(embedding), ix.dim)
	}

	vector := make([]float32, ix.dim)
	copy(vector, embedding)

	if at, ok := ix.pos[chunkID]; ok {
		ix.vectors[at] = vector
		return nil
	}
	ix.pos[chunkID] = len(ix.ids)
	ix.ids = append(ix.ids, chunkID)
	ix.vectors = append(ix.vectors, vector)
	return nil
}

// Search scans every vector and returns the k nearest by L2 distance,
// closest first.
func (ix *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.ids) == 0 {
		return nil, nil
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(query), ix.dim)
	}

	hits := make([]driven.VectorHit, len(ix.ids))
	for i, vector := range ix.vectors {
		hits[i] = driven.VectorHit{
			ChunkID:  ix.ids[i],
			Distance: l2Distance(query, vector),
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Flush writes the index atomically: a temp file in the same directory
// is renamed over the target.
func (ix *Index) Flush(_ context.Context) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(ix.path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmp := ix.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := ix.write(w); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write index: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush index: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close index file: %w", err)
	}
	if err := os.Rename(tmp, ix.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

func (ix *Index) write(w io.Writer) error {
	header := struct {
		Magic   uint32
		Version uint32
		Dim     uint32
		Count   uint32
	}{fileMagic, fileVersion, uint32(ix.dim), uint32(len(ix.ids))}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	for i, id := range ix.ids {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(id))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, id); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, ix.vectors[i]); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of indexed vectors.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

// Dimensions returns the vector size, or 0 for an empty index.
func (ix *Index) Dimensions() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dim
}

func (ix *Index) Close() error {
	return nil
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
