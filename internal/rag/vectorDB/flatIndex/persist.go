package flatIndex

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
)

const (
	matrixMagic   = "DRVX"
	matrixVersion = uint16(1)
	metaVersion   = 1

	// magic + version + dimension + count + generation
	headerSize = 4 + 2 + 4 + 8 + 8
)

var (
	errBadMagic      = errors.New("not a vector matrix file")
	errBadVersion    = errors.New("unsupported format version")
	errChecksum      = errors.New("checksum mismatch")
	errGeneration    = errors.New("matrix and metadata generations differ")
	errIndexMismatch = errors.New("persisted index does not match configuration")
	errMatrixSize    = errors.New("matrix file size does not match its header")
)

// swap points used by the writer, replaced in tests to simulate disk failures
var (
	renameFile = os.Rename
	createTemp = os.CreateTemp
)

type metadataFile struct {
	Version        int                       `json:"version"`
	Generation     uint64                    `json:"generation"`
	Name           string                    `json:"name"`
	Dimension      int                       `json:"dimension"`
	EmbeddingModel string                    `json:"embedding_model"`
	VectorCount    int                       `json:"vector_count"`
	MatrixFile     string                    `json:"matrix_file"`
	MatrixCRC32    uint32                    `json:"matrix_crc32"`
	SavedAt        time.Time                 `json:"saved_at"`
	Documents      []vectorDB.DocumentRecord `json:"documents"`
	Chunks         []vectorDB.ChunkRecord    `json:"chunks"`
}

type matrixHeader struct {
	dimension  int
	count      int
	generation uint64
}

// writeMatrix encodes the header, the row-major float32 data and a trailing CRC32 of both.
func writeMatrix(w io.Writer, dimension int, generation uint64, data []float32) (uint32, error) {
	crc := crc32.NewIEEE()
	bw := bufio.NewWriter(io.MultiWriter(w, crc))

	var header [headerSize]byte
	copy(header[0:4], matrixMagic)
	binary.LittleEndian.PutUint16(header[4:6], matrixVersion)
	binary.LittleEndian.PutUint32(header[6:10], uint32(dimension))
	binary.LittleEndian.PutUint64(header[10:18], uint64(len(data)/dimension))
	binary.LittleEndian.PutUint64(header[18:26], generation)
	if _, err := bw.Write(header[:]); err != nil {
		return 0, err
	}

	var buf [4]byte
	for _, v := range data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		if _, err := bw.Write(buf[:]); err != nil {
			return 0, err
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}

	sum := crc.Sum32()
	binary.LittleEndian.PutUint32(buf[:], sum)
	if _, err := w.Write(buf[:]); err != nil {
		return 0, err
	}
	return sum, nil
}

// readMatrix decodes a matrix file of the given size. The header shape is checked against
// size before the row data is allocated.
func readMatrix(r io.Reader, size int64) (matrixHeader, []float32, uint32, error) {
	crc := crc32.NewIEEE()
	br := io.TeeReader(bufio.NewReader(r), crc)

	var header [headerSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return matrixHeader{}, nil, 0, fmt.Errorf("reading header: %w", err)
	}
	if string(header[0:4]) != matrixMagic {
		return matrixHeader{}, nil, 0, errBadMagic
	}
	if v := binary.LittleEndian.Uint16(header[4:6]); v != matrixVersion {
		return matrixHeader{}, nil, 0, fmt.Errorf("%w: %d", errBadVersion, v)
	}
	h := matrixHeader{
		dimension:  int(binary.LittleEndian.Uint32(header[6:10])),
		count:      int(binary.LittleEndian.Uint64(header[10:18])),
		generation: binary.LittleEndian.Uint64(header[18:26]),
	}
	if h.dimension <= 0 || h.count < 0 || h.count > math.MaxInt32/h.dimension {
		return matrixHeader{}, nil, 0, fmt.Errorf("implausible matrix shape %dx%d", h.count, h.dimension)
	}
	if want := int64(headerSize) + int64(h.count)*int64(h.dimension)*4 + 4; want != size {
		return matrixHeader{}, nil, 0, fmt.Errorf("%w: header %dx%d needs %d bytes, file has %d",
			errMatrixSize, h.count, h.dimension, want, size)
	}

	data := make([]float32, h.count*h.dimension)
	var buf [4]byte
	for i := range data {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return matrixHeader{}, nil, 0, fmt.Errorf("reading row data: %w", err)
		}
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))
	}

	sum := crc.Sum32()
	// sum is taken before the trailer passes through the tee
	if _, err := io.ReadFull(br, buf[:]); err != nil {
		return matrixHeader{}, nil, 0, fmt.Errorf("reading checksum: %w", err)
	}
	if binary.LittleEndian.Uint32(buf[:]) != sum {
		return matrixHeader{}, nil, 0, errChecksum
	}
	return h, data, sum, nil
}

// writeFileAtomic writes into a temp file next to path, fsyncs it and renames it over path.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := createTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return renameFile(tmpName, path)
}

// save persists the current state under generation. The matrix goes to a file named after
// the generation and the metadata rename is the single commit point: until it succeeds the
// previous metadata and the matrix it names are untouched. Caller holds the write lock.
func (i *Index) save(generation uint64) error {
	matrixPath := i.matrixFile(generation)
	var sum uint32
	err := writeFileAtomic(matrixPath, func(w io.Writer) error {
		s, err := writeMatrix(w, i.cfg.Dimension, generation, i.matrix)
		sum = s
		return err
	})
	if err != nil {
		return &commonModels.PersistenceError{Op: "write matrix", Path: matrixPath, Cause: err}
	}

	meta := metadataFile{
		Version:        metaVersion,
		Generation:     generation,
		Name:           i.cfg.Name,
		Dimension:      i.cfg.Dimension,
		EmbeddingModel: i.cfg.EmbeddingModel,
		VectorCount:    i.count(),
		MatrixFile:     filepath.Base(matrixPath),
		MatrixCRC32:    sum,
		SavedAt:        time.Now().UTC(),
		Documents:      i.arena.documentList(),
		Chunks:         i.arena.chunkList(),
	}
	err = writeFileAtomic(i.metaPath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		if matrixPath != i.matrixPath {
			_ = os.Remove(matrixPath)
		}
		return &commonModels.PersistenceError{Op: "write metadata", Path: i.metaPath, Cause: err}
	}

	i.matrixPath = matrixPath
	i.removeStaleMatrices()
	return nil
}

// matrixFile is the matrix path for a generation: <dir>/<name>.<generation>.vectors.
func (i *Index) matrixFile(generation uint64) string {
	return filepath.Join(i.cfg.Dir, fmt.Sprintf("%s.%d.vectors", i.cfg.Name, generation))
}

// removeStaleMatrices deletes matrix files of this index other than the committed one.
// They are left behind by a crash between the metadata commit and the cleanup.
func (i *Index) removeStaleMatrices() {
	for _, path := range i.matrixFiles() {
		if path == i.matrixPath {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			i.logger.Warn("could not remove stale matrix file", "path", path, "error", err)
		}
	}
}

// matrixFiles lists every <name>.<generation>.vectors file in the index directory.
func (i *Index) matrixFiles() []string {
	entries, err := os.ReadDir(i.cfg.Dir)
	if err != nil {
		return nil
	}
	prefix := i.cfg.Name + "."
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".vectors") {
			continue
		}
		gen := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".vectors")
		if _, err := strconv.ParseUint(gen, 10, 64); err != nil {
			continue
		}
		out = append(out, filepath.Join(i.cfg.Dir, name))
	}
	return out
}

// load reads the metadata and the matrix file it names, and returns the restored matrix,
// arena and generation. Caller holds the write lock.
func (i *Index) load() ([]float32, *arena, uint64, error) {
	raw, err := os.ReadFile(i.metaPath)
	if err != nil {
		return nil, nil, 0, err
	}
	var meta metadataFile
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, nil, 0, fmt.Errorf("decoding metadata: %w", err)
	}
	if meta.Version != metaVersion {
		return nil, nil, 0, fmt.Errorf("%w: metadata %d", errBadVersion, meta.Version)
	}
	if meta.Dimension != i.cfg.Dimension || meta.EmbeddingModel != i.cfg.EmbeddingModel {
		return nil, nil, 0, fmt.Errorf("%w: stored %s/%d, configured %s/%d", errIndexMismatch,
			meta.EmbeddingModel, meta.Dimension, i.cfg.EmbeddingModel, i.cfg.Dimension)
	}

	matrixPath := i.matrixFile(meta.Generation)
	if meta.MatrixFile != filepath.Base(matrixPath) {
		return nil, nil, 0, fmt.Errorf("%w: metadata names matrix %q, expected %q", errGeneration,
			meta.MatrixFile, filepath.Base(matrixPath))
	}
	f, err := os.Open(matrixPath)
	if err != nil {
		return nil, nil, 0, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, nil, 0, err
	}

	header, data, sum, err := readMatrix(f, info.Size())
	if err != nil {
		return nil, nil, 0, err
	}
	if header.generation != meta.Generation {
		return nil, nil, 0, fmt.Errorf("%w: matrix %d, metadata %d", errGeneration, header.generation, meta.Generation)
	}
	if sum != meta.MatrixCRC32 {
		return nil, nil, 0, errChecksum
	}
	if header.dimension != meta.Dimension || header.count != meta.VectorCount {
		return nil, nil, 0, fmt.Errorf("%w: matrix %dx%d, metadata %dx%d", errIndexMismatch,
			header.count, header.dimension, meta.VectorCount, meta.Dimension)
	}

	a, err := rebuildArena(meta.Documents, meta.Chunks, header.count)
	if err != nil {
		return nil, nil, 0, err
	}
	i.matrixPath = matrixPath
	return data, a, meta.Generation, nil
}
