package monitor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/formatter"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/snapshot"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/utils"
)

// Compression selects how archived snapshots are stored.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
)

// Archive writes changed snapshots into a directory.
type Archive struct {
	dir         string
	compression Compression
}

// NewArchive returns an archive rooted at dir. An empty compression means
// CompressionNone.
func NewArchive(dir string, compression Compression) (*Archive, error) {
	switch compression {
	case "":
		compression = CompressionNone
	case CompressionNone, CompressionZstd:
	default:
		return nil, fmt.Errorf("unsupported compression %q", compression)
	}
	return &Archive{dir: dir, compression: compression}, nil
}

// FileName returns the archive file name for iteration and s.
func (a *Archive) FileName(iteration int, s *snapshot.Snapshot) string {
	name := fmt.Sprintf("snapshot_%04d_%s.json", iteration, utils.FileStamp(s.CaptureTime))
	if a.compression == CompressionZstd {
		name += ".zst"
	}
	return name
}

// Write stores s as the snapshot of iteration and returns the file path.
func (a *Archive) Write(iteration int, s *snapshot.Snapshot) (string, error) {
	path := filepath.Join(a.dir, a.FileName(iteration, s))

	doc, err := formatter.BuildJSON(formatter.NewArchiveDocument(iteration, s))
	if err != nil {
		return "", &PersistenceError{Op: "encode snapshot", Path: path, Err: err}
	}
	if a.compression == CompressionZstd {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return "", &PersistenceError{Op: "compress snapshot", Path: path, Err: err}
		}
		doc = enc.EncodeAll(doc, nil)
		enc.Close()
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return "", &PersistenceError{Op: "write snapshot", Path: path, Err: err}
	}
	return path, nil
}

// ReadArchived reads an archived document, decompressing .zst files.
func ReadArchived(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) != ".zst" {
		return data, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
