package dataset

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/Krussell101/data-visualizer/pkg/table"
)

// Loader is the ingestion collaborator contract. The orchestration engine only
// ever asks for a decoded table by identity+fingerprint; how the bytes are
// stored and parsed is the loader's concern.
type Loader interface {
	Load(ctx context.Context, datasetID string, fingerprint string) (*table.Table, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context, datasetID string, fingerprint string) (*table.Table, error)

func (f LoaderFunc) Load(ctx context.Context, datasetID string, fingerprint string) (*table.Table, error) {
	return f(ctx, datasetID, fingerprint)
}

// Fingerprint derives the content identity of a dataset from its raw bytes.
// A re-upload with different bytes yields a different fingerprint, which is
// what invalidates stale cache entries downstream.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("%x-%d", sum[:8], len(raw))
}
