package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"sync"

	"github.com/google/uuid"
)

const DefaultMaxDocumentSize = 10 << 20

// MemoryDocuments keeps uploads in process, keyed by a generated
// reference of the form kyc/<owner>/<uuid>-<name>.
type MemoryDocuments struct {
	mu      sync.RWMutex
	docs    map[string]*Document
	maxSize int64
}

var _ DocumentStore = (*MemoryDocuments)(nil)

func NewMemoryDocuments(maxSize int64) *MemoryDocuments {
	if maxSize <= 0 {
		maxSize = DefaultMaxDocumentSize
	}
	return &MemoryDocuments{
		docs:    make(map[string]*Document),
		maxSize: maxSize,
	}
}

func (d *MemoryDocuments) Put(_ context.Context, ownerID int64, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, d.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > d.maxSize {
		return "", ErrDocumentTooLarge
	}

	name = path.Base(name)
	if name == "." || name == "/" {
		name = "upload"
	}
	ref := fmt.Sprintf("kyc/%d/%s-%s", ownerID, uuid.NewString(), name)

	d.mu.Lock()
	d.docs[ref] = &Document{
		Name:        name,
		ContentType: http.DetectContentType(data),
		Size:        int64(len(data)),
		Data:        data,
	}
	d.mu.Unlock()

	return ref, nil
}

func (d *MemoryDocuments) Get(_ context.Context, ref string) (*Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	doc, ok := d.docs[ref]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	out := *doc
	out.Data = bytes.Clone(doc.Data)
	return &out, nil
}

func (d *MemoryDocuments) Delete(_ context.Context, ref string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.docs[ref]; !ok {
		return ErrDocumentNotFound
	}
	delete(d.docs, ref)
	return nil
}

// Len is the number of stored documents
func (d *MemoryDocuments) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.docs)
}
