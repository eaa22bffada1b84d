package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/anonto42/nano-social/backend/internal/media"
)

// MediaStore is an in-memory media.Store that validates data URIs like the real one.
type MediaStore struct {
	faults
	mu      sync.Mutex
	next    int
	objects map[string][]byte
	deleted []string
}

var _ media.Store = (*MediaStore)(nil)

func NewMediaStore() *MediaStore {
	return &MediaStore{objects: map[string][]byte{}}
}

func (m *MediaStore) Upload(_ context.Context, dataURI string) (string, error) {
	if err := m.hit("Upload"); err != nil {
		return "", err
	}
	img, err := media.ParseDataURI(dataURI)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	url := fmt.Sprintf("https://media.test/images/asset-%d%s", m.next, img.Extension())
	m.objects[media.AssetID(url)] = img.Data
	return url, nil
}

func (m *MediaStore) Delete(_ context.Context, assetURL string) error {
	if err := m.hit("Delete"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := media.AssetID(assetURL)
	delete(m.objects, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// Has reports whether the asset behind assetURL is stored.
func (m *MediaStore) Has(assetURL string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[media.AssetID(assetURL)]
	return ok
}

// Deleted returns the asset ids passed to Delete, in call order.
func (m *MediaStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.deleted)
}

// PNG is a small valid data URI for upload tests.
const PNG = "data:image/png;base64,iVBORw0KGgo="
