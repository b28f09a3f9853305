package store

import (
	"context"
	"sort"
	"sync"

	"github.com/examassist/waecrag/internal/domain/ragModel"
)

// InMemoryDocumentStore is the fallback when Redis is offline. It only
// carries documents collected within the same process run.
type InMemoryDocumentStore struct {
	lock sync.RWMutex
	docs map[string]ragModel.Document
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		docs: make(map[string]ragModel.Document),
	}
}

func (s *InMemoryDocumentStore) PutDocument(ctx context.Context, doc ragModel.Document) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.docs[doc.Id] = doc
	return nil
}

func (s *InMemoryDocumentStore) GetDocument(ctx context.Context, id string) (ragModel.Document, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

func (s *InMemoryDocumentStore) ListDocuments(ctx context.Context) ([]ragModel.Document, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	docs := make([]ragModel.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Id < docs[j].Id })
	return docs, nil
}
