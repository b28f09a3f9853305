package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/examassist/waecrag/internal/data/redisStore"
	"github.com/examassist/waecrag/internal/domain/ragModel"
	"github.com/examassist/waecrag/pkg/logz"
)

const documentKeyPrefix = "doc:"

type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logz.Logger
}

func GetRedisDocumentStore(ctx context.Context, dbType int) *RedisDocumentStore {
	inner := redisStore.GetRedisStore(ctx, dbType)
	if inner == nil {
		return nil
	}
	return &RedisDocumentStore{
		store:  inner,
		logger: logz.NewLogger("DocumentStore"),
	}
}

func (s *RedisDocumentStore) PutDocument(ctx context.Context, doc ragModel.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", doc.Id, err)
	}
	if err := s.store.Set(ctx, documentKeyPrefix+doc.Id, data); err != nil {
		s.logger.Error("Failed to store document", "id", doc.Id, "error", err)
		return err
	}
	return nil
}

func (s *RedisDocumentStore) GetDocument(ctx context.Context, id string) (ragModel.Document, bool) {
	var doc ragModel.Document
	val, err := s.store.Get(ctx, documentKeyPrefix+id)
	if s.store.IsNil(err) {
		return doc, false
	} else if err != nil {
		s.logger.Error("Failed to read document", "id", id, "error", err)
		return doc, false
	}
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		s.logger.Error("Corrupt document record", "id", id, "error", err)
		return doc, false
	}
	return doc, true
}

// ListDocuments returns every stored document sorted by id, so ingestion
// always walks the corpus in the same order.
func (s *RedisDocumentStore) ListDocuments(ctx context.Context) ([]ragModel.Document, error) {
	keys, err := s.store.ScanKeys(ctx, documentKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	sort.Strings(keys)

	docs := make([]ragModel.Document, 0, len(keys))
	for _, key := range keys {
		id := strings.TrimPrefix(key, documentKeyPrefix)
		doc, ok := s.GetDocument(ctx, id)
		if !ok {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// TestDocumentStore wires a raw redis store, for miniredis tests.
func TestDocumentStore(inner *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  inner,
		logger: logz.NewLogger("test docstore"),
	}
}
