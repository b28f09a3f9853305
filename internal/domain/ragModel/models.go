package ragModel

import (
	"context"
	"fmt"
)

// Document is a raw source paper held by the document store. It is written
// once by the collector and only read again during ingestion.
type Document struct {
	Id        string           `json:"id"`
	SourceURI string           `json:"source_uri"`
	RawText   string           `json:"raw_text"`
	Metadata  DocumentMetadata `json:"metadata"`
}

type DocumentMetadata struct {
	Name    string `json:"name,omitempty"`
	Subject string `json:"subject,omitempty"`
	Year    int    `json:"year,omitempty"`
}

// Chunk is the unit of retrieval. Identity is (DocumentId, Ordinal);
// ordinals are contiguous from 0 per document and never change once cut.
type Chunk struct {
	Id         string `json:"chunk_id"`
	DocumentId string `json:"document_id"`
	Ordinal    int    `json:"ordinal"`
	Text       string `json:"text"`
	CharStart  int    `json:"char_start"`
	CharEnd    int    `json:"char_end"`
}

// ChunkId derives the stable chunk identifier from its identity pair.
func ChunkId(documentId string, ordinal int) string {
	return fmt.Sprintf("%s#%d", documentId, ordinal)
}

type Embedding struct {
	ChunkId string
	Vector  []float32
}

// RetrievalResult is transient query output, ordered descending by score.
type RetrievalResult struct {
	ChunkId    string
	DocumentId string
	Ordinal    int
	Score      float32
	Text       string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn lives only in the client's in-memory session.
type ConversationTurn struct {
	Role    Role
	Content string
}

// DocumentStore is the external collaborator holding raw documents.
type DocumentStore interface {
	PutDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, bool)
	ListDocuments(ctx context.Context) ([]Document, error)
}
