package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/mdchunk/internal/chunk"
	"github.com/dgallion1/mdchunk/internal/chunker"
	"github.com/dgallion1/mdchunk/internal/pathstore"
)

// ErrDocumentNotFound is returned when a document has no meta node.
var ErrDocumentNotFound = errors.New("document not found")

const (
	documentsRoot = "documents"
	chunksRoot    = "chunks"
)

// Store is the slice of the pathstore API the publisher needs.
type Store interface {
	PutNode(ctx context.Context, key string, req pathstore.NodeRequest) error
	GetNode(ctx context.Context, key string) (*pathstore.NodeResponse, error)
	DeleteNode(ctx context.Context, key string, recursive bool) error
	ListChildren(ctx context.Context, key string, limit int) ([]pathstore.ListChildrenResponse, error)
	PutLink(ctx context.Context, req pathstore.LinkRequest) error
}

// DocumentMeta is written to documents/<doc_id>/meta. Chunks live under
// chunks/<doc_id>/<index>, outside the documents prefix.
type DocumentMeta struct {
	DocID       string          `json:"doc_id"`
	Filename    string          `json:"filename"`
	Title       string          `json:"title"`
	ContentHash string          `json:"content_hash"`
	TotalChunks int             `json:"total_chunks"`
	Published   int             `json:"chunks_published"`
	Metrics     chunker.Metrics `json:"metrics"`
	CreatedAt   string          `json:"created_at"`
}

// Publisher writes finished chunk sequences to pathstore.
type Publisher struct {
	store       Store
	log         *slog.Logger
	concurrency int
	backoff     func(int) time.Duration
}

func NewPublisher(store Store, concurrency int, log *slog.Logger) *Publisher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Publisher{store: store, log: log, concurrency: concurrency, backoff: Backoff}
}

func docPrefix(docID string) string {
	return documentsRoot + "/" + docID
}

func chunkKey(docID string, index int) string {
	return fmt.Sprintf("%s/%s/%d", chunksRoot, docID, index)
}

func hashPrefix(hash string) string {
	return documentsRoot + "/by_hash/" + hash
}

// lastSegment returns the final component of a key path; pathstore reports
// keys with '.' separators.
func lastSegment(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '.' || r == '/' })
	if len(parts) == 0 {
		return key
	}
	return parts[len(parts)-1]
}

// FindDuplicate returns the doc_id of a published document with the same
// content hash, if any.
func (p *Publisher) FindDuplicate(ctx context.Context, hash string) (string, bool, error) {
	children, err := p.store.ListChildren(ctx, hashPrefix(hash), 1)
	if err != nil {
		return "", false, err
	}
	if len(children) == 0 {
		return "", false, nil
	}
	return lastSegment(children[0].Key), true, nil
}

// Publish writes every chunk, links consecutive chunks, then writes the
// document meta and hash index. onPublished is called once per stored chunk.
// It returns the number of chunks stored and the per-chunk failures.
func (p *Publisher) Publish(ctx context.Context, meta DocumentMeta, chunks []chunk.Chunk, onPublished func()) (int, []error) {
	source := "mdchunk:" + meta.DocID
	stored := make([]bool, len(chunks))

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, c := range chunks {
		g.Go(func() error {
			key := chunkKey(meta.DocID, i)
			err := withRetry(gctx, p.log, p.backoff, "put chunk", func() error {
				return p.store.PutNode(gctx, key, pathstore.NodeRequest{Value: c, Source: source})
			})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				mu.Lock()
				errs = append(errs, fmt.Errorf("chunk %d: %w", i, err))
				mu.Unlock()
				return nil
			}
			stored[i] = true
			if onPublished != nil {
				onPublished()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return count(stored), append(errs, err)
	}

	for i := 1; i < len(chunks); i++ {
		if !stored[i-1] || !stored[i] {
			continue
		}
		err := p.store.PutLink(ctx, pathstore.LinkRequest{
			From:    chunkKey(meta.DocID, i-1),
			To:      chunkKey(meta.DocID, i),
			Weight:  1,
			Summary: "next",
		})
		if err != nil {
			p.log.Warn("link write failed", "doc_id", meta.DocID, "from", i-1, "error", err)
		}
	}

	meta.Published = count(stored)
	if meta.Published == 0 {
		return 0, errs
	}
	metaErr := withRetry(ctx, p.log, p.backoff, "put meta", func() error {
		return p.store.PutNode(ctx, docPrefix(meta.DocID)+"/meta", pathstore.NodeRequest{Value: meta, Source: source})
	})
	if metaErr != nil {
		errs = append(errs, fmt.Errorf("meta: %w", metaErr))
	}

	hashErr := p.store.PutNode(ctx, hashPrefix(meta.ContentHash)+"/"+meta.DocID, pathstore.NodeRequest{
		Value: map[string]any{
			"filename":   meta.Filename,
			"created_at": meta.CreatedAt,
		},
		Source: source,
	})
	if hashErr != nil {
		p.log.Error("hash index write failed", "doc_id", meta.DocID, "error", hashErr)
	}
	return meta.Published, errs
}

func count(flags []bool) int {
	n := 0
	for _, ok := range flags {
		if ok {
			n++
		}
	}
	return n
}

// ListDocuments returns the meta of published documents.
func (p *Publisher) ListDocuments(ctx context.Context, limit int) ([]DocumentMeta, error) {
	children, err := p.store.ListChildren(ctx, documentsRoot, limit)
	if err != nil {
		return nil, err
	}
	docs := []DocumentMeta{}
	for _, child := range children {
		if lastSegment(child.Key) != "meta" {
			continue
		}
		var meta DocumentMeta
		if err := json.Unmarshal(child.Value, &meta); err != nil {
			p.log.Warn("skipping unreadable document meta", "key", child.Key, "error", err)
			continue
		}
		docs = append(docs, meta)
	}
	return docs, nil
}

// DeleteDocument removes a document's chunks, meta and hash index entry.
func (p *Publisher) DeleteDocument(ctx context.Context, docID string) (DocumentMeta, error) {
	node, err := p.store.GetNode(ctx, docPrefix(docID)+"/meta")
	if err != nil {
		return DocumentMeta{}, err
	}
	if node == nil {
		return DocumentMeta{}, ErrDocumentNotFound
	}
	var meta DocumentMeta
	if err := json.Unmarshal(node.Value, &meta); err != nil {
		return DocumentMeta{}, fmt.Errorf("decode meta: %w", err)
	}

	if err := p.store.DeleteNode(ctx, chunksRoot+"/"+docID, true); err != nil {
		return meta, fmt.Errorf("delete chunks: %w", err)
	}
	if err := p.store.DeleteNode(ctx, docPrefix(docID), true); err != nil {
		return meta, fmt.Errorf("delete meta: %w", err)
	}
	if meta.ContentHash != "" {
		if err := p.store.DeleteNode(ctx, hashPrefix(meta.ContentHash)+"/"+docID, false); err != nil {
			p.log.Warn("hash index delete failed", "doc_id", docID, "error", err)
		}
	}
	return meta, nil
}
