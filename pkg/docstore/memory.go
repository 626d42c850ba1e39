package docstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/summarist/pkg/broadcast"
)

// MemoryStore keeps documents in process memory.
// Suitable for tests and single-instance development setups.
type MemoryStore struct {
	mu      sync.RWMutex
	docs    map[string]*Document
	changes *broadcast.MemoryBroadcaster[*Document]
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:    make(map[string]*Document),
		changes: broadcast.NewMemoryBroadcaster[*Document](64),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Get(ctx context.Context, path string) (*Document, error) {
	if err := ValidateDocumentPath(path); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc), nil
}

func (s *MemoryStore) Set(ctx context.Context, path string, fields map[string]any) error {
	if err := ValidateDocumentPath(path); err != nil {
		return err
	}
	s.mu.Lock()
	doc := s.upsertLocked(path)
	for k, v := range fields {
		doc.Fields[k] = cloneValue(v)
	}
	snapshot := copyDocument(doc)
	s.mu.Unlock()

	s.publish(ctx, snapshot)
	return nil
}

func (s *MemoryStore) Create(ctx context.Context, path string, fields map[string]any) error {
	if err := ValidateDocumentPath(path); err != nil {
		return err
	}
	s.mu.Lock()
	if _, ok := s.docs[path]; ok {
		s.mu.Unlock()
		return ErrAlreadyExists
	}
	doc := s.upsertLocked(path)
	for k, v := range fields {
		doc.Fields[k] = cloneValue(v)
	}
	snapshot := copyDocument(doc)
	s.mu.Unlock()

	s.publish(ctx, snapshot)
	return nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ValidateCollectionPath(collection); err != nil {
		return "", err
	}
	path := Join(collection, uuid.NewString())
	if err := s.Set(ctx, path, fields); err != nil {
		return "", err
	}
	return path, nil
}

func (s *MemoryStore) ArrayUnion(ctx context.Context, path, field string, values ...any) error {
	if err := ValidateDocumentPath(path); err != nil {
		return err
	}
	s.mu.Lock()
	doc := s.upsertLocked(path)
	list, _ := cloneValue(doc.Fields[field]).([]any)
	if list == nil {
		list = []any{}
	}
	for _, v := range values {
		if !containsValue(list, v) {
			list = append(list, v)
		}
	}
	doc.Fields[field] = list
	snapshot := copyDocument(doc)
	s.mu.Unlock()

	s.publish(ctx, snapshot)
	return nil
}

func (s *MemoryStore) ArrayRemove(ctx context.Context, path, field string, values ...any) error {
	if err := ValidateDocumentPath(path); err != nil {
		return err
	}
	s.mu.Lock()
	doc, ok := s.docs[path]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	list, _ := cloneValue(doc.Fields[field]).([]any)
	kept := make([]any, 0, len(list))
	for _, item := range list {
		if !containsValue(values, item) {
			kept = append(kept, item)
		}
	}
	doc.Fields[field] = kept
	doc.UpdatedAt = s.now()
	doc.Version++
	snapshot := copyDocument(doc)
	s.mu.Unlock()

	s.publish(ctx, snapshot)
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, filters ...Filter) ([]*Document, error) {
	if err := ValidateCollectionPath(collection); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Document
	for path, doc := range s.docs {
		parent, _ := Split(path)
		if parent != collection {
			continue
		}
		matched := true
		for _, f := range filters {
			if !f.match(doc.Fields) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, copyDocument(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	if err := ValidateDocumentPath(path); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.docs, path)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Watch(ctx context.Context, path string) (<-chan *Document, error) {
	if err := ValidateDocumentPath(path); err != nil {
		return nil, err
	}

	// Subscribe before reading the current state so no write slips between them.
	sub := s.changes.Subscribe(ctx)
	current, err := s.Get(ctx, path)
	if err != nil && !errors.Is(err, ErrNotFound) {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan *Document, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		if current != nil {
			select {
			case out <- current:
			case <-ctx.Done():
				return
			}
		}

		msgs := sub.Receive(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if msg.Data.Path != path {
					continue
				}
				select {
				case out <- copyDocument(msg.Data):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close releases watchers.
func (s *MemoryStore) Close() error {
	return s.changes.Close()
}

func (s *MemoryStore) upsertLocked(path string) *Document {
	now := s.now()
	doc, ok := s.docs[path]
	if !ok {
		doc = &Document{Path: path, Fields: make(map[string]any), CreatedAt: now}
		s.docs[path] = doc
	}
	doc.UpdatedAt = now
	doc.Version++
	return doc
}

func (s *MemoryStore) publish(ctx context.Context, doc *Document) {
	_ = s.changes.Broadcast(ctx, broadcast.Message[*Document]{Data: doc})
}

func copyDocument(doc *Document) *Document {
	return &Document{
		Path:      doc.Path,
		Fields:    cloneFields(doc.Fields),
		Version:   doc.Version,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
