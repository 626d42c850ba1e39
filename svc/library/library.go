package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/dmitrymomot/summarist/pkg/docstore"
	"github.com/dmitrymomot/summarist/pkg/logger"
)

// Set names a library list.
type Set string

const (
	SetSaved    Set = "saved"
	SetFinished Set = "finished"
)

// BookIDsField is the array field holding a set's members.
const BookIDsField = "bookIds"

// Path returns the document holding one of the user's sets.
func Path(userID string, set Set) string {
	return docstore.Join("users", userID, "library", string(set))
}

// Library is a user's saved and finished book ids.
type Library struct {
	Saved    []string `json:"saved"`
	Finished []string `json:"finished"`
}

// Gateway reads and mutates library sets in the document store.
type Gateway struct {
	store  docstore.Store
	logger *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger for failed writes.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGateway creates a gateway over store. It panics when store is nil.
func NewGateway(store docstore.Store, opts ...Option) *Gateway {
	if store == nil {
		panic("library: document store is required")
	}
	g := &Gateway{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Saved returns the saved book ids, empty when the user has none.
func (g *Gateway) Saved(ctx context.Context, userID string) ([]string, error) {
	return g.members(ctx, userID, SetSaved)
}

// Finished returns the finished book ids, empty when the user has none.
func (g *Gateway) Finished(ctx context.Context, userID string) ([]string, error) {
	return g.members(ctx, userID, SetFinished)
}

// Get returns both sets.
func (g *Gateway) Get(ctx context.Context, userID string) (Library, error) {
	saved, err := g.Saved(ctx, userID)
	if err != nil {
		return Library{}, err
	}
	finished, err := g.Finished(ctx, userID)
	if err != nil {
		return Library{}, err
	}
	return Library{Saved: saved, Finished: finished}, nil
}

// Save adds bookID to the saved set, creating the set when absent.
func (g *Gateway) Save(ctx context.Context, userID, bookID string) error {
	return g.add(ctx, userID, SetSaved, bookID)
}

// MarkFinished adds bookID to the finished set, creating the set when absent.
func (g *Gateway) MarkFinished(ctx context.Context, userID, bookID string) error {
	return g.add(ctx, userID, SetFinished, bookID)
}

// Remove drops bookID from the saved set. Removing a non-member is a no-op.
func (g *Gateway) Remove(ctx context.Context, userID, bookID string) error {
	if err := validate(userID, bookID); err != nil {
		return err
	}
	if err := g.store.ArrayRemove(ctx, Path(userID, SetSaved), BookIDsField, bookID); err != nil {
		g.logFailure(ctx, "remove", userID, bookID, err)
		return fmt.Errorf("failed to remove saved book: %w", err)
	}
	return nil
}

// IsSaved reports whether bookID is in the saved set.
func (g *Gateway) IsSaved(ctx context.Context, userID, bookID string) (bool, error) {
	return g.contains(ctx, userID, SetSaved, bookID)
}

// IsFinished reports whether bookID is in the finished set.
func (g *Gateway) IsFinished(ctx context.Context, userID, bookID string) (bool, error) {
	return g.contains(ctx, userID, SetFinished, bookID)
}

func (g *Gateway) add(ctx context.Context, userID string, set Set, bookID string) error {
	if err := validate(userID, bookID); err != nil {
		return err
	}
	if err := g.store.ArrayUnion(ctx, Path(userID, set), BookIDsField, bookID); err != nil {
		g.logFailure(ctx, "add_"+string(set), userID, bookID, err)
		return fmt.Errorf("failed to update %s books: %w", set, err)
	}
	return nil
}

func (g *Gateway) members(ctx context.Context, userID string, set Set) ([]string, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	doc, err := g.store.Get(ctx, Path(userID, set))
	if errors.Is(err, docstore.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s books: %w", set, err)
	}
	return doc.Strings(BookIDsField), nil
}

func (g *Gateway) contains(ctx context.Context, userID string, set Set, bookID string) (bool, error) {
	ids, err := g.members(ctx, userID, set)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, bookID), nil
}

func (g *Gateway) logFailure(ctx context.Context, op, userID, bookID string, err error) {
	g.logger.ErrorContext(ctx, "library update failed",
		slog.String("op", op),
		logger.UserID(userID),
		logger.BookID(bookID),
		logger.Error(err),
		logger.Component("library"),
	)
}

// validate rejects ids that would escape the library document path.
func validate(userID, bookID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if strings.TrimSpace(bookID) == "" || strings.Contains(bookID, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidBookID, bookID)
	}
	return nil
}
