package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestNormalizeBSON(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	in := bson.M{
		"status": "active",
		"count":  int32(3),
		"when":   bson.NewDateTimeFromTime(at),
		"items": bson.A{
			bson.D{{Key: "price", Value: bson.M{"id": "pri_1", "interval": "month"}}},
		},
		"plain": map[string]any{"nested": []any{int32(1), "x"}},
	}

	got := normalizeBSON(in)
	assert.Equal(t, map[string]any{
		"status": "active",
		"count":  int64(3),
		"when":   at,
		"items": []any{
			map[string]any{"price": map[string]any{"id": "pri_1", "interval": "month"}},
		},
		"plain": map[string]any{"nested": []any{int64(1), "x"}},
	}, got)
}

func TestMongoRecord_Document(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := mongoRecord{
		ID:        "customers/u1/subscriptions/sub_1",
		Parent:    "customers/u1/subscriptions",
		Data:      bson.M{"status": "active", "items": bson.A{"a"}},
		Version:   7,
		CreatedAt: now,
		UpdatedAt: now.Add(time.Minute),
	}

	doc := rec.document()
	assert.Equal(t, "sub_1", doc.ID())
	assert.Equal(t, "active", doc.String("status"))
	assert.Equal(t, []string{"a"}, doc.Strings("items"))
	assert.Equal(t, int64(7), doc.Version)
	assert.Equal(t, now, doc.CreatedAt)
	assert.Equal(t, now.Add(time.Minute), doc.UpdatedAt)

	empty := (&mongoRecord{ID: "accounts/a@example.com"}).document()
	assert.NotNil(t, empty.Fields)
	assert.Empty(t, empty.Fields)
}

func TestNewRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := newRecord("users/u1/library/saved", nil, now)
	assert.Equal(t, "users/u1/library/saved", rec.ID)
	assert.Equal(t, "users/u1/library", rec.Parent)
	assert.Equal(t, bson.M{}, rec.Data)
	assert.Equal(t, int64(1), rec.Version)
	assert.Equal(t, now, rec.CreatedAt)
	assert.Equal(t, now, rec.UpdatedAt)
}

func TestQueryFilter(t *testing.T) {
	t.Parallel()

	filter, err := queryFilter("customers/u1/subscriptions", []Filter{
		Equal("provider_customer_id", "ctm_1"),
		In("status", "trialing", "active"),
	})
	require.NoError(t, err)
	assert.Equal(t, bson.D{
		{Key: "parent", Value: "customers/u1/subscriptions"},
		{Key: "data.provider_customer_id", Value: "ctm_1"},
		{Key: "data.status", Value: bson.D{{Key: "$in", Value: []any{"trialing", "active"}}}},
	}, filter)

	_, err = queryFilter("books", []Filter{{Field: "title", Op: Op(">"), Value: "a"}})
	assert.ErrorContains(t, err, "unsupported filter operator")
}

func TestChangedSince(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first := &Document{Path: "users/u1/library/saved", Version: 1, UpdatedAt: at}
	// two writes inside the same clock tick
	second := &Document{Path: first.Path, Version: 2, UpdatedAt: at}

	assert.True(t, changedSince(nil, first))
	assert.True(t, changedSince(first, second))
	assert.False(t, changedSince(second, &Document{Path: first.Path, Version: 2, UpdatedAt: at}))
}
