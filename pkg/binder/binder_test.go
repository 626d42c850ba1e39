package binder_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/summarist/pkg/binder"
)

type checkoutRequest struct {
	Plan string `json:"plan"`
}

func TestJSON(t *testing.T) {
	t.Parallel()
	bind := binder.JSON()

	t.Run("decodes body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"plan":"yearly"}`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		var got checkoutRequest
		require.NoError(t, bind(req, &got))
		assert.Equal(t, "yearly", got.Plan)
	})

	t.Run("empty body is not applicable", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", nil)

		var got checkoutRequest
		assert.ErrorIs(t, bind(req, &got), binder.ErrBinderNotApplicable)
	})

	t.Run("wrong content type", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`plan=yearly`))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var got checkoutRequest
		assert.ErrorIs(t, bind(req, &got), binder.ErrUnsupportedMediaType)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"plan":"yearly","admin":true}`))
		req.Header.Set("Content-Type", "application/json")

		var got checkoutRequest
		assert.ErrorIs(t, bind(req, &got), binder.ErrFailedToParseJSON)
	})

	t.Run("trailing data rejected", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"plan":"a"}{"plan":"b"}`))
		req.Header.Set("Content-Type", "application/json")

		var got checkoutRequest
		assert.ErrorIs(t, bind(req, &got), binder.ErrFailedToParseJSON)
	})
}

func TestQuery(t *testing.T) {
	t.Parallel()

	type searchRequest struct {
		Query    string   `query:"q"`
		Limit    int      `query:"limit"`
		Tags     []string `query:"tag"`
		Audio    *bool    `query:"audio"`
		Internal string   `query:"-"`
		Status   string
	}

	req := httptest.NewRequest(http.MethodGet, "/?q=habits&limit=5&tag=a,b&tag=c&audio=yes&Internal=x&status=selected", nil)

	var got searchRequest
	require.NoError(t, binder.Query()(req, &got))
	assert.Equal(t, "habits", got.Query)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, []string{"a", "b", "c"}, got.Tags)
	require.NotNil(t, got.Audio)
	assert.True(t, *got.Audio)
	assert.Empty(t, got.Internal)
	assert.Equal(t, "selected", got.Status)

	t.Run("invalid number", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/?limit=many", nil)
		var got searchRequest
		assert.ErrorIs(t, binder.Query()(req, &got), binder.ErrFailedToParseQuery)
	})

	t.Run("non pointer target", func(t *testing.T) {
		t.Parallel()
		var got searchRequest
		assert.ErrorIs(t, binder.Query()(req, got), binder.ErrFailedToParseQuery)
	})
}

func TestPath(t *testing.T) {
	t.Parallel()

	type bookRequest struct {
		BookID string `path:"id"`
	}

	params := map[string]string{"id": "f9gy1gpai8"}
	extract := func(_ *http.Request, name string) string { return params[name] }

	req := httptest.NewRequest(http.MethodGet, "/books/f9gy1gpai8", nil)
	var got bookRequest
	require.NoError(t, binder.Path(extract)(req, &got))
	assert.Equal(t, "f9gy1gpai8", got.BookID)

	assert.ErrorIs(t, binder.Path(nil)(req, &got), binder.ErrFailedToParsePath)
}
