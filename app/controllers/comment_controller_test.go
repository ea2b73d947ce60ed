package controllers

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.createPost(t, "Open Thread")

	t.Run("anonymous is sent to login", func(t *testing.T) {
		w := f.do(http.MethodPost, "/post/1", url.Values{"comment_text": {"hello"}}, nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Equal(t, MsgLoginToComment, flashOf(t, w))

		comments, err := f.comments.GetCommentsByPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("missing post", func(t *testing.T) {
		w := f.do(http.MethodPost, "/post/99", url.Values{"comment_text": {"hello"}}, f.reader)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = f.do(http.MethodPost, "/post/99", url.Values{"comment_text": {"hello"}}, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("empty text", func(t *testing.T) {
		w := f.do(http.MethodPost, "/post/1", url.Values{"comment_text": {"   "}}, f.reader)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		comments, err := f.comments.GetCommentsByPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("logged in user comments", func(t *testing.T) {
		w := f.do(http.MethodPost, "/post/1", url.Values{"comment_text": {"Great post <b>really</b>"}}, f.reader)
		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Great post &lt;b&gt;really&lt;/b&gt;")
		assert.Contains(t, body, "Rick")

		comments, err := f.comments.GetCommentsByPost(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, f.reader.ID, comments[0].AuthorID)
		assert.Equal(t, post.ID, comments[0].PostID)
	})
}
