package repositories

import (
	"context"
	"testing"

	"inkpost/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := OpenBadger(BadgerOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, store *BadgerStore, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "hash", Name: "Test User"}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func seedPost(t *testing.T, store *BadgerStore, title string, authorID int) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:    title,
		Subtitle: "subtitle",
		Date:     "March 04, 2025",
		Body:     "body",
		ImgURL:   "http://x/y.png",
		AuthorID: authorID,
	}
	require.NoError(t, store.Posts().Create(context.Background(), post))
	return post
}

func TestGetNextID(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	t.Run("first ID", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, PostSeqKey)
			assert.NoError(t, err)
			assert.Equal(t, 1, id)
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("sequential IDs", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			for i := 2; i <= 5; i++ {
				id, err := getNextID(txn, PostSeqKey)
				assert.NoError(t, err)
				assert.Equal(t, i, id)
			}
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("different sequence keys", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			commentID, err := getNextID(txn, CommentSeqKey)
			assert.NoError(t, err)
			assert.Equal(t, 1, commentID, "comment sequence should start from 1")
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("persistence", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, "test:seq")
			assert.NoError(t, err)
			assert.Equal(t, 1, id)
			return nil
		})
		assert.NoError(t, err)

		err = db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, "test:seq")
			assert.NoError(t, err)
			assert.Equal(t, 2, id)
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("corrupt sequence", func(t *testing.T) {
		require.NoError(t, db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte("bad:seq"), []byte{1, 2})
		}))
		err := db.Update(func(txn *badger.Txn) error {
			_, err := getNextID(txn, "bad:seq")
			return err
		})
		assert.Error(t, err)
	})
}

func TestKeysSortInInsertionOrder(t *testing.T) {
	assert.Less(t, string(postKey(2)), string(postKey(10)))
	assert.Less(t, string(commentKey(1, 9)), string(commentKey(1, 10)))
	assert.NotContains(t, string(commentKey(11, 1)), string(commentPostPrefix(1)))
}

func TestUnmarshalEntity(t *testing.T) {
	t.Run("unmarshal post", func(t *testing.T) {
		data := []byte(`{"id":1,"title":"Test Post","author_id":3}`)
		var post models.Post
		err := unmarshalEntity(data, &post)
		assert.NoError(t, err)
		assert.Equal(t, 1, post.ID)
		assert.Equal(t, "Test Post", post.Title)
		assert.Equal(t, 3, post.AuthorID)
	})

	t.Run("unmarshal invalid JSON", func(t *testing.T) {
		var post models.Post
		assert.Error(t, unmarshalEntity([]byte(`{"id":1,invalid json}`), &post))
	})

	t.Run("marshal invalid entity", func(t *testing.T) {
		_, err := marshalEntity(struct{ Ch chan int }{Ch: make(chan int)})
		assert.Error(t, err)
	})

	t.Run("password hash survives a round trip", func(t *testing.T) {
		data, err := marshalEntity(&models.User{Email: "a@example.com", PasswordHash: "$2a$hash"})
		require.NoError(t, err)
		var user models.User
		require.NoError(t, unmarshalEntity(data, &user))
		assert.Equal(t, "$2a$hash", user.PasswordHash)
	})
}

func TestStoreSchemaAndPing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, store.Ping(ctx))
	assert.NoError(t, store.EnsureSchema(), "schema creation is idempotent")

	seedPost(t, store, "to be cleared", 1)
	require.NoError(t, store.Clear())
	posts, err := store.Posts().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.NoError(t, store.Ping(ctx))
}
