package repositories

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	UserKeyPrefix    = "user:"
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"
	SessionKeyPrefix = "session:"

	// Unique indexes
	UserEmailIndexPrefix = "idx:user:email:"
	PostTitleIndexPrefix = "idx:post:title:"

	// Sequence keys for auto-incrementing IDs
	UserSeqKey    = "seq:user"
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"

	// SchemaKey records the key layout version.
	SchemaKey     = "meta:schema"
	SchemaVersion = 1
)

// IDs are zero padded so that key order matches insertion order.
func userKey(id int) []byte { return []byte(fmt.Sprintf("%s%010d", UserKeyPrefix, id)) }

func postKey(id int) []byte { return []byte(fmt.Sprintf("%s%010d", PostKeyPrefix, id)) }

func commentKey(postID, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d:%010d", CommentKeyPrefix, postID, id))
}

func commentPostPrefix(postID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", CommentKeyPrefix, postID))
}

func sessionKey(id string) []byte { return []byte(SessionKeyPrefix + id) }

func emailIndexKey(email string) []byte { return []byte(UserEmailIndexPrefix + email) }

func titleIndexKey(title string) []byte { return []byte(PostTitleIndexPrefix + title) }

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id int
	item, err := txn.Get([]byte(seqKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		id = 1
	} else if err != nil {
		return 0, err
	} else {
		err = item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence %q", seqKey)
			}
			id = int(binary.BigEndian.Uint64(val))
			return nil
		})
		if err != nil {
			return 0, err
		}
		id++
	}

	// Store new ID
	if err := txn.Set([]byte(seqKey), encodeID(id)); err != nil {
		return 0, err
	}

	return id, nil
}

func encodeID(id int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

func decodeID(val []byte) (int, error) {
	if len(val) != 8 {
		return 0, fmt.Errorf("invalid id encoding of length %d", len(val))
	}
	return int(binary.BigEndian.Uint64(val)), nil
}

// lookupIndex resolves a unique index entry to the id it points at.
func lookupIndex(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int
	err = item.Value(func(val []byte) error {
		var decodeErr error
		id, decodeErr = decodeID(val)
		return decodeErr
	})
	return id, err
}

// getEntity loads and decodes the value stored under key.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// setEntity encodes entity and stores it under key.
func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// iteratePrefix calls fn for the value of every key under prefix, in key order.
func iteratePrefix(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}
