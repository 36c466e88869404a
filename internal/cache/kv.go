package cache

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// KVCache keeps entries in a badger database under a key prefix and lets
// badger expire them.
type KVCache struct {
	db     *badger.DB
	prefix string
}

func NewKVCache(db *badger.DB, prefix string) *KVCache {
	return &KVCache{db: db, prefix: prefix}
}

func (c *KVCache) key(k string) []byte {
	return []byte(c.prefix + k)
}

func (c *KVCache) Get(key string) ([]byte, bool) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		it, err := txn.Get(c.key(key))
		if err != nil {
			return err
		}
		data, err = it.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *KVCache) Set(key string, data []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(c.key(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

func (c *KVCache) Delete(key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(c.key(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (c *KVCache) Clear() error {
	return c.db.DropPrefix([]byte(c.prefix))
}
