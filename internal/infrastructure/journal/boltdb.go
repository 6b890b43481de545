// Package journal persists a log of outbound notification attempts so an
// operator can audit deliveries and failures. It is an observability aid
// only: nothing reads the journal to retry.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketName = "deliveries"

// Entry records one notification attempt.
type Entry struct {
	Seq       uint64    `json:"seq"`
	Recipient int64     `json:"recipient"`
	Kind      string    `json:"kind"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Journal wraps BoltDB for append-and-scan access to delivery records.
type Journal struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

// Record appends an attempt. The bucket sequence provides a monotonic key so
// iteration order matches insertion order.
func (j *Journal) Record(entry Entry) error {
	if j == nil || j.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		entry.Seq = seq

		payload, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, payload)
	})
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if j == nil || j.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var entries []Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketName)).Cursor()
		for k, v := c.Last(); k != nil && len(entries) < limit; k, v = c.Prev() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}

// Size returns the number of journaled attempts.
func (j *Journal) Size() (int, error) {
	if j == nil || j.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := j.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})
	return count, err
}

// Close releases the underlying database file.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}
