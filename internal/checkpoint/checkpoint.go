// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package checkpoint records translated articles as they complete so an
// interrupted translation run can resume where it stopped.
package checkpoint

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/pdiddy/squad-localize/pkg/types"
)

// ErrLanguageMismatch is returned when a checkpoint written for one language
// pair is reopened for another.
var ErrLanguageMismatch = errors.New("checkpoint language pair mismatch")

const fileName = "translate.db"

var (
	metaBucket     = []byte("meta")
	articlesBucket = []byte("articles")

	keyRunID  = []byte("run_id")
	keySource = []byte("source")
	keyTarget = []byte("target")
)

// Checkpoint is a bbolt-backed record of completed articles keyed by their
// index in the input dataset.
type Checkpoint struct {
	db    *bolt.DB
	runID string
}

// Open creates or reopens the checkpoint in dir for a language pair.
func Open(dir, source, target string) (*Checkpoint, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating checkpoint directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, fileName), 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint: %w", err)
	}

	c := &Checkpoint{db: db}
	err = db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(articlesBucket); err != nil {
			return err
		}

		if id := meta.Get(keyRunID); id != nil {
			gotSource, gotTarget := string(meta.Get(keySource)), string(meta.Get(keyTarget))
			if gotSource != source || gotTarget != target {
				return fmt.Errorf("%w: checkpoint is %s→%s, run is %s→%s",
					ErrLanguageMismatch, gotSource, gotTarget, source, target)
			}
			c.runID = string(id)
			return nil
		}
		return c.initMeta(meta, source, target)
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Checkpoint) initMeta(meta *bolt.Bucket, source, target string) error {
	c.runID = uuid.NewString()
	for k, v := range map[string]string{
		string(keyRunID):  c.runID,
		string(keySource): source,
		string(keyTarget): target,
	} {
		if err := meta.Put([]byte(k), []byte(v)); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the checkpoint file.
func (c *Checkpoint) Close() error {
	return c.db.Close()
}

// RunID identifies the run that created this checkpoint.
func (c *Checkpoint) RunID() string {
	return c.runID
}

func indexKey(i int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(i))
	return k
}

// SaveArticle records the translated article at input index i.
func (c *Checkpoint) SaveArticle(i int, article types.Article) error {
	data, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("encoding article %d: %w", i, err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(articlesBucket).Put(indexKey(i), data)
	})
}

// Articles returns every recorded article keyed by input index.
func (c *Checkpoint) Articles() (map[int]types.Article, error) {
	out := make(map[int]types.Article)
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(articlesBucket).ForEach(func(k, v []byte) error {
			var a types.Article
			if err := json.Unmarshal(v, &a); err != nil {
				return fmt.Errorf("decoding article %x: %w", k, err)
			}
			out[int(binary.BigEndian.Uint64(k))] = a
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}
	return out, nil
}

// Reset discards recorded articles and starts a new run identity.
func (c *Checkpoint) Reset() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(articlesBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		if _, err := tx.CreateBucket(articlesBucket); err != nil {
			return err
		}
		meta := tx.Bucket(metaBucket)
		c.runID = uuid.NewString()
		return meta.Put(keyRunID, []byte(c.runID))
	})
}

// Remove deletes the checkpoint file in dir, if any.
func Remove(dir string) error {
	err := os.Remove(filepath.Join(dir, fileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing checkpoint: %w", err)
	}
	return nil
}
