package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-mvd/mvd/internal/database"
	"github.com/go-mvd/mvd/internal/report/model"
	bolt "go.etcd.io/bbolt"
)

const (
	modelKeys = "model:keys:"
	prefix    = "report:"
)

type FilterFn func(report model.Report) bool

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

func (db *DB) extractKey(key string) string {
	prefixPos := strings.Index(key, prefix)

	return key[prefixPos+len(prefix):]
}

// Keys lists every model id a report bucket exists for.
func (db *DB) Keys() ([]string, error) {
	var bucketKeys []string
	err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(modelKeys))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			bucketKeys = append(bucketKeys, db.extractKey(string(k)))
		}
		return nil
	})

	return bucketKeys, err
}

func (db *DB) Store(_ context.Context, report model.Report) error {
	var b *bolt.Bucket
	bytes, err := json.Marshal(report)
	if err != nil {
		return err
	}

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b = tx.Bucket([]byte(prefix + report.ModelID))
		if b == nil {
			b, err = tx.CreateBucket([]byte(prefix + report.ModelID))
			if err != nil {
				return fmt.Errorf("create bucket: %w", err)
			}
		}
		if err := b.Put([]byte(report.ID.String()), bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}
		b = tx.Bucket([]byte(modelKeys))
		if b == nil {
			b, err = tx.CreateBucket([]byte(modelKeys))
			if err != nil {
				return fmt.Errorf("unable create model keys bucket: %w", err)
			}
		}
		if err := b.Put([]byte(prefix+report.ModelID), []byte{0x0}); err != nil {
			return fmt.Errorf("unable put to model keys bucket: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %v", err)
	}

	return nil
}

func (db *DB) AppendMany(_ context.Context, reports []model.Report) error {
	var b *bolt.Bucket
	if err := db.sDB.DB.Batch(func(tx *bolt.Tx) error {
		for _, report := range reports {
			b = tx.Bucket([]byte(prefix + report.ModelID))
			if b == nil {
				modelBucket, err := tx.CreateBucket([]byte(prefix + report.ModelID))
				if err != nil {
					return fmt.Errorf("create bucket: %w", err)
				}
				b = modelBucket
			}
			bytes, err := json.Marshal(report)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(report.ID.String()), bytes); err != nil {
				return fmt.Errorf("put to bucket error: %w", err)
			}
			b = tx.Bucket([]byte(modelKeys))
			if b == nil {
				keysBucket, err := tx.CreateBucket([]byte(modelKeys))
				if err != nil {
					return fmt.Errorf("unable create model keys bucket: %w", err)
				}
				b = keysBucket
			}
			if err := b.Put([]byte(prefix+report.ModelID), []byte{0x0}); err != nil {
				return fmt.Errorf("unable put to model keys bucket: %w", err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %v", err)
	}

	return nil
}

func (db *DB) DeleteMany(_ context.Context, reports []model.Report) error {
	var b *bolt.Bucket
	if err := db.sDB.DB.Batch(func(tx *bolt.Tx) error {
		for _, report := range reports {
			b = tx.Bucket([]byte(prefix + report.ModelID))
			if b == nil {
				continue
			}
			if err := b.Delete([]byte(report.ID.String())); err != nil {
				return fmt.Errorf("unable delete: %w", err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %v", err)
	}

	return nil
}

func (db *DB) Delete(_ context.Context, report model.Report) error {
	var b *bolt.Bucket
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b = tx.Bucket([]byte(prefix + report.ModelID))
		if b == nil {
			return nil
		}

		return b.Delete([]byte(report.ID.String()))
	}); err != nil {
		return fmt.Errorf("update transaction error: %v", err)
	}

	return nil
}

func (db *DB) FindAll(_ context.Context, filter FilterFn) ([]model.Report, error) {
	var (
		keys    []string
		reports []model.Report
	)
	err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(modelKeys))
		if b == nil {
			return nil
		}

		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, string(k))
		}

		for _, key := range keys {
			b := tx.Bucket([]byte(key))
			if b == nil {
				continue
			}
			c := b.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				var r model.Report
				if err := json.Unmarshal(v, &r); err != nil {
					return fmt.Errorf("report unmarshal error, %q", err)
				}
				if filter == nil || filter(r) {
					reports = append(reports, r)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view transaction error: %v", err)
	}

	return reports, nil
}

func (db *DB) CountByModel(modelID string) (int, error) {
	var length int
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(prefix + modelID))
		if b == nil {
			length = 0
			return nil
		}
		stats := b.Stats()
		length = stats.KeyN
		return nil
	}); err != nil {
		return 0, fmt.Errorf("view transaction error: %v", err)
	}

	return length, nil
}

func (db *DB) FindByModel(modelID string, filter FilterFn) ([]model.Report, error) {
	var list []model.Report
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(prefix + modelID))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var report model.Report
			if err := json.Unmarshal(v, &report); err != nil {
				return fmt.Errorf("json unmarshal error, %q", err)
			}
			if filter == nil || filter(report) {
				list = append(list, report)
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %v", err)
	}

	return list, nil
}
