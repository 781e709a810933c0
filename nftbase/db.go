package nftbase

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/EllipX/libnftmarket/nftintf"
	bolt "go.etcd.io/bbolt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBSimpleGet retrieves a value from the BoltDB key-value store
// Returns the value associated with the given key in the specified bucket
// If the bucket or key doesn't exist, returns fs.ErrNotExist
func (e *env) DBSimpleGet(bucket, key []byte) (r []byte, err error) {
	err = e.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fs.ErrNotExist
		}
		v := b.Get(key)
		if v == nil {
			return fs.ErrNotExist
		}
		r = make([]byte, len(v))
		copy(r, v)
		return nil
	})
	return
}

// DBSimpleDel deletes one or more keys from a bucket in the BoltDB key-value store
// If the bucket doesn't exist, the operation is considered successful
func (e *env) DBSimpleDel(bucket []byte, keys ...[]byte) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		for _, key := range keys {
			if err := b.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// DBSimpleSet stores a key-value pair in the BoltDB key-value store
// Creates the bucket if it doesn't exist
func (e *env) DBSimpleSet(bucket, key, val []byte) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}
		return b.Put(key, val)
	})
}

// FirstId retrieves the first record with the given ID and populates the result
// Translates GORM's ErrRecordNotFound to fs.ErrNotExist for consistent error handling
func (e *env) FirstId(res, id any) error {
	tx := e.sql.First(res, id)

	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return fs.ErrNotExist
		}
		return tx.Error
	}

	return nil
}

// FirstWhere retrieves the first record matching the conditions in the where map
// Translates GORM's ErrRecordNotFound to fs.ErrNotExist for consistent error handling
func (e *env) FirstWhere(res any, where map[string]any) error {
	tx := e.sql.Where(where).First(res)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return fs.ErrNotExist
		}
		return tx.Error
	}
	return nil
}

// Count returns the number of records for a given model type
func (e *env) Count(obj any) int64 {
	var count int64
	e.sql.Model(obj).Count(&count)
	return count
}

// CountWithError returns the number of records for a given model type,
// reporting any database error instead of swallowing it
func (e *env) CountWithError(obj any) (int64, error) {
	var count int64
	tx := e.sql.Model(obj).Count(&count)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return count, nil
}

// Delete removes a record from the database
// The object should contain a primary key value to determine what to delete
func (e *env) Delete(obj any) error {
	tx := e.sql.Delete(obj)
	return tx.Error
}

// AutoMigrate creates or updates the database schema based on the struct definition
func (e *env) AutoMigrate(obj any) {
	e.sql.AutoMigrate(obj)
}

// DeleteAll removes all records of a specific type
func (e *env) DeleteAll(obj any) error {
	tx := e.sql.Where("1 = 1").Delete(obj)
	return tx.Error
}

// DeleteWhere removes records matching the conditions in the where map
func (e *env) DeleteWhere(obj any, where map[string]any) error {
	tx := e.sql.Where(where).Delete(obj)
	return tx.Error
}

// Find retrieves all records matching the conditions in the where map
func (e *env) Find(target any, where map[string]any) error {
	tx := e.sql.Where(where).Find(target)
	return tx.Error
}

// FindAfter retrieves records matching where, ordered ascending on key,
// strictly after the given exclusive bound, truncated to limit entries
func (e *env) FindAfter(res any, where map[string]any, key, after string, limit int) error {
	tx := e.sql
	if len(where) > 0 {
		tx = tx.Where(where)
	}
	if after != "" {
		tx = tx.Where(key+" > ?", after)
	}
	tx = tx.Order(key + " ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	return tx.Find(res).Error
}

// First retrieves the first record for a model
func (e *env) First(target any) error {
	tx := e.sql.First(target)
	return tx.Error
}

// Save creates or updates a record in the database
// Uses OnConflict clause to update all fields if the record already exists
func (e *env) Save(v any) error {
	res := e.sql.Clauses(clause.OnConflict{UpdateAll: true}).Create(v)
	if res.Error != nil {
		return fmt.Errorf("while saving object of type %T: %w", v, res.Error)
	}
	return nil
}

// Create inserts a record, failing if the primary key or a unique index
// already holds the value
func (e *env) Create(v any) error {
	res := e.sql.Create(v)
	if res.Error != nil {
		return fmt.Errorf("while creating object of type %T: %w", v, res.Error)
	}
	return nil
}

// Transaction runs fn inside a database transaction; every write made
// through the derived Env is rolled back if fn returns an error. Nested
// calls use savepoints.
func (e *env) Transaction(fn func(nftintf.Env) error) error {
	return e.sql.Transaction(func(tx *gorm.DB) error {
		e2 := *e
		e2.sql = tx
		return fn(&e2)
	})
}
