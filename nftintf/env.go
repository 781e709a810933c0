package nftintf

import (
	"context"
	"errors"

	"github.com/KarpelesLab/apirouter"
	"github.com/KarpelesLab/emitter"
)

// Env is the storage and event environment threaded through every
// operation. It is constructed once by nftbase.InitEnv and never kept in a
// package-level variable.
type Env interface {
	Save(obj any) error
	Create(obj any) error
	Delete(obj any) error
	DeleteWhere(obj any, where map[string]any) error
	DeleteAll(obj any) error
	SetCurrent(k, v string) error
	GetCurrent(k string) (string, error)
	Emitter() *emitter.Hub
	AutoMigrate(obj any)

	// db stuff
	DBSimpleGet(bucket, key []byte) (r []byte, err error)
	DBSimpleDel(bucket []byte, keys ...[]byte) error
	DBSimpleSet(bucket, key, val []byte) error
	First(res any) error
	FirstId(res, id any) error
	FirstWhere(res any, where map[string]any) error
	Find(res any, where map[string]any) error
	// FindAfter returns rows matching where, ordered ascending on key,
	// strictly after the given bound (exclusive; "" means no bound),
	// truncated to limit (<=0 means no limit).
	FindAfter(res any, where map[string]any, key, after string, limit int) error
	ListHelper(ctx context.Context, target any, sort string, searchKey ...string) error
	Count(obj any) int64
	CountWithError(obj any) (int64, error)

	// Transaction runs fn inside one atomic unit; every write made through
	// the Env passed to fn is discarded if fn returns an error. Nested
	// calls create savepoints.
	Transaction(fn func(Env) error) error
}

func GetEnv(ctx context.Context) Env {
	var c *apirouter.Context
	ctx.Value(&c)
	if c == nil {
		return nil
	}
	v, ok := c.GetObject("@env").(Env)
	if ok {
		return v
	}
	return nil
}

func ByPrimaryKey[T any](e Env, id any) (*T, error) {
	var res *T
	err := e.FirstId(&res, id)
	return res, err
}

func ListHelper[T any](ctx context.Context, sort string, searchKey ...string) (any, error) {
	var res []*T
	e := GetEnv(ctx)
	if e == nil {
		return nil, errors.New("failed to get env")
	}
	err := e.ListHelper(ctx, &res, sort, searchKey...)
	return res, err
}
