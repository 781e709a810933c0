package nftbase

import (
	"errors"
	"os"

	"github.com/EllipX/libnftmarket/nftintf"
)

// InitTempEnv builds a throwaway environment backed by a temporary
// directory, for tests.
func InitTempEnv() (nftintf.Env, error) {
	dir, err := os.MkdirTemp("", "libnftmarket_test_*")
	if err != nil {
		return nil, err
	}
	e, err := InitEnv(dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return e, nil
}

// CleanupTempEnv closes a temporary environment's databases and removes its
// data directory.
func CleanupTempEnv(v nftintf.Env) error {
	e, ok := v.(*env)
	if !ok {
		return errors.New("not a valid env")
	}

	if e.db != nil {
		e.db.Close()
	}
	if e.sql != nil {
		if sqlDB, err := e.sql.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return os.RemoveAll(e.dataDir)
}
