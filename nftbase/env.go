package nftbase

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/EllipX/ellipxobj"
	"github.com/EllipX/libnftmarket/nftintf"
	"github.com/EllipX/libnftmarket/nftmarket"
	"github.com/EllipX/libnftmarket/nftmsg"
	"github.com/EllipX/libnftmarket/nftregistry"
	"github.com/KarpelesLab/apirouter"
	"github.com/KarpelesLab/emitter"
	_ "github.com/glebarez/go-sqlite"
	bolt "go.etcd.io/bbolt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Default addresses the two contracts are bound to on the router. A host
// overriding these must re-register the handlers and the current items.
const (
	RegistryAddress = "0x0000000000000000000000000000000000000721"
	MarketAddress   = "0x0000000000000000000000000000000000000845"
)

type env struct {
	context.Context
	dataDir string
	db      *bolt.DB
	sql     *gorm.DB
	em      *emitter.Hub
}

func InitEnv(dataDir string) (nftintf.Env, error) {
	e := &env{Context: context.Background(), dataDir: dataDir, em: emitter.New()}
	if err := e.init(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *env) init() error {
	var err error

	// make sure dataDir exists and is a directory
	if st, err := os.Stat(e.dataDir); err != nil {
		err = os.MkdirAll(e.dataDir, 0755)
		if err != nil {
			return err
		}
	} else if !st.IsDir() {
		return errors.New("dataDir exists but is not a directory")
	}

	// open bolt db
	e.db, err = bolt.Open(filepath.Join(e.dataDir, "data.db"), 0600, nil)
	if err != nil {
		return err
	}

	currentVersion := []byte{0, 0, 0, 1}

	if v, err := e.DBSimpleGet([]byte("info"), []byte("version")); err == nil && bytes.Equal(v, currentVersion) {
		// all good
	} else {
		e.DBSimpleSet([]byte("info"), []byte("version"), currentVersion)
	}

	if _, err := e.DBSimpleGet([]byte("info"), []byte("first_run")); err != nil {
		// first run?
		now := ellipxobj.NewTimeId().Bytes(nil)
		e.DBSimpleSet([]byte("info"), []byte("first_run"), now)
	}

	// open sql database
	e.sql, err = gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: filepath.Join(e.dataDir, "sql.db") + "?_pragma=journal_mode(WAL)"}), &gorm.Config{NamingStrategy: schema.NamingStrategy{SingularTable: true, NoLowerCase: true}})
	if err != nil {
		return err
	}

	// create tables
	e.sql.AutoMigrate(&currentItem{})
	e.sql.AutoMigrate(&bankAccount{})
	e.sql.AutoMigrate(&nftmsg.OpLog{})
	nftregistry.InitEnv(e)
	nftmarket.InitEnv(e)

	// bind the contracts to their default addresses
	if _, err := e.GetCurrent("registry"); err != nil {
		e.SetCurrent("registry", RegistryAddress)
	}
	if _, err := e.GetCurrent("market"); err != nil {
		e.SetCurrent("market", MarketAddress)
	}

	go e.handleNftEvent("nft:mint", e.em.On("nft:mint"))
	go e.handleNftEvent("nft:transfer", e.em.On("nft:transfer"))
	go e.handleNftEvent("market:receive", e.em.On("market:receive"))
	go e.handleNftEvent("market:purchase", e.em.On("market:purchase"))
	go e.handleNftEvent("market:lazy_mint", e.em.On("market:lazy_mint"))

	return nil
}

// DefaultRouter builds the router for an env: both contracts at their
// current addresses, funds moving through the env's bank ledger.
func DefaultRouter(e nftintf.Env) (*nftmsg.Router, error) {
	registryAddr, err := e.GetCurrent("registry")
	if err != nil {
		return nil, err
	}
	marketAddr, err := e.GetCurrent("market")
	if err != nil {
		return nil, err
	}

	r := nftmsg.NewRouter(&ledgerBank{})
	r.Register(registryAddr, nftregistry.New(registryAddr))
	r.Register(marketAddr, nftmarket.New(marketAddr))
	return r, nil
}

func (e *env) Emitter() *emitter.Hub {
	return e.em
}

func (e *env) ListHelper(ctx context.Context, target any, sort string, searchKey ...string) error {
	var c *apirouter.Context
	if ctx != nil {
		ctx.Value(&c)
	}

	tx := e.sql
	if c != nil {
		tx = tx.Scopes(c.Paginate(50))
	}
	if sort != "" {
		tx = tx.Order(sort)
	}

	if len(searchKey) > 0 && c != nil {
		where := make(map[string]any)
		for _, k := range searchKey {
			if v := c.GetParam(k); v != nil {
				where[k] = v
			}
		}
		if len(where) > 0 {
			tx = tx.Where(where)
		}
	}

	tx = tx.Find(target)
	return tx.Error
}
