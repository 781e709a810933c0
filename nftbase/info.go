package nftbase

import (
	"context"
	"errors"

	"github.com/EllipX/ellipxobj"
	"github.com/EllipX/libnftmarket/nftintf"
	"github.com/EllipX/libnftmarket/nftmarket"
	"github.com/EllipX/libnftmarket/nftregistry"
	"github.com/EllipX/libnftmarket/nftutil"
	"github.com/KarpelesLab/apirouter"
	"github.com/KarpelesLab/pobj"
)

var (
	dateTag string
	gitTag  string
)

func init() {
	pobj.RegisterStatic("Info:ping", infoPing)
	pobj.RegisterStatic("Info:version", infoVersion)
	pobj.RegisterStatic("Info:first_run", infoFirstRun)
	pobj.RegisterStatic("Info:status", infoStatus)
	pobj.RegisterStatic("Info:setCaller", infoSetCaller)
}

func infoPing() (any, error) {
	return "pong", nil
}

func infoVersion() (any, error) {
	return map[string]any{
		"dateTag": dateTag,
		"gitTag":  gitTag,
	}, nil
}

func infoFirstRun(ctx context.Context) (any, error) {
	e := apirouter.GetObject[env](ctx, "@env")
	if e == nil {
		return nil, errors.New("failed to get env")
	}

	v, err := e.DBSimpleGet([]byte("info"), []byte("first_run"))
	if err != nil {
		return nil, err
	}
	t := &ellipxobj.TimeId{}
	err = t.UnmarshalBinary(v)
	return t, err
}

func infoStatus(ctx context.Context) (any, error) {
	e := nftintf.GetEnv(ctx)
	if e == nil {
		return nil, errors.New("failed to get env")
	}

	tokens, err := e.CountWithError(&nftregistry.Token{})
	if err != nil {
		return nil, err
	}
	sales, err := e.CountWithError(&nftmarket.Sale{})
	if err != nil {
		return nil, err
	}
	lazy, err := e.CountWithError(&nftmarket.LazyNft{})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"tokens":     tokens,
		"sales":      sales,
		"lazy_sales": lazy,
	}, nil
}

func infoSetCaller(ctx context.Context, in struct{ Address string }) (any, error) {
	e := nftintf.GetEnv(ctx)
	if e == nil {
		return nil, errors.New("failed to get env")
	}

	addr, err := nftutil.ValidateAddress(in.Address)
	if err != nil {
		return nil, err
	}
	if err := e.SetCurrent("caller", addr); err != nil {
		return nil, err
	}
	return map[string]any{"caller": addr}, nil
}
