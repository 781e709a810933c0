package nftmarket

import (
	"errors"

	"github.com/EllipX/libnftmarket/nftintf"
	"github.com/EllipX/libnftmarket/nftmsg"
	"github.com/EllipX/libnftmarket/nftutil"
	"github.com/KarpelesLab/apirouter"
	"github.com/KarpelesLab/pobj"
	"github.com/KarpelesLab/typutil"
)

func init() {
	pobj.RegisterActions[Sale]("Sale",
		&pobj.ObjectActions{
			Fetch: pobj.Static(apiFetchSale),
			List:  typutil.Func(apiListSale),
		},
	)
	pobj.RegisterStatic("Market:initialize", apiInitializeMarket)
	pobj.RegisterStatic("Market:listLazy", apiListLazy)
	pobj.RegisterStatic("Market:removeSale", apiRemoveSale)
	pobj.RegisterStatic("Market:purchase", apiPurchase)
	pobj.RegisterStatic("Market:purchaseLazy", apiPurchaseLazy)
	pobj.RegisterStatic("Market:sales", apiSales)
}

func apiEnv(ctx *apirouter.Context) (nftintf.Env, *nftmsg.Router, string, error) {
	e := nftintf.GetEnv(ctx)
	if e == nil {
		return nil, nil, "", errors.New("failed to get env")
	}
	r := nftmsg.GetRouter(ctx)
	if r == nil {
		return nil, nil, "", errors.New("failed to get router")
	}
	addr, err := e.GetCurrent("market")
	if err != nil {
		return nil, nil, "", errors.New("no marketplace contract configured")
	}
	return e, r, addr, nil
}

func apiFetchSale(ctx *apirouter.Context, in struct{ Id string }) (any, error) {
	e := nftintf.GetEnv(ctx)
	if e == nil {
		return nil, errors.New("failed to get env")
	}
	return nftintf.ByPrimaryKey[Sale](e, in.Id)
}

func apiListSale(ctx *apirouter.Context) (any, error) {
	return nftintf.ListHelper[Sale](ctx, "TokenId ASC", "Owner")
}

func apiInitializeMarket(ctx *apirouter.Context, in struct{ Caller string }) (any, error) {
	e, r, addr, err := apiEnv(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := nftutil.Caller(e, in.Caller)
	if err != nil {
		return nil, err
	}
	return r.Execute(e, caller, addr, nil, &nftmsg.InitMarketMsg{})
}

func apiListLazy(ctx *apirouter.Context, in struct {
	Caller   string
	Contract string
	TokenId  string
}) (any, error) {
	e, r, addr, err := apiEnv(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := nftutil.Caller(e, in.Caller)
	if err != nil {
		return nil, err
	}
	return r.Execute(e, caller, addr, nil, &nftmsg.ReceiveLazyNftMsg{Contract: in.Contract, TokenId: in.TokenId})
}

func apiRemoveSale(ctx *apirouter.Context, in struct {
	Caller  string
	TokenId string
}) (any, error) {
	e, r, addr, err := apiEnv(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := nftutil.Caller(e, in.Caller)
	if err != nil {
		return nil, err
	}
	return r.Execute(e, caller, addr, nil, &nftmsg.RemoveSaleMsg{TokenId: in.TokenId})
}

func apiPurchase(ctx *apirouter.Context, in struct {
	Caller  string
	TokenId string
	Denom   string
	Amount  uint64
}) (any, error) {
	e, r, addr, err := apiEnv(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := nftutil.Caller(e, in.Caller)
	if err != nil {
		return nil, err
	}
	funds := []nftmsg.Coin{{Denom: in.Denom, Amount: in.Amount}}
	return r.Execute(e, caller, addr, funds, &nftmsg.PurchaseMsg{TokenId: in.TokenId})
}

func apiPurchaseLazy(ctx *apirouter.Context, in struct {
	Caller  string
	TokenId string
}) (any, error) {
	e, r, addr, err := apiEnv(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := nftutil.Caller(e, in.Caller)
	if err != nil {
		return nil, err
	}
	return r.Execute(e, caller, addr, nil, &nftmsg.PurchaseLazyMsg{TokenId: in.TokenId})
}

func apiSales(ctx *apirouter.Context) (any, error) {
	e, _, addr, err := apiEnv(ctx)
	if err != nil {
		return nil, err
	}
	return New(addr).GetSales(e)
}
