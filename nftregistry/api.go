package nftregistry

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
	pobj.RegisterActions[Token]("Token",
		&pobj.ObjectActions{
			Fetch: pobj.Static(apiFetchToken),
			List:  typutil.Func(apiListToken),
		},
	)
	pobj.RegisterStatic("Token:mint", apiMintToken)
	pobj.RegisterStatic("Token:transfer", apiTransferToken)
	pobj.RegisterStatic("Token:send", apiSendToken)
	pobj.RegisterStatic("Registry:initialize", apiInitializeRegistry)
	pobj.RegisterStatic("Registry:info", apiRegistryInfo)
	pobj.RegisterStatic("Registry:numTokens", apiNumTokens)
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
	addr, err := e.GetCurrent("registry")
	if err != nil {
		return nil, nil, "", errors.New("no registry contract configured")
	}
	return e, r, addr, nil
}

func apiFetchToken(ctx *apirouter.Context, in struct{ Id string }) (any, error) {
	e := nftintf.GetEnv(ctx)
	if e == nil {
		return nil, errors.New("failed to get env")
	}
	return nftintf.ByPrimaryKey[Token](e, in.Id)
}

func apiListToken(ctx *apirouter.Context) (any, error) {
	return nftintf.ListHelper[Token](ctx, "TokenId ASC", "Owner")
}

func apiMintToken(ctx *apirouter.Context, in struct {
	Caller   string
	TokenId  string
	Owner    string
	TokenUri *string
}) (any, error) {
	e, r, addr, err := apiEnv(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := nftutil.Caller(e, in.Caller)
	if err != nil {
		return nil, err
	}
	return r.Execute(e, caller, addr, nil, &nftmsg.MintMsg{TokenId: in.TokenId, Owner: in.Owner, TokenUri: in.TokenUri})
}

func apiTransferToken(ctx *apirouter.Context, in struct {
	Caller  string
	TokenId string
	To      string
}) (any, error) {
	e, r, addr, err := apiEnv(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := nftutil.Caller(e, in.Caller)
	if err != nil {
		return nil, err
	}
	return r.Execute(e, caller, addr, nil, &nftmsg.TransferNftMsg{TokenId: in.TokenId, To: in.To})
}

func apiSendToken(ctx *apirouter.Context, in struct {
	Caller   string
	TokenId  string
	Contract string
	Msg      []byte
}) (any, error) {
	e, r, addr, err := apiEnv(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := nftutil.Caller(e, in.Caller)
	if err != nil {
		return nil, err
	}
	return r.Execute(e, caller, addr, nil, &nftmsg.SendNftMsg{TokenId: in.TokenId, Contract: in.Contract, Msg: in.Msg})
}

func apiInitializeRegistry(ctx *apirouter.Context, in struct {
	Caller string
	Name   string
	Symbol string
	Minter string
}) (any, error) {
	e, r, addr, err := apiEnv(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := nftutil.Caller(e, in.Caller)
	if err != nil {
		return nil, err
	}
	return r.Execute(e, caller, addr, nil, &nftmsg.InitRegistryMsg{Name: in.Name, Symbol: in.Symbol, Minter: in.Minter})
}

func apiRegistryInfo(ctx *apirouter.Context) (any, error) {
	e, _, addr, err := apiEnv(ctx)
	if err != nil {
		return nil, err
	}
	return New(addr).GetContractInfo(e)
}

func apiNumTokens(ctx *apirouter.Context) (any, error) {
	e, _, addr, err := apiEnv(ctx)
	if err != nil {
		return nil, err
	}
	return New(addr).GetNumTokens(e)
}
