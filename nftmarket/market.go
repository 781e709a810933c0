package nftmarket

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/EllipX/libnftmarket/nftintf"
	"github.com/EllipX/libnftmarket/nftmsg"
	"github.com/EllipX/libnftmarket/nftutil"
	"github.com/KarpelesLab/pjson"
	"github.com/fxamacker/cbor/v2"
)

var (
	marketBucket = []byte("market")
	rolesKey     = []byte("roles")
)

type roles struct {
	Owner string `json:"owner"`
}

// Marketplace implements the escrow sale and lazy mint contract. All state
// lives in the Env; the struct only carries the bound address.
type Marketplace struct {
	Addr string
}

func New(addr string) *Marketplace {
	return &Marketplace{Addr: addr}
}

func (m *Marketplace) Execute(e nftintf.Env, info *nftmsg.CallInfo, op any) (*nftmsg.Response, error) {
	switch msg := op.(type) {
	case *nftmsg.InitMarketMsg:
		return m.Initialize(e, info.Sender)
	case *nftmsg.ReceiveNftMsg:
		return m.ReceiveNft(e, info.Sender, msg)
	case *nftmsg.ReceiveLazyNftMsg:
		return m.ListLazy(e, msg.Contract, msg.TokenId)
	case *nftmsg.RemoveSaleMsg:
		return m.RemoveSale(e, info.Sender, msg.TokenId)
	case *nftmsg.PurchaseMsg:
		return m.Purchase(e, info, msg.TokenId)
	case *nftmsg.PurchaseLazyMsg:
		return m.PurchaseLazy(e, info.Sender, msg.TokenId)
	default:
		return nil, fmt.Errorf("unsupported marketplace operation %T", op)
	}
}

func (m *Marketplace) Initialize(e nftintf.Env, caller string) (*nftmsg.Response, error) {
	buf, err := cbor.Marshal(&roles{Owner: caller})
	if err != nil {
		return nil, err
	}
	if err := e.DBSimpleSet(marketBucket, rolesKey, buf); err != nil {
		return nil, err
	}
	return nftmsg.NewResponse(), nil
}

// ReceiveNft handles the registry's notification after a token lands in
// marketplace custody; the payload carries the sale terms.
func (m *Marketplace) ReceiveNft(e nftintf.Env, senderContract string, msg *nftmsg.ReceiveNftMsg) (*nftmsg.Response, error) {
	var data saleData
	if err := pjson.Unmarshal(msg.Msg, &data); err != nil {
		return nil, fmt.Errorf("failed to decode sale terms: %w", err)
	}
	if data.Price == nil {
		return nil, fmt.Errorf("failed to decode sale terms: missing price")
	}

	owner, err := nftutil.ValidateAddress(msg.Sender)
	if err != nil {
		return nil, err
	}

	var old *Sale
	err = e.FirstWhere(&old, map[string]any{"TokenId": msg.TokenId})
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	sale := &Sale{
		TokenId:  msg.TokenId,
		Owner:    owner,
		Contract: senderContract,
		Price:    data.Price,
	}
	if err := e.Create(sale); err != nil {
		return nil, err
	}
	e.Emitter().Emit(context.Background(), "market:receive", sale)

	return nftmsg.NewResponse().
		AddAttribute("action", "receive").
		AddAttribute("token_id", msg.TokenId).
		AddAttribute("owner", owner).
		AddAttribute("buy_token", data.Price.Denom).
		AddAttribute("buy_price", strconv.FormatUint(data.Price.Amount, 10)), nil
}

// ListLazy records a promise to mint the token id on the given contract
// when it gets purchased.
func (m *Marketplace) ListLazy(e nftintf.Env, contract, tokenId string) (*nftmsg.Response, error) {
	contract, err := nftutil.ValidateAddress(contract)
	if err != nil {
		return nil, err
	}

	var old *LazyNft
	err = e.FirstWhere(&old, map[string]any{"TokenId": tokenId})
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	lazy := &LazyNft{TokenId: tokenId, Key: tokenId, Contract: contract}
	if err := e.Create(lazy); err != nil {
		return nil, err
	}

	return nftmsg.NewResponse(), nil
}

// RemoveSale cancels a listing. The escrowed token goes back to the
// original owner in the same operation, so custody never strands here.
func (m *Marketplace) RemoveSale(e nftintf.Env, caller, tokenId string) (*nftmsg.Response, error) {
	sale, err := m.loadSale(e, tokenId)
	if err != nil {
		return nil, err
	}

	if caller != sale.Owner {
		return nil, ErrUnauthorized
	}

	if err := e.Delete(&Sale{TokenId: tokenId}); err != nil {
		return nil, err
	}

	return nftmsg.NewResponse().
		AddMessage(&nftmsg.Message{
			To: sale.Contract,
			Op: &nftmsg.TransferNftMsg{TokenId: tokenId, To: sale.Owner},
		}).
		AddAttribute("action", "remove_sale").
		AddAttribute("token_id", sale.TokenId), nil
}

// Purchase settles a listing against the attached funds. Exact-match only:
// no change-making, no partial payment, no overpayment tolerance. The Sale
// row is removed before the outbound effects are dispatched, so settlement
// is at-most-once.
func (m *Marketplace) Purchase(e nftintf.Env, info *nftmsg.CallInfo, tokenId string) (*nftmsg.Response, error) {
	sale, err := m.loadSale(e, tokenId)
	if err != nil {
		return nil, err
	}

	var coin *nftmsg.Coin
	for i := range info.Funds {
		if info.Funds[i].Denom == sale.Price.Denom {
			coin = &info.Funds[i]
			break
		}
	}
	if coin == nil || coin.Amount != sale.Price.Amount {
		return nil, ErrInvalidDeposit
	}

	if err := e.Delete(&Sale{TokenId: tokenId}); err != nil {
		return nil, err
	}
	e.Emitter().Emit(context.Background(), "market:purchase", sale, info.Sender)

	return nftmsg.NewResponse().
		AddMessage(&nftmsg.Message{
			To:    sale.Owner,
			Funds: []nftmsg.Coin{*coin},
		}).
		AddMessage(&nftmsg.Message{
			To: sale.Contract,
			Op: &nftmsg.TransferNftMsg{TokenId: tokenId, To: info.Sender},
		}).
		AddAttribute("action", "purchase").
		AddAttribute("buyer", info.Sender).
		AddAttribute("token_id", tokenId).
		AddAttribute("buy_token", coin.Denom).
		AddAttribute("buy_price", strconv.FormatUint(coin.Amount, 10)), nil
}

type SalesResponse struct {
	Sales []*Sale `json:"sales"`
}

// GetSales returns every listing in ascending token id order.
func (m *Marketplace) GetSales(e nftintf.Env) (*SalesResponse, error) {
	var sales []*Sale
	if err := e.FindAfter(&sales, nil, "TokenId", "", 0); err != nil {
		return nil, err
	}
	return &SalesResponse{Sales: sales}, nil
}

func (m *Marketplace) loadSale(e nftintf.Env, tokenId string) (*Sale, error) {
	var sale *Sale
	if err := e.FirstWhere(&sale, map[string]any{"TokenId": tokenId}); err != nil {
		return nil, fmt.Errorf("sale %s: %w", tokenId, err)
	}
	return sale, nil
}
