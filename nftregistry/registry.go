package nftregistry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/EllipX/libnftmarket/nftintf"
	"github.com/EllipX/libnftmarket/nftmsg"
	"github.com/EllipX/libnftmarket/nftutil"
	"github.com/fxamacker/cbor/v2"
)

var (
	registryBucket  = []byte("registry")
	contractInfoKey = []byte("contract_info")
	rolesKey        = []byte("roles")
)

// ContractInfo is set once at initialization and immutable thereafter.
type ContractInfo struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type roles struct {
	Minter string `json:"minter"`
	Owner  string `json:"owner"`
}

// Registry implements the token registry contract. All state lives in the
// Env; the struct only carries the address the contract is bound to.
type Registry struct {
	Addr string
}

func New(addr string) *Registry {
	return &Registry{Addr: addr}
}

func (r *Registry) Execute(e nftintf.Env, info *nftmsg.CallInfo, op any) (*nftmsg.Response, error) {
	switch msg := op.(type) {
	case *nftmsg.InitRegistryMsg:
		return r.Initialize(e, info.Sender, msg.Name, msg.Symbol, msg.Minter)
	case *nftmsg.MintMsg:
		return r.Mint(e, info.Sender, msg)
	case *nftmsg.TransferNftMsg:
		return r.TransferNft(e, info.Sender, msg.TokenId, msg.To)
	case *nftmsg.SendNftMsg:
		return r.SendNft(e, info.Sender, msg.TokenId, msg.Contract, msg.Msg)
	default:
		return nil, fmt.Errorf("unsupported registry operation %T", op)
	}
}

// Reply is never expected: the registry sends no messages requesting one.
func (r *Registry) Reply(e nftintf.Env, rep *nftmsg.Reply) (*nftmsg.Response, error) {
	return nil, fmt.Errorf("unexpected reply %d for registry", rep.Id)
}

func (r *Registry) Initialize(e nftintf.Env, caller, name, symbol, minter string) (*nftmsg.Response, error) {
	minter, err := nftutil.ValidateAddress(minter)
	if err != nil {
		return nil, err
	}

	if err := putRecord(e, rolesKey, &roles{Minter: minter, Owner: caller}); err != nil {
		return nil, err
	}
	if err := putRecord(e, contractInfoKey, &ContractInfo{Name: name, Symbol: symbol}); err != nil {
		return nil, err
	}

	return nftmsg.NewResponse(), nil
}

func (r *Registry) Mint(e nftintf.Env, caller string, msg *nftmsg.MintMsg) (*nftmsg.Response, error) {
	var rl roles
	if err := getRecord(e, rolesKey, &rl); err != nil {
		return nil, err
	}
	if caller != rl.Minter {
		return nil, ErrUnauthorized
	}

	owner, err := nftutil.ValidateAddress(msg.Owner)
	if err != nil {
		return nil, err
	}

	// insert-if-absent: two mints of the same id can never both succeed
	var old *Token
	err = e.FirstWhere(&old, map[string]any{"TokenId": msg.TokenId})
	if err == nil {
		return nil, ErrTokenExists
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	token := &Token{
		TokenId:  msg.TokenId,
		Owner:    owner,
		TokenUri: msg.TokenUri,
	}
	if err := e.Create(token); err != nil {
		return nil, err
	}
	e.Emitter().Emit(context.Background(), "nft:mint", token)

	uri := ""
	if msg.TokenUri != nil {
		uri = *msg.TokenUri
	}
	return nftmsg.NewResponse().
		AddAttribute("action", "mint").
		AddAttribute("token_id", msg.TokenId).
		AddAttribute("owner", owner).
		AddAttribute("token_uri", uri), nil
}

func (r *Registry) TransferNft(e nftintf.Env, caller, tokenId, to string) (*nftmsg.Response, error) {
	token, err := r.internalTransfer(e, caller, tokenId, to)
	if err != nil {
		return nil, err
	}

	return nftmsg.NewResponse().
		AddAttribute("action", "transfer").
		AddAttribute("receiver", token.Owner).
		AddAttribute("token_id", tokenId), nil
}

// SendNft moves the token into the destination contract's custody, then
// notifies that contract with the sender and the caller-supplied payload.
// Delivery and interpretation are the receiver's concern.
func (r *Registry) SendNft(e nftintf.Env, caller, tokenId, contract string, payload []byte) (*nftmsg.Response, error) {
	token, err := r.internalTransfer(e, caller, tokenId, contract)
	if err != nil {
		return nil, err
	}

	return nftmsg.NewResponse().
		AddMessage(&nftmsg.Message{
			To: token.Owner,
			Op: &nftmsg.ReceiveNftMsg{Sender: caller, TokenId: tokenId, Msg: payload},
		}).
		AddAttribute("action", "transfer").
		AddAttribute("receiver", token.Owner).
		AddAttribute("token_id", tokenId), nil
}

func (r *Registry) internalTransfer(e nftintf.Env, caller, tokenId, to string) (*Token, error) {
	var token *Token
	if err := e.FirstWhere(&token, map[string]any{"TokenId": tokenId}); err != nil {
		return nil, fmt.Errorf("token %s: %w", tokenId, err)
	}

	if token.Owner != caller {
		return nil, ErrUnauthorized
	}

	to, err := nftutil.ValidateAddress(to)
	if err != nil {
		return nil, err
	}

	token.Owner = to
	if err := token.save(e); err != nil {
		return nil, err
	}
	e.Emitter().Emit(context.Background(), "nft:transfer", token)

	return token, nil
}

func putRecord(e nftintf.Env, key []byte, v any) error {
	buf, err := cbor.Marshal(v)
	if err != nil {
		return err
	}
	return e.DBSimpleSet(registryBucket, key, buf)
}

func getRecord(e nftintf.Env, key []byte, v any) error {
	buf, err := e.DBSimpleGet(registryBucket, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("registry not initialized: %w", err)
		}
		return err
	}
	return cbor.Unmarshal(buf, v)
}
