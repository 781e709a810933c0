package nftmarket

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/EllipX/libnftmarket/nftintf"
	"github.com/EllipX/libnftmarket/nftmsg"
)

// MintResponseId tags the mint request issued by PurchaseLazy so its
// completion callback can be matched back to this flow.
const MintResponseId uint64 = 1

// mintRequest is the persisted pending side of the lazy mint two-phase
// flow: written before the mint request is dispatched, consulted and
// cleared by Reply. At most one request is outstanding at a time.
type mintRequest struct {
	Id       uint64    `gorm:"primaryKey"`
	TokenId  string    `gorm:"index"`
	Buyer    string    `gorm:"index"`
	Contract string
	Created  time.Time `gorm:"autoCreateTime"`
}

// PurchaseLazy consumes the lazy listing and issues a mint request for the
// buyer against the promised contract, requesting a completion callback
// whether the mint succeeds or fails. The listing and the pending record
// are written in the same transaction as the dispatch, so a failed mint
// restores the listing.
func (m *Marketplace) PurchaseLazy(e nftintf.Env, buyer, tokenId string) (*nftmsg.Response, error) {
	var lazy *LazyNft
	if err := e.FirstWhere(&lazy, map[string]any{"TokenId": tokenId}); err != nil {
		return nil, err
	}

	if err := e.Delete(&LazyNft{TokenId: tokenId}); err != nil {
		return nil, err
	}

	var old *mintRequest
	err := e.FirstId(&old, MintResponseId)
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	req := &mintRequest{
		Id:       MintResponseId,
		TokenId:  tokenId,
		Buyer:    buyer,
		Contract: lazy.Contract,
	}
	if err := e.Create(req); err != nil {
		return nil, err
	}

	return nftmsg.NewResponse().
		AddMessage(&nftmsg.Message{
			To:      lazy.Contract,
			Op:      &nftmsg.MintMsg{TokenId: tokenId, Owner: buyer},
			ReplyId: MintResponseId,
		}).
		AddAttribute("action", "lazy_mint"), nil
}

// Reply resumes a suspended lazy mint. Anything other than a successful
// mint confirmation for a known pending request is InvalidReply, which
// aborts the whole purchase.
func (m *Marketplace) Reply(e nftintf.Env, rep *nftmsg.Reply) (*nftmsg.Response, error) {
	if rep.Id != MintResponseId {
		return nil, ErrInvalidReply
	}

	var req *mintRequest
	if err := e.FirstId(&req, rep.Id); err != nil {
		return nil, ErrInvalidReply
	}
	if err := e.Delete(&mintRequest{Id: rep.Id}); err != nil {
		return nil, err
	}

	if rep.Err != "" || rep.Result == nil {
		return nil, ErrInvalidReply
	}
	if action, ok := rep.Result.Attribute("action"); !ok || action != "mint" {
		return nil, ErrInvalidReply
	}

	e.Emitter().Emit(context.Background(), "market:lazy_mint", req.TokenId, req.Buyer)

	// propagate the mint's attributes as this operation's own
	res := nftmsg.NewResponse()
	res.Attributes = append(res.Attributes, rep.Result.Attributes...)
	return res, nil
}
