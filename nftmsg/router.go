package nftmsg

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/EllipX/libnftmarket/nftintf"
	"github.com/KarpelesLab/apirouter"
)

// Handler is a contract bound to an address on the router. Execute performs
// one operation; Reply receives the completion callback for a message the
// contract sent with a ReplyId.
type Handler interface {
	Execute(e nftintf.Env, info *CallInfo, op any) (*Response, error)
	Reply(e nftintf.Env, rep *Reply) (*Response, error)
}

// Bank moves attached funds between addresses. Transfers happen inside the
// same transaction as the operation that caused them.
type Bank interface {
	Transfer(e nftintf.Env, from, to string, coins []Coin) error
}

// Router binds contract handlers to their addresses and delivers outbound
// messages and completion callbacks. It is built once at startup and passed
// to the host alongside the Env.
type Router struct {
	handlers map[string]Handler
	bank     Bank
}

func NewRouter(bank Bank) *Router {
	return &Router{handlers: make(map[string]Handler), bank: bank}
}

func (r *Router) Register(addr string, h Handler) {
	r.handlers[addr] = h
}

// Execute runs one operation against the contract at the given address.
// The whole call, including every outbound message and completion callback
// it triggers, runs inside a single transaction: an error anywhere discards
// all writes.
func (r *Router) Execute(e nftintf.Env, sender, contract string, funds []Coin, op any) (*Response, error) {
	var res *Response
	err := e.Transaction(func(te nftintf.Env) error {
		var err error
		res, err = r.execute(te, sender, contract, funds, op)
		if err != nil {
			return err
		}
		return r.logOp(te, contract, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Router) execute(e nftintf.Env, sender, contract string, funds []Coin, op any) (*Response, error) {
	h, ok := r.handlers[contract]
	if !ok {
		return nil, fmt.Errorf("no contract at %s: %w", contract, fs.ErrNotExist)
	}

	if len(funds) > 0 {
		if err := r.transfer(e, sender, contract, funds); err != nil {
			return nil, err
		}
	}

	res, err := h.Execute(e, &CallInfo{Sender: sender, Funds: funds}, op)
	if err != nil {
		return nil, err
	}

	for _, m := range res.Messages {
		if m.Op == nil {
			// plain fund transfer
			if err := r.transfer(e, contract, m.To, m.Funds); err != nil {
				return nil, err
			}
			continue
		}
		if m.ReplyId != 0 {
			// execute in a savepoint so a failed call leaves no writes
			// behind, then deliver the outcome to the sender's Reply
			var sub *Response
			serr := e.Transaction(func(te nftintf.Env) error {
				var err error
				sub, err = r.execute(te, contract, m.To, m.Funds, m.Op)
				return err
			})
			rep := &Reply{Id: m.ReplyId}
			if serr != nil {
				rep.Err = serr.Error()
			} else {
				rep.Result = sub
			}
			rres, err := h.Reply(e, rep)
			if err != nil {
				return nil, err
			}
			if rres != nil {
				res.Attributes = append(res.Attributes, rres.Attributes...)
			}
			continue
		}
		if _, err := r.execute(e, contract, m.To, m.Funds, m.Op); err != nil {
			return nil, err
		}
	}

	return res, nil
}

func (r *Router) transfer(e nftintf.Env, from, to string, coins []Coin) error {
	if len(coins) == 0 {
		return nil
	}
	if r.bank == nil {
		return fmt.Errorf("no bank configured for fund transfer to %s", to)
	}
	return r.bank.Transfer(e, from, to, coins)
}

func GetRouter(ctx context.Context) *Router {
	var c *apirouter.Context
	ctx.Value(&c)
	if c == nil {
		return nil
	}
	v, ok := c.GetObject("@router").(*Router)
	if ok {
		return v
	}
	return nil
}
