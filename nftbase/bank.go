package nftbase

import (
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/EllipX/libnftmarket/nftintf"
	"github.com/EllipX/libnftmarket/nftmsg"
	"github.com/KarpelesLab/apirouter"
)

var ErrInsufficientFunds = &apirouter.Error{Message: "insufficient funds", Token: "error_insufficient_funds", Code: http.StatusPaymentRequired}

// bankAccount holds the balance of one address in one denom. Attached
// payments move through this ledger inside the same transaction as the
// operation that carries them.
type bankAccount struct {
	Address string    `json:"address" gorm:"primaryKey"`
	Denom   string    `json:"denom" gorm:"primaryKey"`
	Amount  uint64    `json:"amount"`
	Updated time.Time `gorm:"autoUpdateTime"`
}

type ledgerBank struct{}

func (ledgerBank) Transfer(e nftintf.Env, from, to string, coins []nftmsg.Coin) error {
	for _, c := range coins {
		if c.Amount == 0 {
			continue
		}

		var src *bankAccount
		err := e.FirstWhere(&src, map[string]any{"Address": from, "Denom": c.Denom})
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return ErrInsufficientFunds
			}
			return err
		}
		if src.Amount < c.Amount {
			return ErrInsufficientFunds
		}
		src.Amount -= c.Amount
		if err := e.Save(src); err != nil {
			return err
		}

		if err := Credit(e, to, c); err != nil {
			return err
		}
	}
	return nil
}

// Credit adds funds to an address, creating the account if needed. Hosts
// use this to seed buyer balances.
func Credit(e nftintf.Env, addr string, c nftmsg.Coin) error {
	var acct *bankAccount
	err := e.FirstWhere(&acct, map[string]any{"Address": addr, "Denom": c.Denom})
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return e.Create(&bankAccount{Address: addr, Denom: c.Denom, Amount: c.Amount})
	}
	acct.Amount += c.Amount
	return e.Save(acct)
}

// Balance returns the funds an address holds in a denom, zero if none.
func Balance(e nftintf.Env, addr, denom string) (uint64, error) {
	var acct *bankAccount
	err := e.FirstWhere(&acct, map[string]any{"Address": addr, "Denom": denom})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	return acct.Amount, nil
}
