package nfttest

import (
	"strconv"
	"testing"

	"github.com/EllipX/libnftmarket/nftbase"
	"github.com/EllipX/libnftmarket/nftintf"
	"github.com/EllipX/libnftmarket/nftmsg"
)

// Well-formed test addresses, digits only so checksum formatting leaves
// them unchanged.
const (
	Minter   = "0x1111111111111111111111111111111111111111"
	Owner    = "0x2222222222222222222222222222222222222222"
	Stranger = "0x3333333333333333333333333333333333333333"
	Buyer    = "0x4444444444444444444444444444444444444444"
)

const TokenId = "1"

// SetupHost builds a throwaway env with both contracts initialized and
// routed, registered for cleanup on test end.
func SetupHost(t *testing.T) (nftintf.Env, *nftmsg.Router) {
	t.Helper()

	e, err := nftbase.InitTempEnv()
	if err != nil {
		t.Fatalf("failed to init temp env: %v", err)
	}
	t.Cleanup(func() { nftbase.CleanupTempEnv(e) })

	r, err := nftbase.DefaultRouter(e)
	if err != nil {
		t.Fatalf("failed to build router: %v", err)
	}

	_, err = r.Execute(e, Owner, nftbase.RegistryAddress, nil, &nftmsg.InitRegistryMsg{Name: "TestNft", Symbol: "TNFT", Minter: Minter})
	if err != nil {
		t.Fatalf("failed to initialize registry: %v", err)
	}
	_, err = r.Execute(e, Owner, nftbase.MarketAddress, nil, &nftmsg.InitMarketMsg{})
	if err != nil {
		t.Fatalf("failed to initialize market: %v", err)
	}

	return e, r
}

// MintToken mints a token for Owner through the router.
func MintToken(t *testing.T, e nftintf.Env, r *nftmsg.Router, caller, tokenId string) (*nftmsg.Response, error) {
	t.Helper()
	return r.Execute(e, caller, nftbase.RegistryAddress, nil, &nftmsg.MintMsg{TokenId: tokenId, Owner: Owner})
}

// ListForSale mints a token and moves it into marketplace custody with the
// given price attached as sale terms.
func ListForSale(t *testing.T, e nftintf.Env, r *nftmsg.Router, tokenId, denom string, amount uint64) {
	t.Helper()

	if _, err := MintToken(t, e, r, Minter, tokenId); err != nil {
		t.Fatalf("failed to mint token %s: %v", tokenId, err)
	}
	payload := []byte(`{"price":{"denom":"` + denom + `","amount":` + strconv.FormatUint(amount, 10) + `}}`)
	_, err := r.Execute(e, Owner, nftbase.RegistryAddress, nil, &nftmsg.SendNftMsg{TokenId: tokenId, Contract: nftbase.MarketAddress, Msg: payload})
	if err != nil {
		t.Fatalf("failed to send token %s to market: %v", tokenId, err)
	}
}
