package nftregistry_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/EllipX/libnftmarket/nftbase"
	"github.com/EllipX/libnftmarket/nftintf"
	"github.com/EllipX/libnftmarket/nftmsg"
	"github.com/EllipX/libnftmarket/nftregistry"
	"github.com/EllipX/libnftmarket/nfttest"
)

func setupRegistry(t *testing.T) (nftintf.Env, *nftregistry.Registry) {
	t.Helper()

	e, err := nftbase.InitTempEnv()
	if err != nil {
		t.Fatalf("failed to init temp env: %v", err)
	}
	t.Cleanup(func() { nftbase.CleanupTempEnv(e) })

	reg := nftregistry.New(nftbase.RegistryAddress)
	_, err = reg.Initialize(e, nfttest.Owner, "TestNft", "TNFT", nfttest.Minter)
	if err != nil {
		t.Fatalf("failed to initialize registry: %v", err)
	}
	return e, reg
}

func mintToken(t *testing.T, e nftintf.Env, reg *nftregistry.Registry, caller, tokenId string) (*nftmsg.Response, error) {
	t.Helper()
	return reg.Mint(e, caller, &nftmsg.MintMsg{TokenId: tokenId, Owner: nfttest.Owner})
}

func TestInitializeRejectsBadMinter(t *testing.T) {
	e, err := nftbase.InitTempEnv()
	if err != nil {
		t.Fatalf("failed to init temp env: %v", err)
	}
	defer nftbase.CleanupTempEnv(e)

	reg := nftregistry.New(nftbase.RegistryAddress)
	_, err = reg.Initialize(e, nfttest.Owner, "TestNft", "TNFT", "not an address")
	if err == nil {
		t.Fatalf("expected error for invalid minter address")
	}
}

func TestMintRequiresMinter(t *testing.T) {
	e, reg := setupRegistry(t)

	_, err := mintToken(t, e, reg, nfttest.Stranger, nfttest.TokenId)
	if !errors.Is(err, nftregistry.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if _, err := reg.GetOwnerOf(e, nfttest.TokenId); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("token should not exist after rejected mint")
	}
}

func TestMint(t *testing.T) {
	e, reg := setupRegistry(t)

	res, err := mintToken(t, e, reg, nfttest.Minter, nfttest.TokenId)
	if err != nil {
		t.Fatalf("failed to mint: %v", err)
	}
	if action, _ := res.Attribute("action"); action != "mint" {
		t.Errorf("expected action=mint, got %s", action)
	}
	if len(res.Messages) != 0 {
		t.Errorf("mint should produce no messages, got %d", len(res.Messages))
	}

	owner, err := reg.GetOwnerOf(e, nfttest.TokenId)
	if err != nil {
		t.Fatalf("failed to get owner: %v", err)
	}
	if owner.Owner != nfttest.Owner {
		t.Errorf("expected owner %s, got %s", nfttest.Owner, owner.Owner)
	}
}

func TestMintDuplicate(t *testing.T) {
	e, reg := setupRegistry(t)

	if _, err := mintToken(t, e, reg, nfttest.Minter, nfttest.TokenId); err != nil {
		t.Fatalf("failed to mint: %v", err)
	}

	// second mint of the same id must fail and leave the original untouched
	_, err := reg.Mint(e, nfttest.Minter, &nftmsg.MintMsg{TokenId: nfttest.TokenId, Owner: nfttest.Stranger})
	if !errors.Is(err, nftregistry.ErrTokenExists) {
		t.Fatalf("expected ErrTokenExists, got %v", err)
	}

	owner, err := reg.GetOwnerOf(e, nfttest.TokenId)
	if err != nil {
		t.Fatalf("failed to get owner: %v", err)
	}
	if owner.Owner != nfttest.Owner {
		t.Errorf("original token mutated by rejected mint: owner is %s", owner.Owner)
	}
}

func TestTransferRequiresOwner(t *testing.T) {
	e, reg := setupRegistry(t)
	mintToken(t, e, reg, nfttest.Minter, nfttest.TokenId)

	_, err := reg.TransferNft(e, nfttest.Stranger, nfttest.TokenId, nfttest.Stranger)
	if !errors.Is(err, nftregistry.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTransferNotFound(t *testing.T) {
	e, reg := setupRegistry(t)

	_, err := reg.TransferNft(e, nfttest.Owner, "missing", nfttest.Stranger)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTransfer(t *testing.T) {
	e, reg := setupRegistry(t)
	mintToken(t, e, reg, nfttest.Minter, nfttest.TokenId)

	res, err := reg.TransferNft(e, nfttest.Owner, nfttest.TokenId, nfttest.Stranger)
	if err != nil {
		t.Fatalf("failed to transfer: %v", err)
	}
	if receiver, _ := res.Attribute("receiver"); receiver != nfttest.Stranger {
		t.Errorf("expected receiver %s, got %s", nfttest.Stranger, receiver)
	}

	owner, err := reg.GetOwnerOf(e, nfttest.TokenId)
	if err != nil {
		t.Fatalf("failed to get owner: %v", err)
	}
	if owner.Owner != nfttest.Stranger {
		t.Errorf("expected owner %s, got %s", nfttest.Stranger, owner.Owner)
	}

	// previous owner lost all rights over the token
	_, err = reg.TransferNft(e, nfttest.Owner, nfttest.TokenId, nfttest.Owner)
	if !errors.Is(err, nftregistry.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for previous owner, got %v", err)
	}
}

func TestTransferUpdatesOwnerIndex(t *testing.T) {
	e, reg := setupRegistry(t)
	mintToken(t, e, reg, nfttest.Minter, nfttest.TokenId)

	if _, err := reg.TransferNft(e, nfttest.Owner, nfttest.TokenId, nfttest.Stranger); err != nil {
		t.Fatalf("failed to transfer: %v", err)
	}

	oldTokens, err := reg.GetOwnerTokens(e, nfttest.Owner, "", 0)
	if err != nil {
		t.Fatalf("failed to list old owner tokens: %v", err)
	}
	if len(oldTokens.Tokens) != 0 {
		t.Errorf("old owner still has %d tokens in the index", len(oldTokens.Tokens))
	}

	newTokens, err := reg.GetOwnerTokens(e, nfttest.Stranger, "", 0)
	if err != nil {
		t.Fatalf("failed to list new owner tokens: %v", err)
	}
	if len(newTokens.Tokens) != 1 || newTokens.Tokens[0].TokenId != nfttest.TokenId {
		t.Errorf("new owner index entry missing: %+v", newTokens.Tokens)
	}
}

func TestSendNftRequiresOwner(t *testing.T) {
	e, reg := setupRegistry(t)
	mintToken(t, e, reg, nfttest.Minter, nfttest.TokenId)

	_, err := reg.SendNft(e, nfttest.Stranger, nfttest.TokenId, nfttest.Stranger, []byte(`"hello"`))
	if !errors.Is(err, nftregistry.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSendNft(t *testing.T) {
	e, reg := setupRegistry(t)
	mintToken(t, e, reg, nfttest.Minter, nfttest.TokenId)

	res, err := reg.SendNft(e, nfttest.Owner, nfttest.TokenId, nftbase.MarketAddress, []byte(`{"price":{"denom":"token","amount":1}}`))
	if err != nil {
		t.Fatalf("failed to send: %v", err)
	}

	// custody moved to the destination contract
	owner, err := reg.GetOwnerOf(e, nfttest.TokenId)
	if err != nil {
		t.Fatalf("failed to get owner: %v", err)
	}
	if owner.Owner != nftbase.MarketAddress {
		t.Errorf("expected custody at %s, got %s", nftbase.MarketAddress, owner.Owner)
	}

	// one outbound notification to the destination, carrying the sender
	if len(res.Messages) != 1 {
		t.Fatalf("expected one outbound message, got %d", len(res.Messages))
	}
	m := res.Messages[0]
	if m.To != nftbase.MarketAddress {
		t.Errorf("notification sent to %s", m.To)
	}
	recv, ok := m.Op.(*nftmsg.ReceiveNftMsg)
	if !ok {
		t.Fatalf("expected ReceiveNftMsg, got %T", m.Op)
	}
	if recv.Sender != nfttest.Owner || recv.TokenId != nfttest.TokenId {
		t.Errorf("bad notification content: %+v", recv)
	}
}
