package nftregistry

import (
	"fmt"

	"github.com/EllipX/libnftmarket/nftintf"
	"github.com/EllipX/libnftmarket/nftutil"
)

type NftInfoResponse struct {
	TokenUri *string `json:"token_uri,omitempty"`
}

type NumTokensResponse struct {
	Number int64 `json:"number"`
}

type OwnerOfResponse struct {
	Owner string `json:"owner"`
}

type TokensResponse struct {
	Tokens []*Token `json:"tokens"`
}

func (r *Registry) GetContractInfo(e nftintf.Env) (*ContractInfo, error) {
	var info ContractInfo
	if err := getRecord(e, contractInfoKey, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *Registry) GetNftInfo(e nftintf.Env, tokenId string) (*NftInfoResponse, error) {
	token, err := r.loadToken(e, tokenId)
	if err != nil {
		return nil, err
	}
	return &NftInfoResponse{TokenUri: token.TokenUri}, nil
}

func (r *Registry) GetNumTokens(e nftintf.Env) (*NumTokensResponse, error) {
	count, err := e.CountWithError(&Token{})
	if err != nil {
		return nil, err
	}
	return &NumTokensResponse{Number: count}, nil
}

func (r *Registry) GetOwnerOf(e nftintf.Env, tokenId string) (*OwnerOfResponse, error) {
	token, err := r.loadToken(e, tokenId)
	if err != nil {
		return nil, err
	}
	return &OwnerOfResponse{Owner: token.Owner}, nil
}

// GetOwnerTokens lists an owner's tokens in ascending token id order,
// strictly after startAfter ("" for no bound), at most limit entries
// (0 for all).
func (r *Registry) GetOwnerTokens(e nftintf.Env, owner, startAfter string, limit int) (*TokensResponse, error) {
	owner, err := nftutil.ValidateAddress(owner)
	if err != nil {
		return nil, err
	}

	var tokens []*Token
	err = e.FindAfter(&tokens, map[string]any{"Owner": owner}, "TokenId", startAfter, limit)
	if err != nil {
		return nil, err
	}
	return &TokensResponse{Tokens: tokens}, nil
}

// GetAllTokens follows the same pagination contract as GetOwnerTokens over
// the full token table.
func (r *Registry) GetAllTokens(e nftintf.Env, startAfter string, limit int) (*TokensResponse, error) {
	var tokens []*Token
	err := e.FindAfter(&tokens, nil, "TokenId", startAfter, limit)
	if err != nil {
		return nil, err
	}
	return &TokensResponse{Tokens: tokens}, nil
}

func (r *Registry) loadToken(e nftintf.Env, tokenId string) (*Token, error) {
	var token *Token
	if err := e.FirstWhere(&token, map[string]any{"TokenId": tokenId}); err != nil {
		return nil, fmt.Errorf("token %s: %w", tokenId, err)
	}
	return token, nil
}
