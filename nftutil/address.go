package nftutil

import (
	"fmt"

	"github.com/ModChain/outscript"
)

// ValidateAddress checks an account or contract address and re-outputs it to
// guarantee proper formatting. Addresses used by the registry and the
// marketplace always go through here, never through ad hoc string handling.
func ValidateAddress(addr string) (string, error) {
	a, err := outscript.ParseEvmAddress(addr)
	if err != nil {
		return "", fmt.Errorf("failed to parse address: %w", err)
	}
	res, err := a.Address()
	if err != nil {
		return "", fmt.Errorf("failed to format address: %w", err)
	}
	return res, nil
}
