package nftutil

import (
	"errors"

	"github.com/EllipX/libnftmarket/nftintf"
)

// Caller resolves the acting address for an API call: the explicit value
// when given, otherwise the current caller stored via Info:setCaller.
func Caller(e nftintf.Env, explicit string) (string, error) {
	if explicit != "" {
		return ValidateAddress(explicit)
	}
	v, err := e.GetCurrent("caller")
	if err != nil {
		return "", errors.New("no caller address provided or configured")
	}
	return v, nil
}
