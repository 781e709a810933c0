package nftmarket

import (
	"net/http"

	"github.com/KarpelesLab/apirouter"
)

var (
	ErrUnauthorized   = &apirouter.Error{Message: "unauthorized", Token: "error_unauthorized", Code: http.StatusForbidden}
	ErrAlreadyExists  = &apirouter.Error{Message: "already exists", Token: "error_already_exists", Code: http.StatusConflict}
	ErrInvalidDeposit = &apirouter.Error{Message: "invalid deposit", Token: "error_invalid_deposit", Code: http.StatusBadRequest}
	ErrInvalidReply   = &apirouter.Error{Message: "invalid reply", Token: "error_invalid_reply", Code: http.StatusBadRequest}
)
