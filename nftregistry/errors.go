package nftregistry

import (
	"net/http"

	"github.com/KarpelesLab/apirouter"
)

var (
	ErrUnauthorized = &apirouter.Error{Message: "unauthorized", Token: "error_unauthorized", Code: http.StatusForbidden}
	ErrTokenExists  = &apirouter.Error{Message: "token already exists", Token: "error_token_already_exists", Code: http.StatusConflict}
)
