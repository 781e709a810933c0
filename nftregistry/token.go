package nftregistry

import (
	"time"

	"github.com/EllipX/libnftmarket/nftintf"
)

// Token is a uniquely identified asset record. TokenId is the primary key;
// the Owner index supports owner-scoped enumeration and is maintained by
// the store in the same transaction as the row itself.
type Token struct {
	TokenId  string    `json:"token_id" gorm:"primaryKey"`
	Owner    string    `json:"owner" gorm:"index"`
	TokenUri *string   `json:"token_uri,omitempty"`
	Created  time.Time `gorm:"autoCreateTime"`
	Updated  time.Time `gorm:"autoUpdateTime"`
}

func (t *Token) save(e nftintf.Env) error {
	return e.Save(t)
}

func InitEnv(e nftintf.Env) {
	e.AutoMigrate(&Token{})
}
