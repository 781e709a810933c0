package nftmarket

import (
	"time"

	"github.com/EllipX/libnftmarket/nftintf"
	"github.com/EllipX/libnftmarket/nftmsg"
)

// Sale is an escrowed listing: the token already moved into marketplace
// custody and Owner records the original lister entitled to the proceeds.
// A Sale row exists only while the marketplace holds the token; removing it
// is always paired with returning or forwarding the token.
type Sale struct {
	TokenId  string       `json:"token_id" gorm:"primaryKey"`
	Owner    string       `json:"owner" gorm:"index"`
	Contract string       `json:"contract"`
	Price    *nftmsg.Coin `json:"price" gorm:"serializer:json"`
	Created  time.Time    `gorm:"autoCreateTime"`
	Updated  time.Time    `gorm:"autoUpdateTime"`
}

// LazyNft is a promise to mint the token id fresh on Contract when it gets
// purchased. No underlying token exists yet.
type LazyNft struct {
	TokenId  string    `json:"token_id" gorm:"primaryKey"`
	Key      string    `json:"key" gorm:"index:LazyKey,unique"`
	Contract string    `json:"contract"`
	Created  time.Time `gorm:"autoCreateTime"`
}

// saleData is the payload carried by a token transfer into custody.
type saleData struct {
	Price *nftmsg.Coin `json:"price"`
}

func InitEnv(e nftintf.Env) {
	e.AutoMigrate(&Sale{})
	e.AutoMigrate(&LazyNft{})
	e.AutoMigrate(&mintRequest{})
}
