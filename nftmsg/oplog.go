package nftmsg

import (
	"time"

	"github.com/EllipX/libnftmarket/nftintf"
	"github.com/google/uuid"
)

// OpLog records one successful top-level operation, giving hosts an
// activity feed without replaying the event stream.
type OpLog struct {
	Id         uuid.UUID    `json:"id" gorm:"primaryKey;type:uuid"`
	Contract   string       `json:"contract" gorm:"index"`
	Action     string       `json:"action" gorm:"index"`
	TokenId    string       `json:"token_id" gorm:"index"`
	Attributes []*Attribute `json:"attributes" gorm:"serializer:json"`
	Created    time.Time    `gorm:"autoCreateTime"`
}

func (r *Router) logOp(e nftintf.Env, contract string, res *Response) error {
	action, ok := res.Attribute("action")
	if !ok {
		// not every operation is worth a log line (eg. initialize)
		return nil
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}
	entry := &OpLog{
		Id:       id,
		Contract: contract,
		Action:   action,
	}
	if tok, ok := res.Attribute("token_id"); ok {
		entry.TokenId = tok
	}
	for i := range res.Attributes {
		entry.Attributes = append(entry.Attributes, &res.Attributes[i])
	}
	return e.Create(entry)
}
