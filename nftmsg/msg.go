package nftmsg

import (
	"github.com/KarpelesLab/pjson"
	"github.com/KarpelesLab/xuid"
)

// Coin is an attached payment or escrow amount. Settlement is exact-match,
// so amounts never need fractional precision beyond the integer unit.
type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Message is an outbound effect produced by an operation. A nil Op is a
// bank transfer of Funds to To; otherwise Op is executed on the contract at
// To. A non-zero ReplyId requests a completion callback (success or
// failure) delivered to the issuing contract's Reply method.
type Message struct {
	Id      *xuid.XUID `json:"id,omitempty"`
	To      string     `json:"to"`
	Op      any        `json:"op,omitempty"`
	Funds   []Coin     `json:"funds,omitempty"`
	ReplyId uint64     `json:"reply_id,omitempty"`
}

// Response carries the attributes and outbound messages of one operation.
type Response struct {
	Attributes []Attribute `json:"attributes,omitempty"`
	Messages   []*Message  `json:"messages,omitempty"`
}

func NewResponse() *Response {
	return &Response{}
}

func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

func (r *Response) AddMessage(m *Message) *Response {
	if m.Id == nil {
		m.Id = xuid.New("msg")
	}
	r.Messages = append(r.Messages, m)
	return r
}

// Attribute returns the value of the first attribute with the given key.
func (r *Response) Attribute(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Reply is the completion callback for a message sent with a ReplyId.
// Exactly one of Result and Err is set.
type Reply struct {
	Id     uint64    `json:"id"`
	Result *Response `json:"result,omitempty"`
	Err    string    `json:"err,omitempty"`
}

// CallInfo describes the triggering call: the validated sender address and
// the funds attached to the call, in order.
type CallInfo struct {
	Sender string `json:"sender"`
	Funds  []Coin `json:"funds,omitempty"`
}

// Operations understood by the registry contract.
type (
	InitRegistryMsg struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
		Minter string `json:"minter"`
	}

	MintMsg struct {
		TokenId  string  `json:"token_id"`
		Owner    string  `json:"owner"`
		TokenUri *string `json:"token_uri,omitempty"`
	}

	TransferNftMsg struct {
		TokenId string `json:"token_id"`
		To      string `json:"to"`
	}

	SendNftMsg struct {
		TokenId  string           `json:"token_id"`
		Contract string           `json:"contract"`
		Msg      pjson.RawMessage `json:"msg"`
	}
)

// Operations understood by the marketplace contract.
type (
	InitMarketMsg struct{}

	// ReceiveNftMsg is the notification a registry emits after a token
	// lands in marketplace custody. Sender is the original owner; the
	// sending contract is the call's sender.
	ReceiveNftMsg struct {
		Sender  string           `json:"sender"`
		TokenId string           `json:"token_id"`
		Msg     pjson.RawMessage `json:"msg"`
	}

	ReceiveLazyNftMsg struct {
		Contract string `json:"contract"`
		TokenId  string `json:"token_id"`
	}

	RemoveSaleMsg struct {
		TokenId string `json:"token_id"`
	}

	PurchaseMsg struct {
		TokenId string `json:"token_id"`
	}

	PurchaseLazyMsg struct {
		TokenId string `json:"token_id"`
	}
)
