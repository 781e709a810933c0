package nftbase

import (
	"github.com/EllipX/libnftmarket/nftutil"
	"github.com/KarpelesLab/emitter"
)

// handleNftEvent forwards mutation events to connected hosts.
func (e *env) handleNftEvent(name string, ch <-chan *emitter.Event) {
	for ev := range ch {
		data, _ := emitter.Arg[any](ev, 0)
		nftutil.BroadcastMsg(name, data)
	}
}
