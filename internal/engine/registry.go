package engine

import (
	"context"

	"github.com/chainrelay/correlator/internal/subscriber"
	"github.com/chainrelay/correlator/internal/types"
)

type registryKey struct {
	protocol  types.Protocol
	eventKind types.EventKind
}

type handlerFunc func(ctx context.Context, e *Engine, ev subscriber.RawEvent) error

// Registry is the dispatch table of spec §4.6, expressed as a map
// rather than the spec's literal table so new protocols register
// themselves rather than requiring an edit to a central switch.
type Registry map[registryKey]handlerFunc

func buildRegistry(e *Engine) Registry {
	r := make(Registry)
	register := func(protocol types.Protocol, kind types.EventKind, h handlerFunc) {
		r[registryKey{protocol, kind}] = h
	}

	registerLayerZeroHandlers(register)
	registerStargateHandlers(register)
	registerAcrossHandlers(register)
	registerCCTPHandlers(register)
	registerAgglayerHandlers(register)

	return r
}
