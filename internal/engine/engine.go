// Package engine is the event correlation core (spec §4): the
// protocol-specific decoders and identity derivation are composed here
// into the envelope/payload upsert logic (C3/C4), the Stargate bus
// coalescing state machine (C5), and per-protocol dispatch (C6).
//
// Handlers are pure with respect to everything except the store: they
// take the incoming event plus the store's current state for that
// event's key and nothing else (spec §4.6, design note on replacing a
// shared mutated context with explicit parameters).
package engine

import (
	"context"

	"github.com/chainrelay/correlator/internal/identity"
	"github.com/chainrelay/correlator/internal/observability"
	"github.com/chainrelay/correlator/internal/store"
	"github.com/chainrelay/correlator/internal/subscriber"
	"github.com/chainrelay/correlator/internal/xerrors"
	"github.com/rs/zerolog"
)

// Engine is the correlation engine. It holds no state of its own
// beyond its collaborators: the store, the static chain table, the
// observability sink, and a logger.
type Engine struct {
	store    store.Store
	chains   *identity.ChainTable
	sink     observability.Sink
	logger   zerolog.Logger
	registry Registry
}

// New builds an Engine and its protocol dispatch registry.
func New(st store.Store, chains *identity.ChainTable, sink observability.Sink, logger zerolog.Logger) *Engine {
	e := &Engine{
		store:  st,
		chains: chains,
		sink:   sink,
		logger: logger.With().Str("component", "engine").Logger(),
	}
	e.registry = buildRegistry(e)
	return e
}

// Dispatch routes a raw event to its protocol/event-kind handler (spec
// §4.6). A handler error is classified, reported to the sink, and
// swallowed for Decode/Config/State kinds (the event is skipped); a
// StoreError is propagated so the subscriber can retry delivery.
func (e *Engine) Dispatch(ctx context.Context, ev subscriber.RawEvent) error {
	e.sink.EventProcessed(string(ev.Protocol), string(ev.EventKind))

	h, ok := e.registry[registryKey{ev.Protocol, ev.EventKind}]
	if !ok {
		e.logger.Debug().
			Str("protocol", string(ev.Protocol)).
			Str("event_kind", string(ev.EventKind)).
			Msg("no handler registered, ignoring event")
		return nil
	}

	err := h(ctx, e, ev)
	if err == nil {
		return nil
	}

	rec := observability.ErrorRecord{
		Severity:  observability.SeverityWarning,
		Protocol:  string(ev.Protocol),
		EventKind: string(ev.EventKind),
		TxHash:    ev.TxHash,
		Message:   err.Error(),
	}

	var storeErr *xerrors.StoreError
	switch {
	case asStoreError(err, &storeErr):
		rec.Kind = "store"
		e.sink.ReportError(rec)
		return err // propagate: subscriber must retry
	case isDecodeError(err):
		rec.Kind = "decode"
	case isConfigError(err):
		rec.Kind = "config"
	case isStateError(err):
		rec.Kind = "state"
	default:
		rec.Kind = "unknown"
	}
	e.sink.ReportError(rec)
	return nil // event skipped, not propagated
}

func asStoreError(err error, target **xerrors.StoreError) bool {
	se, ok := err.(*xerrors.StoreError)
	if ok {
		*target = se
	}
	return ok
}

func isDecodeError(err error) bool {
	_, ok := err.(*xerrors.DecodeError)
	return ok
}

func isConfigError(err error) bool {
	_, ok := err.(*xerrors.ConfigError)
	return ok
}

func isStateError(err error) bool {
	_, ok := err.(*xerrors.StateError)
	return ok
}

func wrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return xerrors.Store(op, err)
}
