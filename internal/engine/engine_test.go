package engine

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/chainrelay/correlator/internal/config"
	"github.com/chainrelay/correlator/internal/identity"
	"github.com/chainrelay/correlator/internal/observability"
	"github.com/chainrelay/correlator/internal/store"
	"github.com/chainrelay/correlator/internal/subscriber"
	"github.com/chainrelay/correlator/internal/types"
	"github.com/rs/zerolog"
)

// recordingSink lets tests assert on reported errors without touching
// the real Prometheus/zerolog-backed LogSink.
type recordingSink struct {
	errors  []observability.ErrorRecord
	matched []int64
}

func (s *recordingSink) ReportError(rec observability.ErrorRecord)        { s.errors = append(s.errors, rec) }
func (s *recordingSink) EventProcessed(protocol, eventKind string)        {}
func (s *recordingSink) EnvelopeMatched(protocol string, latency int64)   { s.matched = append(s.matched, latency) }

func newTestEngine() (*Engine, store.Store, *recordingSink) {
	st := store.NewInMemoryStore()
	sink := &recordingSink{}
	eng := New(st, config.DefaultChainTable(), sink, zerolog.Nop())
	return eng, st, sink
}

func lzHeaderHex(nonce uint64, srcEid uint32, sender string, dstEid uint32, receiver string) string {
	return fmt.Sprintf("0x01%016x%08x%s%08x%s", nonce, srcEid, strings.TrimPrefix(sender, "0x"), dstEid, strings.TrimPrefix(receiver, "0x"))
}

func TestS1_LayerZeroTaxiOutboundFirst(t *testing.T) {
	eng, st, _ := newTestEngine()
	ctx := context.Background()

	sender := "0x" + strings.Repeat("0", 63) + "1"
	receiver := "0x" + strings.Repeat("0", 63) + "2"
	header := lzHeaderHex(42, 30101, sender, 30184, receiver)

	sent := subscriber.RawEvent{
		Protocol: types.ProtocolLayerZero, EventKind: types.EventPacketSent,
		ChainID: 1, Block: 100, Timestamp: 1000, TxHash: "txA",
		Params: map[string]any{"header": header},
	}
	if err := eng.Dispatch(ctx, sent); err != nil {
		t.Fatalf("PacketSent dispatch: %v", err)
	}

	delivered := subscriber.RawEvent{
		Protocol: types.ProtocolLayerZero, EventKind: types.EventPacketDelivered,
		ChainID: 8453, Block: 200, Timestamp: 1060, TxHash: "txB",
		Params: map[string]any{
			"origin_src_eid": uint32(30101),
			"origin_sender":  sender,
			"origin_nonce":   uint64(42),
			"receiver":       receiver,
		},
	}
	if err := eng.Dispatch(ctx, delivered); err != nil {
		t.Fatalf("PacketDelivered dispatch: %v", err)
	}

	guid, err := identity.LayerZeroGUID(42, 30101, sender, 30184, receiver)
	if err != nil {
		t.Fatalf("compute expected guid: %v", err)
	}
	env, ok, err := st.GetEnvelope(ctx, types.EnvelopeID(types.ProtocolLayerZero, guid))
	if err != nil || !ok {
		t.Fatalf("expected envelope to exist: ok=%v err=%v", ok, err)
	}
	if !env.Matched {
		t.Fatal("expected envelope to be matched")
	}
	if env.Latency == nil || *env.Latency != 60 {
		t.Errorf("latency: got %v, want 60", env.Latency)
	}
	if env.OutboundTxHash != "txA" || env.InboundTxHash != "txB" {
		t.Errorf("tx hashes: got outbound=%s inbound=%s", env.OutboundTxHash, env.InboundTxHash)
	}
}

func TestS2_LayerZeroTaxiInboundFirst(t *testing.T) {
	eng, st, _ := newTestEngine()
	ctx := context.Background()

	sender := "0x" + strings.Repeat("0", 63) + "1"
	receiver := "0x" + strings.Repeat("0", 63) + "2"
	header := lzHeaderHex(42, 30101, sender, 30184, receiver)

	delivered := subscriber.RawEvent{
		Protocol: types.ProtocolLayerZero, EventKind: types.EventPacketDelivered,
		ChainID: 8453, Block: 200, Timestamp: 1060, TxHash: "txB",
		Params: map[string]any{
			"origin_src_eid": uint32(30101),
			"origin_sender":  sender,
			"origin_nonce":   uint64(42),
			"receiver":       receiver,
		},
	}
	if err := eng.Dispatch(ctx, delivered); err != nil {
		t.Fatalf("PacketDelivered dispatch: %v", err)
	}

	sent := subscriber.RawEvent{
		Protocol: types.ProtocolLayerZero, EventKind: types.EventPacketSent,
		ChainID: 1, Block: 100, Timestamp: 1000, TxHash: "txA",
		Params: map[string]any{"header": header},
	}
	if err := eng.Dispatch(ctx, sent); err != nil {
		t.Fatalf("PacketSent dispatch: %v", err)
	}

	guid, _ := identity.LayerZeroGUID(42, 30101, sender, 30184, receiver)
	env, ok, err := st.GetEnvelope(ctx, types.EnvelopeID(types.ProtocolLayerZero, guid))
	if err != nil || !ok {
		t.Fatalf("expected envelope to exist: ok=%v err=%v", ok, err)
	}
	if !env.Matched || env.Latency == nil || *env.Latency != 60 {
		t.Fatalf("expected same final state as outbound-first: matched=%v latency=%v", env.Matched, env.Latency)
	}
}

func TestS3_AcrossDepositAndFill(t *testing.T) {
	eng, st, _ := newTestEngine()
	ctx := context.Background()

	deposit := subscriber.RawEvent{
		Protocol: types.ProtocolAcross, EventKind: types.EventFundsDeposited,
		ChainID: 1, Block: 10, Timestamp: 2000, TxHash: "txDep",
		Params: map[string]any{
			"deposit_id":   uint64(7),
			"input_token":  "0xT1",
			"input_amount": big.NewInt(1000),
			"depositor":    "0xD",
			"recipient":    "0xR",
		},
	}
	if err := eng.Dispatch(ctx, deposit); err != nil {
		t.Fatalf("FundsDeposited dispatch: %v", err)
	}

	fill := subscriber.RawEvent{
		Protocol: types.ProtocolAcross, EventKind: types.EventFilledRelay,
		ChainID: 42161, Block: 20, Timestamp: 2045, TxHash: "txFill",
		Params: map[string]any{
			"deposit_id":      uint64(7),
			"origin_chain_id": uint64(1),
			"output_token":    "0xT2",
			"output_amount":   big.NewInt(990),
			"recipient":       "0xR",
		},
	}
	if err := eng.Dispatch(ctx, fill); err != nil {
		t.Fatalf("FilledRelay dispatch: %v", err)
	}

	envelopeID := types.EnvelopeID(types.ProtocolAcross, identity.AcrossKey(1, 7))
	env, ok, err := st.GetEnvelope(ctx, envelopeID)
	if err != nil || !ok {
		t.Fatalf("expected envelope to exist: ok=%v err=%v", ok, err)
	}
	if !env.Matched || env.Latency == nil || *env.Latency != 45 {
		t.Fatalf("matched=%v latency=%v, want matched=true latency=45", env.Matched, env.Latency)
	}

	payload, ok, err := st.GetPayload(ctx, envelopeID+"-0")
	if err != nil || !ok {
		t.Fatalf("expected payload to exist: ok=%v err=%v", ok, err)
	}
	if payload.OutboundAmount.Cmp(big.NewInt(1000)) != 0 || payload.InboundAmount.Cmp(big.NewInt(990)) != 0 {
		t.Errorf("amounts: outbound=%s inbound=%s", payload.OutboundAmount, payload.InboundAmount)
	}
	if !payload.Matched {
		t.Error("expected payload to be matched")
	}
}

func stargateBusEvents(guid string) (busRode, oftSent, busDriven, oftReceived subscriber.RawEvent) {
	receiver := "0x" + strings.Repeat("0", 63) + "1"
	passenger := fmt.Sprintf("0x%04x%s%016x%02x", uint16(1), strings.TrimPrefix(receiver, "0x"), uint64(100), 0)

	busRode = subscriber.RawEvent{
		Protocol: types.ProtocolLayerZero, EventKind: types.EventBusRode,
		ChainID: 1, Block: 10, Timestamp: 1000, TxHash: "txC",
		Params: map[string]any{
			"tx_hash": "txC", "dst_eid": uint32(30184), "ticket_id": uint64(5),
			"fare": big.NewInt(0), "passenger": passenger,
		},
	}
	oftSent = subscriber.RawEvent{
		Protocol: types.ProtocolLayerZero, EventKind: types.EventOFTSent,
		ChainID: 1, Block: 10, Timestamp: 1000, TxHash: "txC",
		Params: map[string]any{
			"guid": identity.ZeroGUID, "tx_hash": "txC",
			"from_address": "0xS", "amount_sent_ld": big.NewInt(1000),
		},
	}
	busDriven = subscriber.RawEvent{
		Protocol: types.ProtocolLayerZero, EventKind: types.EventBusDriven,
		ChainID: 1, Block: 10, Timestamp: 1000, TxHash: "txC",
		Params: map[string]any{
			"guid": guid, "start_ticket_id": uint64(5), "num_passengers": uint64(1), "dst_eid": uint32(30184),
		},
	}
	oftReceived = subscriber.RawEvent{
		Protocol: types.ProtocolLayerZero, EventKind: types.EventOFTReceived,
		ChainID: 8453, Block: 20, Timestamp: 1050, TxHash: "txD",
		Params: map[string]any{
			"guid": guid, "to_address": receiver, "amount_received_ld": big.NewInt(990),
		},
	}
	return
}

func TestS4_StargateBusSourceFirst(t *testing.T) {
	eng, st, sink := newTestEngine()
	ctx := context.Background()
	guid := "0x" + strings.Repeat("0", 62) + "aa"

	busRode, oftSent, busDriven, oftReceived := stargateBusEvents(guid)
	for _, ev := range []subscriber.RawEvent{busRode, oftSent, busDriven, oftReceived} {
		if err := eng.Dispatch(ctx, ev); err != nil {
			t.Fatalf("dispatch %s failed: %v", ev.EventKind, err)
		}
	}
	if len(sink.errors) != 0 {
		t.Fatalf("unexpected errors reported: %+v", sink.errors)
	}

	payloadID := busPassengerID(types.StableKey(30101, 30184, 5))
	payload, ok, err := st.GetPayload(ctx, payloadID)
	if err != nil || !ok {
		t.Fatalf("expected terminal passenger payload to exist: ok=%v err=%v", ok, err)
	}
	if !payload.Matched {
		t.Fatal("expected terminal passenger payload to be matched")
	}
	if payload.OutboundSender != types.Address("0xS") {
		t.Errorf("outboundSender: got %s, want 0xS", payload.OutboundSender)
	}
	if payload.OutboundAmount.Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("outboundAmount: got %s, want 1000", payload.OutboundAmount)
	}
	if payload.InboundAmount.Cmp(big.NewInt(990)) != 0 {
		t.Errorf("inboundAmount: got %s, want 990", payload.InboundAmount)
	}
}

func TestS5_StargateBusDestinationFirst(t *testing.T) {
	eng, st, sink := newTestEngine()
	ctx := context.Background()
	guid := "0x" + strings.Repeat("0", 62) + "bb"

	busRode, oftSent, busDriven, oftReceived := stargateBusEvents(guid)
	for _, ev := range []subscriber.RawEvent{oftReceived, busDriven, oftSent, busRode} {
		if err := eng.Dispatch(ctx, ev); err != nil {
			t.Fatalf("dispatch %s failed: %v", ev.EventKind, err)
		}
	}
	if len(sink.errors) != 0 {
		t.Fatalf("unexpected errors reported: %+v", sink.errors)
	}

	payloadID := busPassengerID(types.StableKey(30101, 30184, 5))
	payload, ok, err := st.GetPayload(ctx, payloadID)
	if err != nil || !ok {
		t.Fatalf("expected terminal passenger payload to exist: ok=%v err=%v", ok, err)
	}
	if !payload.Matched {
		t.Fatal("expected terminal passenger payload to be matched")
	}
	if payload.App != types.AppStargateV2BusPassenger {
		t.Errorf("app: got %s, want %s", payload.App, types.AppStargateV2BusPassenger)
	}
	if payload.OutboundAmount.Cmp(big.NewInt(1000)) != 0 || payload.InboundAmount.Cmp(big.NewInt(990)) != 0 {
		t.Errorf("amounts: outbound=%s inbound=%s", payload.OutboundAmount, payload.InboundAmount)
	}
}

func TestAgglayerBridgeAndClaim(t *testing.T) {
	eng, st, _ := newTestEngine()
	ctx := context.Background()

	bridge := subscriber.RawEvent{
		Protocol: types.ProtocolAgglayer, EventKind: types.EventBridgeEvent,
		ChainID: 1, Block: 50, Timestamp: 4000, TxHash: "txBridge",
		Params: map[string]any{
			"asset_origin_network": uint32(0),
			"asset_origin_address": "0x" + strings.Repeat("aa", 20),
			"destination_address":  "0x" + strings.Repeat("bb", 20),
			"amount":                big.NewInt(42000),
			"deposit_count":         uint32(9),
			"depositor":             "0xD",
		},
	}
	if err := eng.Dispatch(ctx, bridge); err != nil {
		t.Fatalf("BridgeEvent dispatch: %v", err)
	}

	// globalIndex bitfield with localRootIndex = 9 in the low 32 bits.
	globalIndex := "0x" + strings.Repeat("0", 56) + "00000009"
	claim := subscriber.RawEvent{
		Protocol: types.ProtocolAgglayer, EventKind: types.EventClaimEvent,
		ChainID: 1101, Block: 60, Timestamp: 4030, TxHash: "txClaim",
		Params: map[string]any{
			"asset_origin_network": uint32(0),
			"asset_origin_address": "0x" + strings.Repeat("aa", 20),
			"destination_address":  "0x" + strings.Repeat("bb", 20),
			"amount":                big.NewInt(42000),
			"global_index":          globalIndex,
		},
	}
	if err := eng.Dispatch(ctx, claim); err != nil {
		t.Fatalf("ClaimEvent dispatch: %v", err)
	}

	messageKey := identity.AgglayerKey(0, "0x"+strings.Repeat("aa", 20), "0x"+strings.Repeat("bb", 20), big.NewInt(42000), 9)
	envelopeID := types.EnvelopeID(types.ProtocolAgglayer, messageKey)
	env, ok, err := st.GetEnvelope(ctx, envelopeID)
	if err != nil || !ok {
		t.Fatalf("expected envelope to exist: ok=%v err=%v", ok, err)
	}
	if !env.Matched || env.Latency == nil || *env.Latency != 30 {
		t.Fatalf("matched=%v latency=%v, want matched=true latency=30", env.Matched, env.Latency)
	}
}

func TestS6_CCTPv2DeterministicMatching(t *testing.T) {
	eng, st, _ := newTestEngine()
	ctx := context.Background()

	body := map[string]any{
		"version":             "v2",
		"source_domain":       uint32(0),
		"destination_domain":  uint32(3),
		"burn_token":          "0x" + strings.Repeat("aa", 20),
		"mint_recipient":      "0x" + strings.Repeat("0", 63) + "1",
		"message_sender":      "0x" + strings.Repeat("0", 63) + "2",
		"amount":              big.NewInt(500000),
		"max_fee":             big.NewInt(10),
	}

	burn := subscriber.RawEvent{
		Protocol: types.ProtocolCCTP, EventKind: types.EventDepositForBurn,
		ChainID: 1, Block: 100, Timestamp: 3000, TxHash: "txBurn",
		Params: body,
	}
	if err := eng.Dispatch(ctx, burn); err != nil {
		t.Fatalf("DepositForBurn dispatch: %v", err)
	}

	receive := subscriber.RawEvent{
		Protocol: types.ProtocolCCTP, EventKind: types.EventMessageReceived,
		ChainID: 42161, Block: 200, Timestamp: 3040, TxHash: "txReceive",
		Params: body,
	}
	if err := eng.Dispatch(ctx, receive); err != nil {
		t.Fatalf("MessageReceived dispatch: %v", err)
	}

	key, err := identity.CCTPv2Key(identity.CCTPv2Body{
		SourceDomain: 0, DestinationDomain: 3,
		BurnToken: body["burn_token"].(string), MintRecipient: body["mint_recipient"].(string),
		Amount: body["amount"].(*big.Int), MessageSender: body["message_sender"].(string),
		MaxFee: body["max_fee"].(*big.Int),
	})
	if err != nil {
		t.Fatalf("compute expected key: %v", err)
	}

	env, ok, err := st.GetEnvelope(ctx, types.EnvelopeID(types.ProtocolCCTP, key))
	if err != nil || !ok {
		t.Fatalf("expected envelope to exist: ok=%v err=%v", ok, err)
	}
	if !env.Matched || env.Latency == nil || *env.Latency != 40 {
		t.Fatalf("matched=%v latency=%v, want matched=true latency=40", env.Matched, env.Latency)
	}
}

func TestUnknownChainIDIsConfigErrorAndSkipsEvent(t *testing.T) {
	eng, st, sink := newTestEngine()
	ctx := context.Background()

	ev := subscriber.RawEvent{
		Protocol: types.ProtocolLayerZero, EventKind: types.EventPacketDelivered,
		ChainID: 999999, Block: 1, Timestamp: 1, TxHash: "tx",
		Params: map[string]any{
			"origin_src_eid": uint32(30101),
			"origin_sender":  "0x" + strings.Repeat("0", 63) + "1",
			"origin_nonce":   uint64(1),
			"receiver":       "0x" + strings.Repeat("0", 63) + "2",
		},
	}
	if err := eng.Dispatch(ctx, ev); err != nil {
		t.Fatalf("config errors must be swallowed, not propagated: %v", err)
	}
	if len(sink.errors) != 1 || sink.errors[0].Kind != "config" {
		t.Fatalf("expected one config error report, got %+v", sink.errors)
	}

	all, err := st.PayloadsByTransportingMessageID(ctx, "anything")
	if err != nil {
		t.Fatalf("unexpected store error: %v", err)
	}
	if len(all) != 0 {
		t.Error("no entity should have been written on a config error")
	}
}

func TestDispatchIdempotentOnRedelivery(t *testing.T) {
	eng, st, _ := newTestEngine()
	ctx := context.Background()

	sender := "0x" + strings.Repeat("0", 63) + "1"
	receiver := "0x" + strings.Repeat("0", 63) + "2"
	header := lzHeaderHex(42, 30101, sender, 30184, receiver)
	sent := subscriber.RawEvent{
		Protocol: types.ProtocolLayerZero, EventKind: types.EventPacketSent,
		ChainID: 1, Block: 100, Timestamp: 1000, TxHash: "txA",
		Params: map[string]any{"header": header},
	}

	if err := eng.Dispatch(ctx, sent); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if err := eng.Dispatch(ctx, sent); err != nil {
		t.Fatalf("redelivered dispatch: %v", err)
	}

	guid, _ := identity.LayerZeroGUID(42, 30101, sender, 30184, receiver)
	env, ok, err := st.GetEnvelope(ctx, types.EnvelopeID(types.ProtocolLayerZero, guid))
	if err != nil || !ok {
		t.Fatalf("expected envelope to exist: ok=%v err=%v", ok, err)
	}
	if env.OutboundTxHash != "txA" {
		t.Errorf("redelivery must not alter state: got %s", env.OutboundTxHash)
	}
}
