package types

// Protocol identifies the messaging/bridge protocol that emitted an
// event, and is the first component of every envelope id.
type Protocol string

const (
	ProtocolLayerZero Protocol = "layerzero"
	ProtocolAcross    Protocol = "across"
	ProtocolCCTP      Protocol = "cctp"
	ProtocolAgglayer  Protocol = "agglayer"
)

// App identifies the application-layer transfer kind carried by an
// AppPayload. Distinct from Protocol: one protocol (Stargate, riding on
// LayerZero) produces several App variants depending on mode.
type App string

const (
	AppLayerZero               App = "LayerZero"
	AppAcross                  App = "Across"
	AppCCTP                    App = "CCTP"
	AppAgglayer                App = "Agglayer"
	AppStargateV2Taxi          App = "StargateV2-taxi"
	AppStargateV2BusPassenger  App = "StargateV2-bus-passenger"
	AppStargateV2InboundBuffer App = "StargateV2-inbound-buffer"
)

// PayloadType classifies what the payload represents.
type PayloadType string

const (
	PayloadTypeTransfer PayloadType = "transfer"
	PayloadTypeMessage  PayloadType = "message"
)

// EventKind tags the raw on-chain event kinds the subscriber delivers.
type EventKind string

const (
	EventPacketSent      EventKind = "PacketSent"
	EventPacketDelivered EventKind = "PacketDelivered"
	EventOFTSent         EventKind = "OFTSent"
	EventOFTReceived     EventKind = "OFTReceived"
	EventBusRode         EventKind = "BusRode"
	EventBusDriven       EventKind = "BusDriven"
	EventFundsDeposited  EventKind = "FundsDeposited"
	EventFilledRelay     EventKind = "FilledRelay"
	EventDepositForBurn  EventKind = "DepositForBurn"
	EventMessageReceived EventKind = "MessageReceived"
	EventBridgeEvent     EventKind = "BridgeEvent"
	EventClaimEvent      EventKind = "ClaimEvent"
)
