package decode

const (
	lzV2HeaderLen      = 1 + 8 + 4 + 32 + 4 + 32 // 81
	lzV1HeaderLen      = 8 + 2 + 20 + 2 + 20      // 52
	lzUln301HeaderLen  = lzV2HeaderLen
)

// PacketHeaderV2 is the decoded LayerZero v2 packet header: 1 (version)
// ‖ 8 (nonce) ‖ 4 (srcEid) ‖ 32 (sender) ‖ 4 (dstEid) ‖ 32 (receiver),
// followed by the inner application payload.
type PacketHeaderV2 struct {
	Version        uint8
	Nonce          uint64
	SrcEid         uint32
	SenderBytes32  string // left-padded bytes32 hex, as used in GUID hashing
	DstEid         uint32
	ReceiverBytes32 string
	InnerPayload   string
}

// DecodePacketHeaderV2 parses the 81-byte LayerZero v2 header.
func DecodePacketHeaderV2(raw string) (*PacketHeaderV2, error) {
	b, err := rawBytes("lz_packet_header_v2", raw)
	if err != nil {
		return nil, err
	}
	if err := requireLen("lz_packet_header_v2", b, lzV2HeaderLen); err != nil {
		return nil, err
	}
	h := &PacketHeaderV2{
		Version:         b[0],
		Nonce:           beUint64(b[1:9]),
		SrcEid:          beUint32(b[9:13]),
		SenderBytes32:   toHex32(b[13:45]),
		DstEid:          beUint32(b[45:49]),
		ReceiverBytes32: toHex32(b[49:81]),
		InnerPayload:    toHex32(b[81:]),
	}
	return h, nil
}

// PacketHeaderV1UltraLight is the decoded LayerZero v1 UltraLight-path
// header: 8 (nonce) ‖ 2 (srcChainId) ‖ 20 (sender) ‖ 2 (dstChainId) ‖
// 20 (dstAddress), followed by the inner payload.
type PacketHeaderV1UltraLight struct {
	Nonce        uint64
	SrcChainID   uint16
	Sender       string // 20-byte address hex
	DstChainID   uint16
	DstAddress   string
	InnerPayload string
}

// DecodePacketHeaderV1UltraLight parses the 52-byte LayerZero v1
// UltraLight header.
func DecodePacketHeaderV1UltraLight(raw string) (*PacketHeaderV1UltraLight, error) {
	b, err := rawBytes("lz_packet_header_v1_ultralight", raw)
	if err != nil {
		return nil, err
	}
	if err := requireLen("lz_packet_header_v1_ultralight", b, lzV1HeaderLen); err != nil {
		return nil, err
	}
	h := &PacketHeaderV1UltraLight{
		Nonce:        beUint64(b[0:8]),
		SrcChainID:   uint16(beUint32(b[8:10])),
		Sender:       toHex32(b[10:30]),
		DstChainID:   uint16(beUint32(b[30:32])),
		DstAddress:   toHex32(b[32:52]),
		InnerPayload: toHex32(b[52:]),
	}
	return h, nil
}

// DecodePacketHeaderV1Uln301 parses the v1 Uln301-path header, which is
// byte-identical in shape to the v2 header.
func DecodePacketHeaderV1Uln301(raw string) (*PacketHeaderV2, error) {
	h, err := DecodePacketHeaderV2(raw)
	if err != nil {
		return nil, err
	}
	return h, nil
}
