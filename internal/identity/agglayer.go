package identity

import (
	"fmt"
	"math/big"
	"strings"
)

// AgglayerKey is the composite (assetOriginNetwork, lower(assetOriginAddress),
// lower(destinationAddress), amount, depositCount) key. depositCount on
// the bridge (outbound) event equals localRootIndex extracted from the
// claim event's globalIndex bitfield on the inbound side.
func AgglayerKey(assetOriginNetwork uint32, assetOriginAddress, destinationAddress string, amount *big.Int, depositCount uint32) string {
	amt := "0"
	if amount != nil {
		amt = amount.String()
	}
	return fmt.Sprintf("%d-%s-%s-%s-%d",
		assetOriginNetwork,
		strings.ToLower(assetOriginAddress),
		strings.ToLower(destinationAddress),
		amt,
		depositCount,
	)
}
