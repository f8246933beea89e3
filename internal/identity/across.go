package identity

import "fmt"

// AcrossKey computes the "{originChainId}-{depositId}" composite key.
// Used identically on the outbound leg (chain id of the FundsDeposited
// event + its depositId) and the inbound leg (the FilledRelay event's
// explicit originChainId + depositId fields).
func AcrossKey(originChainID uint64, depositID uint64) string {
	return fmt.Sprintf("%d-%d", originChainID, depositID)
}
