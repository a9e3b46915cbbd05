package models

// Authorization is the strict two-valued payout authorization signal.
// Anything that is not exactly YES is treated as NO.
type Authorization string

const (
	AuthorizationYes Authorization = "YES"
	AuthorizationNo  Authorization = "NO"
)

// DecisionVerdict is the payout verdict derived from the authorization.
type DecisionVerdict string

const (
	VerdictPayout DecisionVerdict = "PAYOUT"
	VerdictDeny   DecisionVerdict = "DENY"
)

// Decision is the outcome of the decision oracle gateway for one event.
//
// Invariants enforced by the gateway before a Decision leaves it:
//
//	Verdict == PAYOUT  <=>  Authorization == YES
//	Authorization == NO  =>  PayoutAmountUSDC == "0"
type Decision struct {
	Authorization    Authorization   `json:"authorization"`
	Verdict          DecisionVerdict `json:"decision"`
	Confidence       int             `json:"confidence_score"`
	Reasoning        string          `json:"reasoning"`
	PayoutAmountUSDC string          `json:"payout_amount_usdc"`
	TxID             string          `json:"tx_hash,omitempty"`
}

// Authorized reports whether this decision unlocks a payout.
func (d *Decision) Authorized() bool {
	return d.Authorization == AuthorizationYes && d.Verdict == VerdictPayout
}
