package domain

type RedeemOutcome string

const (
	OutcomeUnlocked         RedeemOutcome = "unlocked"
	OutcomeInvalidFormat    RedeemOutcome = "invalid_format"
	OutcomeNotFound         RedeemOutcome = "not_found"
	OutcomeAlreadyRedeemed  RedeemOutcome = "already_redeemed"
	OutcomeStoreUnavailable RedeemOutcome = "store_unavailable"
)

// TryRedeemResult is what the store reports for a conditional redeem.
type TryRedeemResult int

const (
	TryRedeemNotFound TryRedeemResult = iota
	TryRedeemSuccess
	TryRedeemAlreadyRedeemed
)

func (r TryRedeemResult) String() string {
	switch r {
	case TryRedeemSuccess:
		return "success"
	case TryRedeemAlreadyRedeemed:
		return "already_redeemed"
	default:
		return "not_found"
	}
}
