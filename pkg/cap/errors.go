package cap

import (
	"fmt"
)

// Reasons a CAP computation can fail with.
const (
	ReasonAmountWithoutChallenge = "amount-without-challenge"
	ReasonBadAmount              = "bad-amount"
	ReasonBadChallenge           = "bad-challenge"
	ReasonMissingTemplate        = "missing-response-template"
	ReasonUnsupportedIAD         = "unsupported-iad-format"
)

// CAPError reports a violated precondition or an issuer data layout this
// implementation does not understand.
type CAPError struct {
	Reason string
	Detail string
}

func (e *CAPError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("cap: %s", e.Reason)
	}
	return fmt.Sprintf("cap: %s: %s", e.Reason, e.Detail)
}
