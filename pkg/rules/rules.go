// Package rules defines the business-rule violation error every domain
// raises when state or timing policy rejects an otherwise valid request.
// Violations carry a stable machine-readable code the boundary layer maps
// without further business logic.
package rules

// Violation is a business-rule rejection distinct from validation and
// not-found failures.
type Violation struct {
	Code    string
	Message string
}

func (v *Violation) Error() string { return v.Code }

var (
	ErrDuplicateActiveSubscription = &Violation{Code: "DUPLICATE_ACTIVE_SUBSCRIPTION", Message: "subscriber already has an active subscription"}
	ErrWindowExceeded              = &Violation{Code: "WINDOW_EXCEEDED", Message: "date is outside the today/tomorrow scheduling window"}
	ErrCutoffPassed                = &Violation{Code: "CUTOFF_PASSED", Message: "today's meals can no longer be changed after the cutoff"}
	ErrWalletExpired               = &Violation{Code: "WALLET_EXPIRED", Message: "curry wallet validity has expired"}
	ErrInsufficientTokens          = &Violation{Code: "INSUFFICIENT_TOKENS", Message: "no curry tokens remaining"}
	ErrUpgradeAlreadyStarted       = &Violation{Code: "UPGRADE_ALREADY_STARTED", Message: "upgrade has already started and cannot be removed"}
	ErrUpgradeNotAllowed           = &Violation{Code: "UPGRADE_NOT_ALLOWED", Message: "package does not permit this upgrade"}
	ErrInsufficientMembers         = &Violation{Code: "INSUFFICIENT_MEMBERS", Message: "a delivery group needs at least two members"}
	ErrAlreadyPaused               = &Violation{Code: "ALREADY_PAUSED", Message: "a paused meal cannot join a delivery group"}
	ErrDateMismatch                = &Violation{Code: "DATE_MISMATCH", Message: "delivery group members must share one service date"}
	ErrAlreadyFulfilled            = &Violation{Code: "ALREADY_FULFILLED", Message: "a fulfilled order cannot be cancelled"}
	ErrDateOutOfBounds             = &Violation{Code: "DATE_OUT_OF_BOUNDS", Message: "upgrade range must fall inside the subscription period"}
)
