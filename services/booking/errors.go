package booking

import "medbook/utils"

var (
	errNotFound        = utils.NewAppError(utils.CodeNotFound, "Booking not found")
	errForbidden       = utils.NewAppError(utils.CodeForbidden, "You cannot access this booking")
	errScheduleMissing = utils.NewAppError(utils.CodeNotFound, "Schedule not found")
	errUnavailable     = utils.NewAppError(utils.CodeUnavailable, "This schedule is no longer available")
	errChanged         = utils.NewAppError(utils.CodeConflict, "Booking was changed by someone else, please reload")

	// ErrAmountMismatch rejects a gateway confirmation whose amount is not
	// the booking amount.
	ErrAmountMismatch = utils.NewAppError(utils.CodeInvalid, "Paid amount does not match the booking")
)

func invalidState(msg string) error {
	return utils.NewAppError(utils.CodeInvalidState, msg)
}
