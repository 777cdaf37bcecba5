package errors

import "fmt"

var (
	ErrNotFound         = fmt.Errorf("resource not found")
	ErrNotOwner         = fmt.Errorf("caller does not own this slot")
	ErrNotResponder     = fmt.Errorf("caller is not the responder of this swap")
	ErrSelfSwap         = fmt.Errorf("both slots belong to the same owner")
	ErrMissingOwner     = fmt.Errorf("target slot owner cannot be resolved")
	ErrInvalidState     = fmt.Errorf("slot is not in the required status")
	ErrAlreadyProcessed = fmt.Errorf("swap request was already processed")
	ErrConflict         = fmt.Errorf("lost a concurrent update race")
	ErrSlotLocked       = fmt.Errorf("slot is locked by a pending swap")
	ErrInvalidTimeRange = fmt.Errorf("slot must start before it ends")

	ErrUserAlreadyExists  = fmt.Errorf("email already in use")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidInput       = fmt.Errorf("invalid input")
)
