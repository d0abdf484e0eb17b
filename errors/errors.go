package errors

import "fmt"

var (
	ErrInvalidTimeout   = fmt.Errorf("timeout must be a positive number of minutes")
	ErrTooManyMembers   = fmt.Errorf("at most 5 explicit members can be listed")
	ErrUnknownMember    = fmt.Errorf("member reference could not be resolved")
	ErrPermissionDenied = fmt.Errorf("missing permissions on the target channel")
	ErrFetchFailed      = fmt.Errorf("channel history retrieval was interrupted")
	ErrDeliveryFailed   = fmt.Errorf("transcript could not be delivered")
	ErrSessionExists    = fmt.Errorf("a session already exists for this channel")
	ErrNoSession        = fmt.Errorf("no session is bound to this channel")
	ErrSessionClosed    = fmt.Errorf("session is already closing or closed")
	ErrWorkerPanic      = fmt.Errorf("worker panic")
)
