package errors

import "fmt"

// Registry operations refuse silently: no mutation, no event, only one of
// these sentinels returned to the caller.
var (
	ErrNoActiveUser    = fmt.Errorf("no active user")
	ErrChannelNotFound = fmt.Errorf("channel not found")
	ErrUnauthorized    = fmt.Errorf("requester is not the channel owner")
	ErrNotMember       = fmt.Errorf("user is not a channel member")
	ErrAlreadyMember   = fmt.Errorf("user is already a channel member")
	ErrPublicChannel   = fmt.Errorf("public channel membership is self-service")
	ErrInvalidInput    = fmt.Errorf("empty name or text")
	ErrWorkerPanic     = fmt.Errorf("worker panic")
)
