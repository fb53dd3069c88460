package chatsync

import "errors"

var (
	ErrUnknownMessage   = errors.New("chatsync: no local message with that temp id")
	ErrNotFailed        = errors.New("chatsync: message is not in failed state")
	ErrAlreadyDelivered = errors.New("chatsync: message already acknowledged by server")
	ErrSendTimeout      = errors.New("chatsync: send not acknowledged in time")
)
