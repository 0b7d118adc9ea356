package service

import "errors"

var (
	ErrAlreadyAttempted  = errors.New("instrument already attempted")
	ErrResultConflict    = errors.New("result already stored for instrument")
	ErrResultNotFound    = errors.New("result not found")
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrSessionInProgress = errors.New("session already in progress")
	ErrSessionNotFound   = errors.New("session not found")
	ErrPersistence       = errors.New("result persistence failed")
)
