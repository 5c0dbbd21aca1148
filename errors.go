package main

import (
	"errors"
	"fmt"
)

// Sentinel errors for failures that abort the whole run.
var (
	ErrSchema = errors.New("schema error")
	ErrFormat = errors.New("format error")
	ErrConfig = errors.New("config error")
	ErrParse  = errors.New("parse error")
)

// ServiceError is a failed call to the classification service. Transient
// errors (rate limiting, server-side 5xx) are retried with backoff; anything
// else exhausts the retry budget without sleeping.
type ServiceError struct {
	Status int
	Msg    string
}

func (e *ServiceError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("service error (status %d): %s", e.Status, e.Msg)
	}
	return fmt.Sprintf("service error: %s", e.Msg)
}

func (e *ServiceError) Transient() bool {
	switch e.Status {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
