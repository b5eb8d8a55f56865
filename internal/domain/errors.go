package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrBackendFailure  = errors.New("backend reported failure")
	ErrAnalysisTimeout = errors.New("analysis timed out")
	ErrNoSelection     = errors.New("no market selected")
	ErrUnknownExchange = errors.New("unknown exchange")
)
