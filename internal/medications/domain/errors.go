package domain

import "errors"

var (
	ErrUnknownMedication         = errors.New("unknown medication")
	ErrUnsupportedIntervalFormat = errors.New("invalid/unsupported time delta format")
	ErrTagNotFound               = errors.New("tag not found among registered tags")
	ErrAmbiguousTag              = errors.New("only one medication matching a tag is supported")
	ErrNoSchedule                = errors.New("medication has no schedule")
)
