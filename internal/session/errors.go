package session

import "errors"

// User facing alert texts.
const (
	AlertEmptyName       = "Error: Facility name is empty"
	AlertUnknownPosition = "Error: Facility position is unknown"
)

var (
	ErrEmptyName       = errors.New(AlertEmptyName)
	ErrUnknownPosition = errors.New(AlertUnknownPosition)
	ErrNoFacility      = errors.New("facility not found in the current result set")
	ErrEmptyComment    = errors.New("comment is empty")
)
