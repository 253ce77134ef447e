package raftlog

import "errors"

var (
	// ErrNoStorage is returned when a Planner is built without a
	// storage configuration.
	ErrNoStorage = errors.New("raftlog: no storage configuration provided")

	// ErrNoManager is returned when a Planner is built without a
	// segment manager.
	ErrNoManager = errors.New("raftlog: no segment manager provided")
)
