// Copyright (c) 2025 BVK Chaitanya

package monitor

import "fmt"

type State int32

const (
	Idle State = iota
	LoadingPairs
	Initializing
	RunningCycle
	Waiting
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case LoadingPairs:
		return "LOADING_PAIRS"
	case Initializing:
		return "INITIALIZING"
	case RunningCycle:
		return "RUNNING_CYCLE"
	case Waiting:
		return "WAITING"
	case Stopped:
		return "STOPPED"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}
