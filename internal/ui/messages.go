package ui

import "ytfetch/internal/progress"

type eventMsg struct {
	Ev progress.Event
}

// feedClosedMsg arrives once the session finished and its feed drained.
type feedClosedMsg struct{}
