// package events contains message types shared between the watch, web and tui packages.
package events

import "tsgraph/internal/inference"

// GraphUpdatedMsg is sent after every successful inference run.
type GraphUpdatedMsg struct {
	Snapshot inference.Snapshot
}

// InferenceFailedMsg is sent when a run fails; the previous graph stays current.
type InferenceFailedMsg struct {
	Err error
}

// FilesChangedMsg is sent when the watcher sees relevant changes, before re-inference.
type FilesChangedMsg struct {
	Paths []string
}

// WebListenURLMsg is sent when the web server starts listening.
type WebListenURLMsg struct{ URL string }
