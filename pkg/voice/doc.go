// Package voice orchestrates the capture, recognition and chat pipeline and
// the independent synthesis and playback pipeline.
//
// All session state lives behind a single event-loop goroutine: user
// gestures and background results are posted as events and applied in order,
// so no transition ever races another. Background work (recognition,
// synthesis) runs on short-lived worker goroutines that carry the session ID
// of the request; a result arriving after its session has been abandoned is
// discarded.
//
// The chat surface, permission prompts and rendering are external
// collaborators reached through the ChatBridge, PermissionGate and Notifier
// interfaces.
package voice
