// Package chat holds the conversation log and the assistant backend client.
//
// The log is the single source of truth for the conversation; listeners
// (the websocket hub, the speech pipeline) subscribe to appended entries.
// The backend client speaks the assistant query API and tolerates plain-text
// responses from older backend builds.
package chat
