// Package audio provides microphone capture and speaker playback for the
// voice assistant.
//
// Devices are abstracted behind small CaptureDevice/PlaybackDevice interfaces
// so the capture and playback controllers can run against PortAudio in
// production and in-memory devices in tests. All audio is linear PCM16
// little-endian; payloads are treated as opaque byte buffers end to end.
//
// Two controllers sit on top of the device layer:
//
//   - Recorder owns the microphone for the lifetime of one recording. A
//     dedicated goroutine reads fixed-size chunks into a session buffer; the
//     buffer is handed over, immutable, when Stop joins the loop.
//   - Player owns the output device for the lifetime of one Play call. A
//     single atomic busy flag enforces one concurrent playback process-wide.
package audio
