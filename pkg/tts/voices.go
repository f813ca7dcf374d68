package tts

// Gender is the ssmlGender field of a voice selection.
type Gender string

// Voice genders accepted by the synthesis API.
const (
	GenderFemale  Gender = "FEMALE"
	GenderMale    Gender = "MALE"
	GenderNeutral Gender = "NEUTRAL"
)

// Google Neural2 voice options for en-US.
const (
	VoiceNeural2A = "en-US-Neural2-A" // Male voice
	VoiceNeural2C = "en-US-Neural2-C" // Female voice
	VoiceNeural2D = "en-US-Neural2-D" // Male voice
	VoiceNeural2F = "en-US-Neural2-F" // Female voice, assistant default
	VoiceNeural2J = "en-US-Neural2-J" // Deep male voice
)
