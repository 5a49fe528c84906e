// Package recognition defines the speech-to-text boundary of the dubbing
// pipeline.
//
// Two backends implement Recognizer: the local WhisperX service in
// services/whisperx, and a hosted Whisper client (OpenAI) built on go-openai.
// New selects one from configuration. Both return sentence-level segments
// with timings relative to the start of the extracted speech track.
package recognition
