// Package synthesis renders translated text as speech clips.
//
// OpenAI requests raw 24 kHz PCM from the speech endpoint; Piper runs a local
// voice model and reads back its WAV. Both convert the clip to the working
// format before returning it. Voice resolves the configured voice for a
// target language tag.
package synthesis
