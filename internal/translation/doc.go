// Package translation maps recognized segment text into the target language.
//
// Three backends implement Translator: an OpenRouter-compatible chat model
// (services/llm, JSON responses with retries), the OpenAI chat API, and
// Gemini. Segments drives a translator across a transcript, preserving each
// segment's identity and timing and keeping the recognized wording in
// SourceText for subtitle sidecars.
package translation
