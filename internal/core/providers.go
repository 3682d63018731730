package core

import "context"

// AudioBlob is a binary audio payload with its MIME type, passed inline to
// the generation backend for transcription.
type AudioBlob struct {
	MIMEType string
	Data     []byte
}

// Generator is the generation backend contract. Failures surface as errors;
// callers decide the fallback.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Transcriber turns an audio blob into text using a plain-text instruction
// plus an inline binary part.
type Transcriber interface {
	Transcribe(ctx context.Context, instruction string, audio AudioBlob) (string, error)
}
