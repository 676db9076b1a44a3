package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"walletbot/internal/llm"

	"go.uber.org/zap"
)

type VoiceOptions struct {
	Language string // forced transcription language, e.g. "es"
	Voice    string // synthesis voice, e.g. "alloy"
	Format   string // synthesis format, e.g. "mp3"
	Persona  string // system prompt asking for brief, speakable answers
}

// VoiceAgent wraps ChatAgent with speech-to-text before and text-to-speech after.
type VoiceAgent struct {
	Chat        *ChatAgent
	Transcriber llm.Transcriber
	Synthesizer llm.Synthesizer
	Options     VoiceOptions
	Logger      *zap.Logger
}

func NewVoiceAgent(chat *ChatAgent, stt llm.Transcriber, tts llm.Synthesizer, opts VoiceOptions, logger *zap.Logger) *VoiceAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoiceAgent{
		Chat:        chat,
		Transcriber: stt,
		Synthesizer: tts,
		Options:     opts,
		Logger:      logger,
	}
}

// Process transcribes audio, answers it for accountID and returns synthesized speech.
func (v *VoiceAgent) Process(ctx context.Context, audio io.Reader, filename, accountID string) ([]byte, error) {
	if audio == nil {
		return nil, fmt.Errorf("%w: no audio file", ErrBadInput)
	}
	br := bufio.NewReader(audio)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty audio file", ErrBadInput)
		}
		return nil, fmt.Errorf("read audio: %w", err)
	}

	question, err := v.Transcriber.Transcribe(ctx, br, filename, v.Options.Language)
	if errors.Is(err, llm.ErrEmptyTranscription) {
		return nil, fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	if err != nil {
		return nil, err
	}
	v.Logger.Debug("Transcribed question", zap.String("text", question))

	answer, err := v.Chat.Respond(ctx, question, v.Options.Persona, accountID)
	if err != nil {
		return nil, err
	}
	v.Logger.Debug("Answer ready", zap.String("text", answer))

	speech, err := v.Synthesizer.Synthesize(ctx, answer, v.Options.Voice, v.Options.Format)
	if err != nil {
		return nil, err
	}
	return speech, nil
}
