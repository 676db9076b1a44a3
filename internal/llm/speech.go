package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"walletbot/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Transcriber turns recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error)
}

// Synthesizer renders text as audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, format string) ([]byte, error)
}

// ErrEmptyTranscription is returned when the speech model heard nothing usable.
var ErrEmptyTranscription = errors.New("empty transcription")

// SpeechClient implements Transcriber and Synthesizer on the OpenAI audio endpoints.
type SpeechClient struct {
	client   *openai.Client
	sttModel string
	ttsModel string
}

func NewSpeechClient(cfg config.LLMConfig) *SpeechClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.APIURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.APIURL, "/")+"/"))
	}
	client := openai.NewClient(opts...)
	return NewSpeechClientFromClient(&client, cfg)
}

func NewSpeechClientFromClient(client *openai.Client, cfg config.LLMConfig) *SpeechClient {
	return &SpeechClient{
		client:   client,
		sttModel: cfg.STTModel,
		ttsModel: cfg.TTSModel,
	}
}

func (s *SpeechClient) Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error) {
	if filename == "" {
		filename = "audio.wav"
	}
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(audio, filename, "application/octet-stream"),
		Model: openai.AudioModel(s.sttModel),
	}
	if language != "" {
		params.Language = openai.String(language)
	}

	res, err := s.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", ErrEmptyTranscription
	}
	return text, nil
}

func (s *SpeechClient) Synthesize(ctx context.Context, text, voice, format string) ([]byte, error) {
	params := openai.AudioSpeechNewParams{
		Input: text,
		Model: openai.SpeechModel(s.ttsModel),
		Voice: openai.AudioSpeechNewParamsVoice(voice),
	}
	if format != "" {
		params.ResponseFormat = openai.AudioSpeechNewParamsResponseFormat(format)
	}

	resp, err := s.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesized audio: %w", err)
	}
	return audio, nil
}
