package tts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Synthesizer using the OpenAI speech endpoint
type OpenAISynthesizer struct {
	client  openai.Client
	model   openai.SpeechModel
	voice   openai.AudioSpeechNewParamsVoice
	options Options
}

func NewOpenAISynthesizer(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAISynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := openai.SpeechModel(opts.Model)
	if opts.Model == "" {
		model = openai.SpeechModelGPT4oMiniTTS
	}

	voice := openai.AudioSpeechNewParamsVoice(opts.Voice)
	if opts.Voice == "" {
		voice = openai.AudioSpeechNewParamsVoiceAlloy
	}

	return &OpenAISynthesizer{
		client:  client,
		model:   model,
		voice:   voice,
		options: opts,
	}, nil
}

func (s *OpenAISynthesizer) FileExtension() string {
	return ".mp3"
}

func (s *OpenAISynthesizer) Synthesize(
	ctx context.Context,
	text, outPath string,
) error {
	if text == "" {
		return fmt.Errorf("text is empty")
	}

	params := openai.AudioSpeechNewParams{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	}
	if s.options.Speed > 0 {
		params.Speed = openai.Float(s.options.Speed)
	}

	res, err := s.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return fmt.Errorf("speech request failed: %w", err)
	}
	defer res.Body.Close()

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, res.Body); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}

	return nil
}
