package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/genai"
)

// implements Synthesizer using Gemini TTS models. Gemini returns raw PCM
// (24 kHz, 16-bit, mono) which gets wrapped into a WAV container.
type GeminiSynthesizer struct {
	client  *genai.Client
	model   string
	voice   string
	options Options
}

func NewGeminiSynthesizer(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiSynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-preview-tts"
	}

	voice := opts.Voice
	if voice == "" {
		voice = "Kore"
	}

	return &GeminiSynthesizer{
		client:  client,
		model:   model,
		voice:   voice,
		options: opts,
	}, nil
}

func (s *GeminiSynthesizer) FileExtension() string {
	return ".wav"
}

func (s *GeminiSynthesizer) Synthesize(
	ctx context.Context,
	text, outPath string,
) error {
	if text == "" {
		return fmt.Errorf("text is empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(
			[]*genai.Part{genai.NewPartFromText(text)},
			genai.RoleUser,
		),
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: s.voice,
				},
			},
		},
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return fmt.Errorf("speech request failed: %w", err)
	}

	pcm := extractAudioData(result)
	if len(pcm) == 0 {
		return fmt.Errorf("no audio data in Gemini response")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	wav := wrapPCMInWAV(pcm, geminiSampleRate, geminiChannels, geminiBitDepth)
	if err := os.WriteFile(outPath, wav, 0644); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	return nil
}

func extractAudioData(result *genai.GenerateContentResponse) []byte {
	if result == nil {
		return nil
	}
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}
