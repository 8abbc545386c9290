package tts

import (
	"context"
	"fmt"
	"sync"
)

// Synthesizer turns one piece of text into an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
	// FileExtension is the container the provider produces (".mp3", ".wav").
	FileExtension() string
}

// speech service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

type Options struct {
	Model string
	Voice string
	Speed float64 // playback speed multiplier, 0 means provider default
}

// creates a Synthesizer based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Synthesizer, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAISynthesizer(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiSynthesizer(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported TTS provider: %s", provider)
	}
}

// Job is one entry to synthesize.
type Job struct {
	Index   int
	Text    string
	OutPath string
}

// SynthesizeAll runs jobs through up to concurrency workers. The first
// failure stops new work and is returned.
func SynthesizeAll(
	ctx context.Context,
	syn Synthesizer,
	jobs []Job,
	concurrency int,
) error {
	if concurrency <= 0 {
		concurrency = 3
	}

	var (
		mu       sync.Mutex
		firstErr error
		wg       sync.WaitGroup
	)

	sem := make(chan struct{}, concurrency)

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		mu.Lock()
		hasErr := firstErr != nil
		mu.Unlock()
		if hasErr {
			break
		}

		wg.Add(1)
		go func(j Job) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			mu.Lock()
			hasErr := firstErr != nil
			mu.Unlock()
			if hasErr {
				return
			}

			if err := syn.Synthesize(ctx, j.Text, j.OutPath); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf(
						"failed to synthesize entry %d: %w",
						j.Index,
						err,
					)
				}
				mu.Unlock()
			}
		}(job)
	}

	wg.Wait()

	return firstErr
}
