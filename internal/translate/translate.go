package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tingshu-cli/tingshu/internal/llm"
)

const DefaultBatchSize = 50

// single text item to translate
type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// translated text item
type Result struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type Options struct {
	SourceLanguage string // defaults to English
	TargetLanguage string // defaults to Chinese
	Prompt         string // extra instructions appended to the prompt
	BatchSize      int    // items per API request (default 50)
}

// Translator fills in translations batch by batch through an LLM client.
type Translator struct {
	client  llm.Client
	options Options
}

func New(client llm.Client, opts Options) *Translator {
	if opts.SourceLanguage == "" {
		opts.SourceLanguage = "English"
	}
	if opts.TargetLanguage == "" {
		opts.TargetLanguage = "Chinese"
	}
	return &Translator{client: client, options: opts}
}

func (t *Translator) batchSize() int {
	if t.options.BatchSize > 0 {
		return t.options.BatchSize
	}
	return DefaultBatchSize
}

func (t *Translator) Translate(
	ctx context.Context,
	items []Item,
) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}

	batchSize := t.batchSize()
	if len(items) <= batchSize {
		return t.translateBatch(ctx, items)
	}

	var allResults []Result
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}

		results, err := t.translateBatch(ctx, items[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", i/batchSize, err)
		}
		allResults = append(allResults, results...)
	}

	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].Index < allResults[j].Index
	})

	return allResults, nil
}

// TranslateWithConcurrency runs batches through a bounded worker pool.
// The first failed batch cancels the rest.
func (t *Translator) TranslateWithConcurrency(
	ctx context.Context,
	items []Item,
	concurrency int,
) ([]Result, error) {
	results, err := llm.RunBatches(
		ctx,
		items,
		t.batchSize(),
		concurrency,
		t.translateBatch,
	)
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	return results, nil
}

func (t *Translator) translateBatch(
	ctx context.Context,
	items []Item,
) ([]Result, error) {
	prompt := BuildPrompt(t.options, items)

	responseText, err := t.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	responseText = llm.CleanResponse(responseText)

	results, err := llm.ExtractArray(responseText, validResults)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			llm.Truncate(responseText, 200),
		)
	}

	if len(results) != len(items) {
		return nil, fmt.Errorf(
			"expected %d results, got %d",
			len(items),
			len(results),
		)
	}

	return results, nil
}

func validResults(results []Result) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}

// BuildPrompt creates the translation prompt sent to the LLM.
func BuildPrompt(opts Options, items []Item) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(
		"Translate the following %s subtitle texts to %s.\n\n",
		opts.SourceLanguage,
		opts.TargetLanguage,
	))

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString(
		"1. Translate ONLY the text content, preserving the meaning.\n",
	)
	sb.WriteString(
		"2. Keep any formatting tags unchanged.\n",
	)
	sb.WriteString("3. Preserve line breaks in the same positions.\n")
	sb.WriteString("4. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("5. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString(
		"6. The 'index' values must match the input indices exactly.\n",
	)
	sb.WriteString("7. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(
			fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt),
		)
	}

	sb.WriteString("Input JSON:\n")

	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}
