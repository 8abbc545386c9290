package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tingshu-cli/tingshu/internal/llm"
)

const DefaultBatchSize = 20

// single subtitle text to annotate
type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// learner note for one subtitle
type Result struct {
	Index    int    `json:"index"`
	Analysis string `json:"analysis"`
}

type Options struct {
	Language  string // language of the notes (default Chinese)
	Prompt    string // extra instructions appended to the prompt
	BatchSize int    // items per API request (default 20)
}

// Analyzer produces short vocabulary and grammar notes for subtitle lines,
// aimed at language learners listening along.
type Analyzer struct {
	client  llm.Client
	options Options
}

func New(client llm.Client, opts Options) *Analyzer {
	if opts.Language == "" {
		opts.Language = "Chinese"
	}
	return &Analyzer{client: client, options: opts}
}

func (a *Analyzer) batchSize() int {
	if a.options.BatchSize > 0 {
		return a.options.BatchSize
	}
	return DefaultBatchSize
}

func (a *Analyzer) Analyze(
	ctx context.Context,
	items []Item,
) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}

	batchSize := a.batchSize()
	if len(items) <= batchSize {
		return a.analyzeBatch(ctx, items)
	}

	var allResults []Result
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}

		results, err := a.analyzeBatch(ctx, items[i:end])
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

// AnalyzeWithConcurrency runs batches through a bounded worker pool.
func (a *Analyzer) AnalyzeWithConcurrency(
	ctx context.Context,
	items []Item,
	concurrency int,
) ([]Result, error) {
	results, err := llm.RunBatches(
		ctx,
		items,
		a.batchSize(),
		concurrency,
		a.analyzeBatch,
	)
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	return results, nil
}

func (a *Analyzer) analyzeBatch(
	ctx context.Context,
	items []Item,
) ([]Result, error) {
	prompt := BuildPrompt(a.options, items)

	responseText, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
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
		if r.Analysis != "" {
			return true
		}
	}
	return false
}

// BuildPrompt creates the annotation prompt sent to the LLM.
func BuildPrompt(opts Options, items []Item) string {
	var sb strings.Builder

	sb.WriteString(
		"You are annotating English subtitle lines for language learners.\n",
	)
	sb.WriteString(fmt.Sprintf(
		"For each line, write one short note in %s covering the key "+
			"vocabulary or grammar point.\n\n",
		opts.Language,
	))

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Keep each note to one or two sentences.\n")
	sb.WriteString("2. Return ONLY a JSON array.\n")
	sb.WriteString("3. Each object must have 'index' and 'analysis' fields.\n")
	sb.WriteString(
		"4. The 'index' values must match the input indices exactly.\n",
	)
	sb.WriteString("5. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(
			fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt),
		)
	}

	sb.WriteString("Input JSON:\n")

	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the annotation JSON array only:")

	return sb.String()
}
