package llm

import (
	"context"
	"testing"
)

func TestFactoryReturnsGeminiClient(t *testing.T) {
	client, err := Factory(context.Background(), ProviderGemini, "fake-key", "")
	if err != nil {
		t.Fatalf("Factory(ProviderGemini) returned error: %v", err)
	}
	if _, ok := client.(*GeminiClient); !ok {
		t.Errorf("expected *GeminiClient, got %T", client)
	}
}

func TestFactoryReturnsOpenAIClient(t *testing.T) {
	client, err := Factory(context.Background(), ProviderOpenAI, "fake-key", "")
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := client.(*OpenAIClient); !ok {
		t.Errorf("expected *OpenAIClient, got %T", client)
	}
}

func TestFactoryReturnsAnthropicClient(t *testing.T) {
	client, err := Factory(context.Background(), ProviderAnthropic, "fake-key", "")
	if err != nil {
		t.Fatalf("Factory(ProviderAnthropic) returned error: %v", err)
	}
	if _, ok := client.(*AnthropicClient); !ok {
		t.Errorf("expected *AnthropicClient, got %T", client)
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	_, err := Factory(context.Background(), Provider("unknown"), "fake-key", "")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	for _, p := range []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic} {
		if _, err := Factory(context.Background(), p, "", ""); err == nil {
			t.Errorf("expected error for empty API key with %s", p)
		}
	}
}

func TestProviderEnvVar(t *testing.T) {
	tests := []struct {
		provider Provider
		want     string
	}{
		{ProviderGemini, "GEMINI_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{Provider("other"), "API_KEY"},
	}
	for _, tt := range tests {
		if got := tt.provider.EnvVar(); got != tt.want {
			t.Errorf("EnvVar(%s) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n[1,2]\n```", "[1,2]"},
		{"```\n[1,2]\n```", "[1,2]"},
		{"  [1,2]  ", "[1,2]"},
		{"[1,2]", "[1,2]"},
	}
	for _, tt := range tests {
		if got := CleanResponse(tt.in); got != tt.want {
			t.Errorf("CleanResponse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type testResult struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

func validTestResults(results []testResult) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}

func TestExtractArrayBare(t *testing.T) {
	results, err := ExtractArray(
		`[{"index":0,"text":"hola"}]`,
		validTestResults,
	)
	if err != nil {
		t.Fatalf("ExtractArray error: %v", err)
	}
	if len(results) != 1 || results[0].Text != "hola" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestExtractArrayWrapped(t *testing.T) {
	results, err := ExtractArray(
		`Here you go: {"results":[{"index":0,"text":"hola"},{"index":1,"text":"adios"}]}`,
		validTestResults,
	)
	if err != nil {
		t.Fatalf("ExtractArray error: %v", err)
	}
	if len(results) != 2 || results[1].Text != "adios" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestExtractArrayRepairsInvalidEscapes(t *testing.T) {
	results, err := ExtractArray(
		`[{"index":0,"text":"line one\Nline two"}]`,
		validTestResults,
	)
	if err != nil {
		t.Fatalf("ExtractArray error: %v", err)
	}
	if results[0].Text != `line one\Nline two` {
		t.Errorf("text = %q, want literal \\N preserved", results[0].Text)
	}
}

func TestExtractArrayNoJSON(t *testing.T) {
	if _, err := ExtractArray("sorry, I cannot help", validTestResults); err == nil {
		t.Error("expected error when response contains no JSON")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("ab", 3); got != "ab" {
		t.Errorf("Truncate = %q", got)
	}
}
