package enhance_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kundan1729/promptly-server/internal/enhance"
)

// fakeGroq answers /chat/completions with a fixed message content and
// records the last request payload.
func fakeGroq(t *testing.T, content string) (*httptest.Server, *map[string]any) {
	t.Helper()
	var lastRequest map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&lastRequest); err != nil {
			t.Errorf("decode request: %v", err)
		}

		fmt.Fprintf(w, `{"choices":[{"message":{"content":%s}}]}`, mustJSON(content))
	}))
	return srv, &lastRequest
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestEnhance_ParsesJSONAnswer(t *testing.T) {
	srv, lastRequest := fakeGroq(t, `{"enhanced": "a better prompt"}`)
	defer srv.Close()

	client := enhance.NewClient(srv.URL, "test-key")
	got, err := client.Enhance(context.Background(), "a prompt", enhance.Rules{Grammar: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a better prompt" {
		t.Errorf("enhanced = %q", got)
	}

	req := *lastRequest
	if req["model"] != "llama3-70b-8192" {
		t.Errorf("model = %v", req["model"])
	}

	messages, _ := req["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %v", messages)
	}
	system, _ := messages[0].(map[string]any)
	content, _ := system["content"].(string)
	if !strings.Contains(content, "improving grammar, clarity, and structure") {
		t.Errorf("system prompt %q missing grammar instruction", content)
	}
	if strings.Contains(content, "more specific and detailed") {
		t.Errorf("system prompt %q includes an unselected rule", content)
	}
}

func TestEnhance_AllRulesOffMeansAll(t *testing.T) {
	srv, lastRequest := fakeGroq(t, `{"enhanced": "x"}`)
	defer srv.Close()

	client := enhance.NewClient(srv.URL, "test-key")
	if _, err := client.Enhance(context.Background(), "a prompt", enhance.Rules{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	messages := (*lastRequest)["messages"].([]any)
	content := messages[0].(map[string]any)["content"].(string)
	for _, want := range []string{
		"more specific and detailed",
		"adding relevant context",
		"improving grammar",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("system prompt missing %q with no rules selected", want)
		}
	}
}

func TestEnhance_FallsBackToRawText(t *testing.T) {
	srv, _ := fakeGroq(t, "  Here is your improved prompt.  ")
	defer srv.Close()

	client := enhance.NewClient(srv.URL, "test-key")
	got, err := client.Enhance(context.Background(), "a prompt", enhance.Rules{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Here is your improved prompt." {
		t.Errorf("enhanced = %q, want trimmed raw text", got)
	}
}

func TestEnhance_NoAPIKey(t *testing.T) {
	client := enhance.NewClient("http://localhost:0", "")
	if _, err := client.Enhance(context.Background(), "a prompt", enhance.Rules{}); !errors.Is(err, enhance.ErrNotConfigured) {
		t.Errorf("want ErrNotConfigured, got %v", err)
	}
}

func TestEnhance_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := enhance.NewClient(srv.URL, "test-key")
	if _, err := client.Enhance(context.Background(), "a prompt", enhance.Rules{}); err == nil {
		t.Error("expected error for non-200 upstream response")
	}
}

func TestFeedback_UsesStrictFormatPrompt(t *testing.T) {
	srv, lastRequest := fakeGroq(t, "Feedback: fine\nSuggestions:\n- none\nRating: 7")
	defer srv.Close()

	client := enhance.NewClient(srv.URL, "test-key")
	got, err := client.Feedback(context.Background(), "a prompt", "persona")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "Feedback:") {
		t.Errorf("result = %q", got)
	}

	messages := (*lastRequest)["messages"].([]any)
	content := messages[0].(map[string]any)["content"].(string)
	if !strings.Contains(content, "Rating: <single integer out of 10>") {
		t.Errorf("system prompt %q missing format contract", content)
	}
	if !strings.Contains(content, "Pattern: persona") {
		t.Errorf("system prompt %q missing pattern", content)
	}
}

func TestPatternize_SendsPatternInUserPrompt(t *testing.T) {
	srv, lastRequest := fakeGroq(t, "rewritten prompt")
	defer srv.Close()

	client := enhance.NewClient(srv.URL, "test-key")
	got, err := client.Patternize(context.Background(), "a prompt", "flipped interaction")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "rewritten prompt" {
		t.Errorf("result = %q", got)
	}

	messages := (*lastRequest)["messages"].([]any)
	user := messages[1].(map[string]any)["content"].(string)
	if !strings.Contains(user, `"flipped interaction"`) {
		t.Errorf("user prompt %q missing pattern", user)
	}
}

func TestChatCompletion_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	client := enhance.NewClient(srv.URL, "test-key")
	if _, err := client.Feedback(context.Background(), "a prompt", ""); err == nil {
		t.Error("expected error for empty choices")
	}
}
