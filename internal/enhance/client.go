// Package enhance calls the Groq chat-completions API (OpenAI-compatible)
// to improve, critique, and patternize prompts.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const model = "llama3-70b-8192"

// ErrNotConfigured is returned when no API key was supplied.
var ErrNotConfigured = errors.New("groq api key not configured")

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Rules selects which improvements to apply. All false means apply all.
type Rules struct {
	Specificity bool `json:"specificity"`
	Context     bool `json:"context"`
	Grammar     bool `json:"grammar"`
}

// Enhance rewrites a prompt according to the rules. The model is asked
// for single-line JSON {"enhanced": ...}; if it answers with anything
// else, the raw text is used as-is.
func (c *Client) Enhance(ctx context.Context, prompt string, rules Rules) (string, error) {
	applyAll := !rules.Specificity && !rules.Context && !rules.Grammar

	var improvements []string
	if applyAll || rules.Specificity {
		improvements = append(improvements, "making it more specific and detailed")
	}
	if applyAll || rules.Context {
		improvements = append(improvements, "adding relevant context and background information")
	}
	if applyAll || rules.Grammar {
		improvements = append(improvements, "improving grammar, clarity, and structure")
	}

	systemPrompt := fmt.Sprintf(
		"You are a prompt enhancement expert. Your task is to improve the given prompt by %s.\n"+
			"Return ONLY a single line of valid JSON with the key \"enhanced\" containing the improved prompt.\n"+
			"Do NOT include any explanation, markdown, or extra text.\n"+
			`Example: {"enhanced": "Your enhanced prompt here"}`+"\n",
		strings.Join(improvements, ", "),
	)
	userPrompt := fmt.Sprintf("Please enhance this prompt: %q", prompt)

	content, err := c.chatCompletion(ctx, systemPrompt, userPrompt, 1000)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Enhanced string `json:"enhanced"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err == nil && parsed.Enhanced != "" {
		return strings.TrimSpace(parsed.Enhanced), nil
	}
	return strings.TrimSpace(content), nil
}

// Feedback asks for a critique of the prompt in a strict
// Feedback/Suggestions/Rating format.
func (c *Client) Feedback(ctx context.Context, prompt, pattern string) (string, error) {
	systemPrompt := fmt.Sprintf(
		"You are an expert in prompt engineering. Analyze the following prompt and respond in the following strict format:\n\n"+
			"Feedback: <one paragraph>\n"+
			"Suggestions: <bullet list, each starting with '- '>\n"+
			"Rating: <single integer out of 10>\n\n"+
			"Do not use markdown, do not add extra sections, do not add explanations.\n\n"+
			"Prompt:\n%q\nPattern: %s",
		prompt, pattern,
	)
	return c.chatCompletion(ctx, systemPrompt, prompt, 1000)
}

// Patternize rewrites a prompt to align with a named prompt pattern,
// returning only the improved prompt.
func (c *Client) Patternize(ctx context.Context, prompt, pattern string) (string, error) {
	userPrompt := fmt.Sprintf(
		"You are an expert prompt engineer. Rewrite the following prompt to be clearer, more complete, "+
			"and better aligned with the %q pattern. Only return the improved prompt, nothing else.\n\nPrompt:\n%s",
		pattern, prompt,
	)
	return c.chatCompletion(ctx, "You are a helpful AI assistant.", userPrompt, 512)
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) chatCompletion(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call groq: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq returned %d: %s", resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion from groq")
	}
	return parsed.Choices[0].Message.Content, nil
}
