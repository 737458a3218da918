// Package quizgen generates practice-test questions for a flashcard set via
// an OpenAI-compatible text-completion gateway, falling back to a locally
// computed question set whenever the gateway misbehaves.
package quizgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/remcard/remcard/study"
)

// ErrNotConfigured is returned when no gateway API key is set.
var ErrNotConfigured = errors.New("quizgen: AI gateway not configured")

// Question is one generated quiz item.
type Question struct {
	Type          string   `json:"question_type"`
	Text          string   `json:"question_text"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []string `json:"options,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Supported question types.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeWritten        = "written"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	JsonMode bool          `json:"json_mode,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client talks to the chat-completions gateway.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL, apiKey, model string, log *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		log:        log,
	}
}

// Generate asks the gateway for count questions over the given cards. Any
// transport, status, or parse problem is returned as an error; callers decide
// whether to fall back.
func (c *Client) Generate(ctx context.Context, cards []study.Card, questionTypes []string, count int) ([]Question, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a quiz author. Respond with JSON only."},
			{Role: "user", Content: buildPrompt(cards, questionTypes, count)},
		},
		Stream:   false,
		JsonMode: true,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quizgen: gateway returned status %d", resp.StatusCode)
	}

	var apiResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("quizgen: decode response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, errors.New("quizgen: gateway returned no choices")
	}

	content := cleanJSON(apiResp.Choices[0].Message.Content)
	questions, err := parseQuestions(content)
	if err != nil {
		c.log.Warn("unparseable gateway content",
			zap.Error(err),
			zap.String("content", content),
		)
		return nil, err
	}
	return questions, nil
}

func buildPrompt(cards []study.Card, questionTypes []string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d quiz questions of types %s for the flashcards below.\n", count, strings.Join(questionTypes, ", "))
	b.WriteString("Return a JSON array of objects with keys question_type, question_text, correct_answer, options (multiple choice only), explanation.\n\n")
	for _, card := range cards {
		fmt.Fprintf(&b, "Term: %s\nDefinition: %s\n---\n", card.Term, card.Definition)
	}
	return b.String()
}

// parseQuestions accepts either a bare array or an object wrapping one under
// a "questions" key; gateways are inconsistent about which they produce.
func parseQuestions(content string) ([]Question, error) {
	var questions []Question
	if err := json.Unmarshal([]byte(content), &questions); err == nil {
		return questions, nil
	}

	var wrapped struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Questions == nil {
		return nil, errors.New("quizgen: no questions in gateway content")
	}
	return wrapped.Questions, nil
}

// cleanJSON strips markdown code fences some models wrap around JSON output.
func cleanJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
