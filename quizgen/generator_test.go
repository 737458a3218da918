package quizgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/remcard/remcard/study"
)

var testCards = []study.Card{
	{ID: "1", Term: "ATP", Definition: "adenosine triphosphate"},
	{ID: "2", Term: "DNA", Definition: "deoxyribonucleic acid"},
	{ID: "3", Term: "RNA", Definition: "ribonucleic acid"},
}

func gatewayReturning(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateParsesArray(t *testing.T) {
	srv := gatewayReturning(t, `[
		{"question_type":"written","question_text":"Define ATP","correct_answer":"adenosine triphosphate"}
	]`)
	client := NewClient(srv.URL, "test-key", "deepseek-chat", zap.NewNop())

	questions, err := client.Generate(context.Background(), testCards, []string{TypeWritten}, 1)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, TypeWritten, questions[0].Type)
	assert.Equal(t, "adenosine triphosphate", questions[0].CorrectAnswer)
}

func TestGenerateParsesFencedWrappedObject(t *testing.T) {
	srv := gatewayReturning(t, "```json\n{\"questions\":[{\"question_type\":\"true_false\",\"question_text\":\"ATP stores energy\",\"correct_answer\":\"true\"}]}\n```")
	client := NewClient(srv.URL, "test-key", "deepseek-chat", zap.NewNop())

	questions, err := client.Generate(context.Background(), testCards, []string{TypeTrueFalse}, 1)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, TypeTrueFalse, questions[0].Type)
}

func TestGenerateMalformedContent(t *testing.T) {
	srv := gatewayReturning(t, "Sorry, I can't help with that.")
	client := NewClient(srv.URL, "test-key", "deepseek-chat", zap.NewNop())

	_, err := client.Generate(context.Background(), testCards, []string{TypeWritten}, 1)
	assert.Error(t, err)
}

func TestGenerateNoAPIKey(t *testing.T) {
	client := NewClient("http://unused", "", "deepseek-chat", zap.NewNop())
	_, err := client.Generate(context.Background(), testCards, []string{TypeWritten}, 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGeneratorFallsBackOnGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	gen := &Generator{
		Client: NewClient(srv.URL, "test-key", "deepseek-chat", zap.NewNop()),
		Log:    zap.NewNop(),
	}

	questions := gen.Questions(context.Background(), testCards, []string{TypeMultipleChoice}, 3)
	require.Len(t, questions, 3, "fallback must keep the feature working")
	for _, q := range questions {
		assert.Equal(t, TypeMultipleChoice, q.Type)
		assert.Contains(t, q.Options, q.CorrectAnswer)
	}
}

func TestFallbackDeterministic(t *testing.T) {
	first := Fallback(testCards, 3)
	second := Fallback(testCards, 3)
	assert.Equal(t, first, second)

	require.Len(t, first, 3)
	assert.Equal(t, `What is the definition of "ATP"?`, first[0].Text)
	assert.Equal(t, "adenosine triphosphate", first[0].CorrectAnswer)
	// Distractors follow deck order.
	assert.Equal(t, []string{
		"adenosine triphosphate",
		"deoxyribonucleic acid",
		"ribonucleic acid",
	}, first[0].Options)
}

func TestFallbackCountClamped(t *testing.T) {
	assert.Len(t, Fallback(testCards, 99), 3)
	assert.Len(t, Fallback(testCards, 0), 3)
	assert.Len(t, Fallback(testCards, 2), 2)
}
