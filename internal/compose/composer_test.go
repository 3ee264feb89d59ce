package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	notificationsmodels "io.winapps.heartline/internal/models/notifications"
)

func countSentences(s string) int {
	n := 0
	for i := 0; i+1 < len(s); i++ {
		if (s[i] == '.' || s[i] == '!' || s[i] == '?') && s[i+1] == ' ' {
			n++
		}
	}
	return n + 1
}

func TestSanitizeCollapsesWhitespace(t *testing.T) {
	got := Sanitize("  hey   there\n\nfriend\t ")
	if got != "hey there friend" {
		t.Errorf("Sanitize = %q", got)
	}
}

func TestSanitizeNeverExceedsBudget(t *testing.T) {
	long := strings.Repeat("wordwordword ", 200)
	got := Sanitize(long)
	if n := len([]rune(got)); n > MaxBodyChars {
		t.Errorf("sanitized length %d exceeds budget %d", n, MaxBodyChars)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis truncation, got %q", got)
	}
}

func TestSanitizeBudgetWithMultibyteRunes(t *testing.T) {
	long := strings.Repeat("héllo wörld ", 100)
	if n := len([]rune(Sanitize(long))); n > MaxBodyChars {
		t.Errorf("sanitized rune length %d exceeds budget %d", n, MaxBodyChars)
	}
}

func TestSanitizeCapsSentences(t *testing.T) {
	got := Sanitize("One. Two! Three? Four.")
	if got != "One. Two!" {
		t.Errorf("Sanitize = %q, want two sentences", got)
	}
	if countSentences(got) > 2 {
		t.Errorf("got %d sentences", countSentences(got))
	}
}

func TestSanitizeShortInputUntouched(t *testing.T) {
	if got := Sanitize("Thinking of you today."); got != "Thinking of you today." {
		t.Errorf("Sanitize = %q", got)
	}
}

func TestStaticComposerDefaults(t *testing.T) {
	msg, err := StaticComposer{}.Compose(context.Background(), nil)
	if err != nil {
		t.Fatalf("static composer returned error: %v", err)
	}
	if msg.Title != "A note from Someone" {
		t.Errorf("title = %q", msg.Title)
	}
	if !strings.Contains(msg.Body, "Someone") || !strings.Contains(msg.Body, "you") {
		t.Errorf("body missing defaults: %q", msg.Body)
	}
}

func TestStaticComposerUsesProfileNames(t *testing.T) {
	profile := &notificationsmodels.Profile{DisplayName: "Sam", RecipientName: "Alex"}
	msg, _ := StaticComposer{}.Compose(context.Background(), profile)
	if msg.Title != "A note from Sam" {
		t.Errorf("title = %q", msg.Title)
	}
	if !strings.Contains(msg.Body, "Alex") {
		t.Errorf("body = %q", msg.Body)
	}
}

func completionServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding completion request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if status >= 300 {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error":{"message":"boom"}}`)
			return
		}
		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: content}})
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestAIComposerSanitizesCompletion(t *testing.T) {
	long := strings.Repeat("I am so proud of you. ", 50)
	srv := completionServer(t, long, http.StatusOK)
	defer srv.Close()

	c := NewAIComposer("test-key", "gpt-4o-mini", srv.URL)
	profile := &notificationsmodels.Profile{DisplayName: "Sam", RecipientName: "Alex", Tone: "warm"}
	msg, err := c.Compose(context.Background(), profile)
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if msg.Title != "New message from Sam" {
		t.Errorf("title = %q", msg.Title)
	}
	if n := len([]rune(msg.Body)); n > MaxBodyChars {
		t.Errorf("body length %d exceeds budget", n)
	}
	if countSentences(msg.Body) > 2 {
		t.Errorf("body has %d sentences: %q", countSentences(msg.Body), msg.Body)
	}
}

func TestAIComposerFallbackOnProviderError(t *testing.T) {
	srv := completionServer(t, "", http.StatusInternalServerError)
	defer srv.Close()

	c := NewAIComposer("test-key", "", srv.URL)
	msg, err := c.Compose(context.Background(), &notificationsmodels.Profile{RecipientName: "Alex"})
	if err == nil {
		t.Fatal("expected advisory error on provider failure")
	}
	if msg.Body == "" {
		t.Fatal("fallback body must be non-empty")
	}
	if n := len([]rune(msg.Body)); n > MaxBodyChars {
		t.Errorf("fallback length %d exceeds budget", n)
	}
}

func TestAIComposerFallbackOnUnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewAIComposer("test-key", "", srv.URL)
	msg, err := c.Compose(context.Background(), nil)
	if err == nil {
		t.Fatal("expected advisory error on transport failure")
	}
	if msg.Body == "" {
		t.Fatal("fallback body must be non-empty")
	}
}

func TestAIComposerFallbackOnEmptyCompletion(t *testing.T) {
	srv := completionServer(t, "   \n\t ", http.StatusOK)
	defer srv.Close()

	c := NewAIComposer("test-key", "", srv.URL)
	msg, err := c.Compose(context.Background(), nil)
	if err == nil {
		t.Fatal("expected advisory error for empty completion")
	}
	if msg.Body == "" {
		t.Fatal("fallback body must be non-empty")
	}
}

func TestBuildSystemPromptIncludesPersona(t *testing.T) {
	profile := &notificationsmodels.Profile{
		DisplayName:        "Sam",
		RecipientName:      "Alex",
		Tone:               "gentle and playful",
		RelationshipStatus: "long-distance partner",
		SpecialWords:       []string{"sunshine", "ignored"},
	}
	prompt := buildSystemPrompt(profile)
	for _, want := range []string{"Sam", "Alex", "gentle and playful", "long-distance partner", `"sunshine"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "ignored") {
		t.Error("prompt should use at most one special word")
	}
}
