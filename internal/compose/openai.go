package compose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	notificationsmodels "io.winapps.heartline/internal/models/notifications"
)

// DefaultCompletionsURL is the OpenAI chat-completions endpoint.
const DefaultCompletionsURL = "https://api.openai.com/v1/chat/completions"

const systemPromptBase = `You are writing one short push notification from a caring companion to the person they support.

Rules you must never break:
- Never give medical, legal, or psychiatric advice, and never diagnose anything.
- If self-harm comes up, gently encourage reaching out to people or professionals in their life.
- Write in English only.
- Write at most two sentences.
- Output only the notification text, nothing else.`

const userTurn = "Generate the push notification now."

// AIComposer asks a chat-completions endpoint for a short personalized
// message. Every failure path degrades to the deterministic fallback, so
// Compose always hands back a sendable Message.
type AIComposer struct {
	apiKey      string
	model       string
	url         string
	temperature float64
	httpClient  *http.Client
}

func NewAIComposer(apiKey, model, url string) *AIComposer {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if url == "" {
		url = DefaultCompletionsURL
	}
	return &AIComposer{
		apiKey:      apiKey,
		model:       model,
		url:         url,
		temperature: 0.8,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (a *AIComposer) Compose(ctx context.Context, profile *notificationsmodels.Profile) (Message, error) {
	sender, _ := personaNames(profile)

	raw, err := a.complete(ctx, buildSystemPrompt(profile))
	if err != nil {
		return Fallback(profile), err
	}

	body := Sanitize(raw)
	if body == "" {
		return Fallback(profile), fmt.Errorf("completion was empty after sanitization")
	}

	return Message{
		Title: fmt.Sprintf("New message from %s", sender),
		Body:  body,
	}, nil
}

func (a *AIComposer) complete(ctx context.Context, systemPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userTurn},
		},
		Temperature: a.temperature,
		MaxTokens:   80,
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("completion provider returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response had no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func buildSystemPrompt(profile *notificationsmodels.Profile) string {
	sender, recipient := personaNames(profile)

	var sb strings.Builder
	sb.WriteString(systemPromptBase)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "You are %s, writing to %s.", sender, recipient)
	if profile != nil {
		if tone := strings.TrimSpace(profile.Tone); tone != "" {
			fmt.Fprintf(&sb, " Your tone: %s.", tone)
		}
		if rel := strings.TrimSpace(profile.RelationshipStatus); rel != "" {
			fmt.Fprintf(&sb, " Your relationship: %s.", rel)
		}
		if len(profile.SpecialWords) > 0 {
			if nickname := strings.TrimSpace(profile.SpecialWords[0]); nickname != "" {
				fmt.Fprintf(&sb, " You sometimes call them %q.", nickname)
			}
		}
	}
	return sb.String()
}
