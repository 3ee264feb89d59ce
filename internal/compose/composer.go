package compose

import (
	"context"
	"fmt"
	"strings"

	notificationsmodels "io.winapps.heartline/internal/models/notifications"
)

// MaxBodyChars is the display budget for a notification body.
const MaxBodyChars = 180

const maxSentences = 2

// rawCap bounds how much of an oversized completion the sanitizer even looks at.
const rawCap = 600

// Message is the title/body pair handed to the push gateway.
type Message struct {
	Title string
	Body  string
}

// Composer builds the outbound notification for one recipient. The returned
// Message is always usable: when the error is non-nil it describes why the
// composer degraded to its deterministic fallback, and callers record it but
// still send.
type Composer interface {
	Compose(ctx context.Context, profile *notificationsmodels.Profile) (Message, error)
}

// StaticComposer interpolates a fixed template. It cannot fail.
type StaticComposer struct{}

func (StaticComposer) Compose(_ context.Context, profile *notificationsmodels.Profile) (Message, error) {
	sender, recipient := personaNames(profile)
	return Message{
		Title: fmt.Sprintf("A note from %s", sender),
		Body:  Sanitize(fmt.Sprintf("%s is thinking about you, %s. Open the app whenever you feel like talking.", sender, recipient)),
	}, nil
}

// Fallback is the deterministic message used when composition degrades. It is
// bounded by the same budget as any other body and never fails.
func Fallback(profile *notificationsmodels.Profile) Message {
	sender, recipient := personaNames(profile)
	return Message{
		Title: fmt.Sprintf("A note from %s", sender),
		Body:  Sanitize(fmt.Sprintf("Hey %s, I'm here whenever you need me. Come say hi when you have a minute.", recipient)),
	}
}

func personaNames(profile *notificationsmodels.Profile) (sender, recipient string) {
	sender, recipient = "Someone", "you"
	if profile != nil {
		if s := strings.TrimSpace(profile.DisplayName); s != "" {
			sender = s
		}
		if r := strings.TrimSpace(profile.RecipientName); r != "" {
			recipient = r
		}
	}
	return sender, recipient
}

// Sanitize normalizes completion output into something safe to display:
// whitespace collapsed, at most two sentences, hard-capped at MaxBodyChars.
func Sanitize(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	if runes := []rune(s); len(runes) > rawCap {
		s = string(runes[:rawCap])
	}
	s = limitSentences(s, maxSentences)
	if runes := []rune(s); len(runes) > MaxBodyChars {
		s = strings.TrimSpace(string(runes[:MaxBodyChars-1])) + "…"
	}
	return s
}

// limitSentences cuts s after the max-th sentence boundary, where a boundary
// is '.', '!' or '?' followed by a space.
func limitSentences(s string, max int) string {
	count := 0
	for i := 0; i+1 < len(s); i++ {
		if (s[i] == '.' || s[i] == '!' || s[i] == '?') && s[i+1] == ' ' {
			count++
			if count == max {
				return s[:i+1]
			}
		}
	}
	return s
}
