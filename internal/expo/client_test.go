package expo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsLikelyExpoToken(t *testing.T) {
	cases := []struct {
		token string
		want  bool
	}{
		{"ExponentPushToken[abc]", true},
		{"ExpoPushToken[xyz-123]", true},
		{"garbage", false},
		{"garbage-token", false},
		{"", false},
		{"ExponentPushToken[abc", false},
		{"exponentpushtoken[abc]", false},
		{"fcm:APA91b-long-opaque-token", false},
	}

	for _, tc := range cases {
		if got := IsLikelyExpoToken(tc.token); got != tc.want {
			t.Errorf("IsLikelyExpoToken(%q) = %v, want %v", tc.token, got, tc.want)
		}
	}
}

func TestClientSend(t *testing.T) {
	var received []PushMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"status":"ok","id":"ticket-1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.Send(context.Background(), PushMessage{
		To:    "ExponentPushToken[abc]",
		Title: "A note from Sam",
		Body:  "Thinking of you.",
		Sound: "default",
		Data:  map[string]string{"type": "persona_message"},
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if resp == nil {
		t.Fatal("expected parsed gateway response, got nil")
	}
	if len(received) != 1 {
		t.Fatalf("expected 1 message in payload, got %d", len(received))
	}
	if received[0].To != "ExponentPushToken[abc]" || received[0].Body != "Thinking of you." {
		t.Errorf("unexpected payload: %+v", received[0])
	}
}

func TestClientSendGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"code":"VALIDATION_ERROR"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.Send(context.Background(), PushMessage{To: "ExponentPushToken[abc]"})
	if err == nil {
		t.Fatal("expected error for non-2xx gateway response")
	}
	if resp == nil {
		t.Error("expected parsed response body alongside the error")
	}
}

func TestClientSendNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed server refuses connections

	client := NewClient(srv.URL)
	if _, err := client.Send(context.Background(), PushMessage{To: "ExponentPushToken[abc]"}); err == nil {
		t.Fatal("expected transport error")
	}
}
