package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type staticTokens struct {
	token string
}

func (s *staticTokens) Token(_ context.Context, _ string) (string, bool) {
	return s.token, s.token != ""
}

type recordingEvictor struct {
	mu      sync.Mutex
	evicted []string
}

func (r *recordingEvictor) Evict(_ context.Context, scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evicted = append(r.evicted, scope)
}

func (r *recordingEvictor) scopes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.evicted...)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := New(srv.URL, zerolog.Nop(), WithTokenSource(&staticTokens{token: "tok-1"}))

	if _, err := client.Appointments(context.Background(), "v"); err != nil {
		t.Fatalf("Appointments failed: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("expected 'Bearer tok-1', got %q", gotAuth)
	}
}

func TestClient_UnauthorizedEvictsAndNavigates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	evictor := &recordingEvictor{}
	navigated := make(chan string, 1)
	client := New(srv.URL, zerolog.Nop(),
		WithTokenSource(&staticTokens{token: "stale"}),
		WithSessionEvictor(evictor),
		WithNavigate(func(scope, path string) { navigated <- path }),
	)

	_, err := client.Appointments(context.Background(), "v")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// Eviction is immediate.
	if scopes := evictor.scopes(); len(scopes) != 1 || scopes[0] != "v" {
		t.Errorf("expected scope 'v' evicted, got %v", scopes)
	}

	// The navigation fires after a short settling delay.
	select {
	case path := <-navigated:
		if path != "/login" {
			t.Errorf("expected navigation to '/login', got %q", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected deferred navigation to fire")
	}
}

func TestClient_AnonLoginFailureDoesNotEvict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	evictor := &recordingEvictor{}
	client := New(srv.URL, zerolog.Nop(),
		WithTokenSource(&staticTokens{token: "existing-session"}),
		WithSessionEvictor(evictor),
	)

	// Bad credentials on login must not tear down the session the visitor
	// already holds.
	_, _, err := client.Login(context.Background(), "v", "a@b.com", "wrong")
	if err == nil {
		t.Fatal("expected login to fail")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Error("expected a status error, not session eviction")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 StatusError, got %v", err)
	}

	if scopes := evictor.scopes(); len(scopes) != 0 {
		t.Errorf("expected no eviction, got %v", scopes)
	}
}

func TestClient_AnonSkipsTokenAttach(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"token":"fresh","user":{"email":"a@b.com","role":"patient"}}`))
	}))
	defer srv.Close()

	client := New(srv.URL, zerolog.Nop(), WithTokenSource(&staticTokens{token: "stale"}))

	if _, _, err := client.Login(context.Background(), "v", "a@b.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header on login, got %q", gotAuth)
	}
}

func TestClient_TransportFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := New(srv.URL, zerolog.Nop())

	_, err := client.Appointments(context.Background(), "v")
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("expected ErrUnreachable, got %v", err)
	}
}

func TestClient_StatusErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "message field", body: `{"message":"Slot already booked"}`, want: "Slot already booked"},
		{name: "error field", body: `{"error":"Doctor not found"}`, want: "Doctor not found"},
		{name: "plain text", body: "Internal Server Error", want: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := New(srv.URL, zerolog.Nop())

			_, err := client.Appointments(context.Background(), "v")
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if statusErr.Message != tt.want {
				t.Errorf("expected message %q, got %q", tt.want, statusErr.Message)
			}
		})
	}
}

func TestClient_PathsAreUnderAPIPrefix(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := New(srv.URL, zerolog.Nop())

	if _, err := client.Hospitals(context.Background(), "v", ""); err != nil {
		t.Fatalf("Hospitals failed: %v", err)
	}
	if gotPath != "/api/hospitals" {
		t.Errorf("expected path '/api/hospitals', got %q", gotPath)
	}
}
