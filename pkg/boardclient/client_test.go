package boardclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatalf("decode login body: %v", err)
		}
		if creds["password"] != "secret1" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "session-token", Path: "/", HttpOnly: true})
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]string{"id": "user_1", "email": creds["email"]},
			"token": "session-token",
		})
	})

	mux.HandleFunc("GET /auth/profile", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("token")
		if err != nil || ck.Value != "session-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]string{"id": "user_1", "name": "Alice"},
		})
	})

	mux.HandleFunc("PUT /tasks/task_1", func(w http.ResponseWriter, r *http.Request) {
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			t.Fatalf("decode patch body: %v", err)
		}
		// a partial patch must carry only the fields being changed
		if len(patch) != 1 {
			t.Fatalf("expected single-field patch, got %+v", patch)
		}
		status, ok := patch["status"].(string)
		if !ok {
			t.Fatalf("expected status in patch, got %+v", patch)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "task_1", "title": "report", "status": status, "priority": "medium", "revision": 2,
		})
	})

	mux.HandleFunc("GET /tasks/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "task not found"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SessionCookieFlow(t *testing.T) {
	srv := newTestServer(t)
	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := context.Background()

	// not logged in yet
	if _, err := client.Profile(ctx); err == nil {
		t.Fatalf("expected error before login")
	}

	user, err := client.Login(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != "user_1" {
		t.Fatalf("unexpected user: %+v", user)
	}

	// the jar carries the cookie on subsequent calls
	profile, err := client.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if profile.Name != "Alice" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestClient_Login_Failure(t *testing.T) {
	srv := newTestServer(t)
	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_, err = client.Login(context.Background(), "alice@example.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "invalid credentials" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestClient_UpdateTask_SparsePatch(t *testing.T) {
	srv := newTestServer(t)
	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	status := "in-progress"
	task, err := client.UpdateTask(context.Background(), "task_1", TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}
	if task.Status != "in-progress" || task.Revision != 2 {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestClient_GetTask_NotFound(t *testing.T) {
	srv := newTestServer(t)
	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_, err = client.GetTask(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", apiErr.Status)
	}
}
