package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"tubedash-backend/internal/models"
)

func TestRequireValidToken(t *testing.T) {
	auth := NewSessionAuth("test-secret", nil)
	user := models.SessionUser{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}

	token, err := auth.GenerateToken(user, "upstream-token", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	var got *models.Session
	handler := auth.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetSession(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channel", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if got == nil {
		t.Fatal("Session not attached to context")
	}
	if got.User.ID != user.ID || got.User.Email != user.Email || got.User.Name != user.Name {
		t.Errorf("Session user = %+v, want %+v", got.User, user)
	}
	if got.AccessToken != "upstream-token" {
		t.Errorf("AccessToken = %q, want upstream-token", got.AccessToken)
	}
}

func TestRequireRejectsBadTokens(t *testing.T) {
	auth := NewSessionAuth("test-secret", nil)
	other := NewSessionAuth("other-secret", nil)
	user := models.SessionUser{ID: uuid.New()}

	wrongKey, err := other.GenerateToken(user, "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	expired, err := auth.GenerateToken(user, "", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong signing key", "Bearer " + wrongKey},
		{"expired token", "Bearer " + expired},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := auth.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("Handler should not be reached")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/channel", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("Status = %d, want 401", rec.Code)
			}
			var resp models.Response
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if resp.Success || resp.Error == "" {
				t.Errorf("401 body should carry success=false and an error, got %+v", resp)
			}
		})
	}
}

func TestOptionalLetsAnonymousThrough(t *testing.T) {
	auth := NewSessionAuth("test-secret", nil)

	var sawSession bool
	handler := auth.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSession = GetSession(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/abc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if sawSession {
		t.Error("Anonymous request should carry no session")
	}
	if GetUserID(req.Context()) != uuid.Nil {
		t.Error("GetUserID should be uuid.Nil for anonymous traffic")
	}
}

func TestOptionalAttachesValidSession(t *testing.T) {
	auth := NewSessionAuth("test-secret", nil)
	user := models.SessionUser{ID: uuid.New()}
	token, err := auth.GenerateToken(user, "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	var gotID uuid.UUID
	handler := auth.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetUserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotID != user.ID {
		t.Errorf("GetUserID = %v, want %v", gotID, user.ID)
	}
}
