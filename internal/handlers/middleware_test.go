package handlers

import (
	"errors"
	"net/http"
	"testing"
)

func TestUserIdMiddleware_MissingHeader(t *testing.T) {
	svc, _, _, _ := newMockedService()
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/v1/furnaces", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestUserIdMiddleware_MalformedHeader(t *testing.T) {
	svc, _, _, _ := newMockedService()
	router := newTestRouter(svc)

	for _, value := range []string{"Bearer", "Basic abc", "token-without-scheme"} {
		header := http.Header{}
		header.Set("Authorization", value)
		w := doRequest(router, http.MethodGet, "/api/v1/furnaces", nil, header)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%q: status = %d, want 401", value, w.Code)
		}
	}
}

func TestUserIdMiddleware_InvalidToken(t *testing.T) {
	svc, _, _, _ := newMockedService()
	svc.Authorization = &mockAuth{parseErr: errors.New("expired")}
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/v1/furnaces", nil, authHeader("stale"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestUserIdMiddleware_ValidTokenPassesThrough(t *testing.T) {
	svc, _, _, _ := newMockedService()
	auth := &mockAuth{parseID: 9}
	svc.Authorization = auth
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/v1/furnaces", nil, authHeader("good-token"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if auth.lastParseToken != "good-token" {
		t.Fatalf("parsed token = %q, want good-token", auth.lastParseToken)
	}
}
