package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/identifier"
	"github.com/MrEthical07/goSession/kvstore"
)

// stubAuthClient answers authenticated for a fixed set of users.
type stubAuthClient struct {
	live map[string]bool
}

func (s *stubAuthClient) GetAuthorizationURL(context.Context, *goSession.SignInOptions, string) (string, error) {
	return "https://idp.example.com/oauth2/authorize", nil
}

func (s *stubAuthClient) RequestAccessToken(ctx context.Context, code, sessionState, state, userID string) (*goSession.TokenResult, error) {
	return &goSession.TokenResult{AccessToken: "access-token-1", ExpiresIn: 60}, nil
}

func (s *stubAuthClient) RefreshAccessToken(ctx context.Context, userID string) (*goSession.TokenResult, error) {
	if !s.live[userID] {
		return nil, goSession.ErrRefreshFailed
	}
	return &goSession.TokenResult{AccessToken: "access-token-1", ExpiresIn: 60}, nil
}

func (s *stubAuthClient) IsAuthenticated(ctx context.Context, userID string) (bool, error) {
	return s.live[userID], nil
}

func (s *stubAuthClient) GetSignOutURL(context.Context, string) (string, error) {
	return "https://idp.example.com/oidc/logout", nil
}

func (s *stubAuthClient) GetIDToken(context.Context, string) (string, error)     { return "", nil }
func (s *stubAuthClient) GetAccessToken(context.Context, string) (string, error) { return "", nil }
func (s *stubAuthClient) GetBasicUserInfo(context.Context, string) (*goSession.BasicUserInfo, error) {
	return &goSession.BasicUserInfo{}, nil
}
func (s *stubAuthClient) GetDecodedIDToken(context.Context, string) (goSession.IDTokenClaims, error) {
	return goSession.IDTokenClaims{}, nil
}
func (s *stubAuthClient) ClearUserSession(ctx context.Context, userID string) error {
	delete(s.live, userID)
	return nil
}

func newGuardEngine(t *testing.T, client goSession.AuthClient) *goSession.Engine {
	t.Helper()

	cfg := goSession.Config{
		ClientID:          "app-client-id",
		ServerOrigin:      "https://idp.example.com",
		SignInRedirectURL: "https://app.example.com/callback",
	}
	engine, err := goSession.New().
		WithConfig(cfg).
		WithStore(kvstore.NewMemoryStore(0)).
		WithAuthClient(client).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func guardedRecorder(t *testing.T, engine *goSession.Engine, cookie *http.Cookie) (*httptest.ResponseRecorder, *string) {
	t.Helper()

	var seenUserID string
	handler := RequireAuthenticated(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := UserIDFromContext(r.Context()); ok {
			seenUserID = id
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, &seenUserID
}

func TestGuardAdmitsLiveSession(t *testing.T) {
	userID := identifier.New()
	engine := newGuardEngine(t, &stubAuthClient{live: map[string]bool{userID: true}})

	rec, seen := guardedRecorder(t, engine, &http.Cookie{Name: DefaultCookieName, Value: userID})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if *seen != userID {
		t.Fatalf("expected user id %q in context, got %q", userID, *seen)
	}
}

func TestGuardRejectsMissingCookie(t *testing.T) {
	engine := newGuardEngine(t, &stubAuthClient{live: map[string]bool{}})

	rec, _ := guardedRecorder(t, engine, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGuardRejectsMalformedCookie(t *testing.T) {
	engine := newGuardEngine(t, &stubAuthClient{live: map[string]bool{}})

	rec, _ := guardedRecorder(t, engine, &http.Cookie{Name: DefaultCookieName, Value: "not-a-uuid"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGuardRejectsLoggedOutUser(t *testing.T) {
	engine := newGuardEngine(t, &stubAuthClient{live: map[string]bool{}})

	rec, _ := guardedRecorder(t, engine, &http.Cookie{Name: DefaultCookieName, Value: identifier.New()})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGuardNilEngine(t *testing.T) {
	handler := RequireAuthenticated(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
