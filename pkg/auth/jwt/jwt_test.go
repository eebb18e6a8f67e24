package jwt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/rhuss/portier/pkg/storage/memory"
	"github.com/rhuss/portier/pkg/users"
)

var testSecret = []byte("test-secret-with-enough-entropy")

func newRepo(t *testing.T) users.Repository {
	t.Helper()
	store := memory.New()
	if err := store.Create(context.Background(), &users.User{ID: "user-123", Email: "alice@x.com"}); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return store
}

func newTestScheme(t *testing.T, cfgOverride func(*Config)) *Scheme {
	t.Helper()
	cfg := Config{
		Secret:   testSecret,
		Issuer:   "https://auth.example.com",
		Audience: "portier",
	}
	if cfgOverride != nil {
		cfgOverride(&cfg)
	}
	s, err := New(cfg, newRepo(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func validClaims() jwtlib.MapClaims {
	return jwtlib.MapClaims{
		"sub": "user-123",
		"iss": "https://auth.example.com",
		"aud": "portier",
		"exp": time.Now().Add(1 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
}

func signHS(t *testing.T, method jwtlib.SigningMethod, claims jwtlib.MapClaims, secret []byte) string {
	t.Helper()
	tokenStr, err := jwtlib.NewWithClaims(method, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return tokenStr
}

func signRS(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating RSA key: %v", err)
	}
	tokenStr, err := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return tokenStr
}

func bearer(token string) *http.Request {
	r := httptest.NewRequest("GET", "/api/v1/users/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestNewRequiresKeyMaterial(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Error("expected error without a secret")
	}
}

func TestJWT_ValidToken(t *testing.T) {
	s := newTestScheme(t, nil)

	for _, method := range []jwtlib.SigningMethod{jwtlib.SigningMethodHS256, jwtlib.SigningMethodHS384, jwtlib.SigningMethodHS512} {
		t.Run(method.Alg(), func(t *testing.T) {
			u := s.CurrentUser(context.Background(), bearer(signHS(t, method, validClaims(), testSecret)))
			if u == nil || u.ID != "user-123" {
				t.Fatalf("CurrentUser = %v, want user-123", u)
			}
		})
	}
}

func TestJWT_Rejections(t *testing.T) {
	s := newTestScheme(t, nil)

	tests := []struct {
		name   string
		mutate func(jwtlib.MapClaims)
		secret []byte
	}{
		{"expired", func(c jwtlib.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }, testSecret},
		{"missing exp", func(c jwtlib.MapClaims) { delete(c, "exp") }, testSecret},
		{"wrong audience", func(c jwtlib.MapClaims) { c["aud"] = "other" }, testSecret},
		{"wrong issuer", func(c jwtlib.MapClaims) { c["iss"] = "https://evil.example.com" }, testSecret},
		{"missing subject", func(c jwtlib.MapClaims) { delete(c, "sub") }, testSecret},
		{"unknown subject", func(c jwtlib.MapClaims) { c["sub"] = "user-999" }, testSecret},
		{"wrong secret", func(jwtlib.MapClaims) {}, []byte("another-secret")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims()
			tt.mutate(claims)
			token := signHS(t, jwtlib.SigningMethodHS256, claims, tt.secret)
			if u := s.CurrentUser(context.Background(), bearer(token)); u != nil {
				t.Errorf("CurrentUser = %v, want nil", u)
			}
		})
	}
}

func TestJWT_NoBearerToken(t *testing.T) {
	s := newTestScheme(t, nil)

	for _, h := range []string{"", "Basic Ym9iOnB3", "Bearer ", "bearer abc"} {
		r := httptest.NewRequest("GET", "/", nil)
		if h != "" {
			r.Header.Set("Authorization", h)
		}
		if _, ok := s.Credentials(r); ok {
			t.Errorf("Credentials(%q) should be absent", h)
		}
		if u := s.CurrentUser(context.Background(), r); u != nil {
			t.Errorf("CurrentUser(%q) = %v, want nil", h, u)
		}
	}
}

func TestJWT_InvalidToken(t *testing.T) {
	s := newTestScheme(t, nil)
	if u := s.CurrentUser(context.Background(), bearer("not.a.jwt")); u != nil {
		t.Errorf("CurrentUser = %v, want nil", u)
	}
}

func TestJWT_OnlyHMACAccepted(t *testing.T) {
	s := newTestScheme(t, nil)

	unsigned, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, validClaims()).
		SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	tokens := map[string]string{
		"RS256": signRS(t, validClaims()),
		"none":  unsigned,
	}
	for alg, token := range tokens {
		if u := s.CurrentUser(context.Background(), bearer(token)); u != nil {
			t.Errorf("%s: CurrentUser = %v, want nil", alg, u)
		}
	}
}

func TestJWT_CustomUserClaim(t *testing.T) {
	s := newTestScheme(t, func(c *Config) { c.UserClaim = "uid" })

	claims := validClaims()
	delete(claims, "sub")
	claims["uid"] = "user-123"

	sub, err := s.Subject(signHS(t, jwtlib.SigningMethodHS256, claims, testSecret))
	if err != nil {
		t.Fatalf("Subject: %v", err)
	}
	if sub != "user-123" {
		t.Errorf("Subject = %q, want user-123", sub)
	}
}
