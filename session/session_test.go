package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), &redis.Options{Addr: mr.Addr()}, "storefront:session:")
	if err != nil {
		t.Fatalf("new redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestStores(t *testing.T) {
	redisStore, _ := newRedisStore(t)
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json")),
		"redis":  redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.Get(ctx, "token"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("get missing: %v, want ErrNotFound", err)
			}
			if err := store.Set(ctx, "token", "abc"); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Set(ctx, "userId", "u1"); err != nil {
				t.Fatalf("set: %v", err)
			}
			if v, err := store.Get(ctx, "token"); err != nil || v != "abc" {
				t.Fatalf("get = %q, %v", v, err)
			}
			if err := store.Delete(ctx, "token", "userId"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := store.Get(ctx, "userId"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("get deleted: %v, want ErrNotFound", err)
			}
		})
	}
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	if err := store.Set(context.Background(), "token", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("mode = %o, want 600", perm)
	}

	reopened := NewFileStore(path)
	if v, err := reopened.Get(context.Background(), "token"); err != nil || v != "abc" {
		t.Fatalf("reopened get = %q, %v", v, err)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileStore(path).Get(context.Background(), "token"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("corrupt file: %v, want decode error", err)
	}
}

func TestRedisStorePrefixesKeys(t *testing.T) {
	store, mr := newRedisStore(t)
	if err := store.Set(context.Background(), "token", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, err := mr.Get("storefront:session:token"); err != nil || got != "abc" {
		t.Fatalf("raw key = %q, %v", got, err)
	}
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := NewRedisStore(ctx, &redis.Options{Addr: addr, MaxRetries: -1}, ""); err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s := New(store)
	if err := s.Init(ctx); err != nil {
		t.Fatalf("init empty: %v", err)
	}
	if s.Authenticated() {
		t.Fatalf("fresh session is authenticated")
	}

	if err := s.Set(ctx, "tok", "u1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	restored := New(store)
	if err := restored.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if restored.Token() != "tok" || restored.UserID() != "u1" || !restored.Authenticated() {
		t.Fatalf("restored = %q/%q", restored.Token(), restored.UserID())
	}

	if err := restored.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if restored.Authenticated() || restored.UserID() != "" {
		t.Fatalf("clear left state behind")
	}
	if _, err := store.Get(ctx, KeyToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("token still stored after clear")
	}
}

func TestSessionSetRejectsEmptyToken(t *testing.T) {
	if err := New(NewMemoryStore()).Set(context.Background(), "", "u1"); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestSessionDerivesUserIDFromClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{"id": "u42", "role": "user", "exp": exp.Unix()})

	s := New(NewMemoryStore())
	if err := s.Set(context.Background(), token, ""); err != nil {
		t.Fatalf("set: %v", err)
	}
	if s.UserID() != "u42" {
		t.Fatalf("user id = %q, want u42", s.UserID())
	}
	c, err := s.Claims()
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	if c.Role != "user" || !c.ExpiresAt.Equal(exp) || c.Expired(time.Now()) {
		t.Fatalf("claims = %+v", c)
	}
}

func TestSessionKeepsOpaqueTokens(t *testing.T) {
	s := New(NewMemoryStore())
	if err := s.Set(context.Background(), "opaque-token", ""); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !s.Authenticated() || s.UserID() != "" {
		t.Fatalf("opaque token session = %q/%q", s.Token(), s.UserID())
	}
	if _, err := s.Claims(); err == nil {
		t.Fatalf("expected claims error for opaque token")
	}
}

func TestAdminSessionIsSeparate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = New(store).Set(ctx, "customer", "u1")
	admin := NewAdmin(store)
	_ = admin.Set(ctx, "admin", "a1")

	customer := New(store)
	_ = customer.Init(ctx)
	if customer.Token() != "customer" {
		t.Fatalf("admin login replaced customer token")
	}
	if err := admin.Clear(ctx); err != nil {
		t.Fatalf("clear admin: %v", err)
	}
	_ = customer.Init(ctx)
	if !customer.Authenticated() {
		t.Fatalf("admin logout cleared customer session")
	}
}

func TestParseClaimsSubjectFallback(t *testing.T) {
	c, err := ParseClaims(signedToken(t, jwt.MapClaims{"sub": "u7"}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UserID != "u7" || !c.ExpiresAt.IsZero() || c.Expired(time.Now()) {
		t.Fatalf("claims = %+v", c)
	}
}
