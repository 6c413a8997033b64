package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

// fakeRedis implements the three commands the session store issues.
type fakeRedis struct {
	redis.Cmdable
	data    map[string]string
	lastTTL time.Duration
}

func newFakeRedis() *fakeRedis { return &fakeRedis{data: make(map[string]string)} }

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.lastTTL = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestSessionStore_SaveLoadClear(t *testing.T) {
	fake := newFakeRedis()
	store := NewSessionStore(fake, time.Hour)
	ctx := context.Background()

	user := domain.User{ID: "u1", UserID: "owner", Name: "Kim", CurrentTokens: decimal.NewFromInt(3)}
	want := domain.Session{
		CurrentUserID: "u1",
		UserTokens:    []domain.UserTokens{{User: user, CurrentTokens: decimal.RequireFromString("12.5")}},
	}

	if err := store.Save(ctx, "owner", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := fake.data["vicebank:session:owner"]; !ok {
		t.Fatalf("expected key vicebank:session:owner, got %v", fake.data)
	}
	if fake.lastTTL != time.Hour {
		t.Errorf("ttl = %v, want 1h", fake.lastTTL)
	}

	got, err := store.Load(ctx, "owner")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.CurrentUserID != "u1" || len(got.UserTokens) != 1 {
		t.Fatalf("unexpected session: %+v", got)
	}
	if !got.UserTokens[0].CurrentTokens.Equal(decimal.RequireFromString("12.5")) || got.UserTokens[0].User.Name != "Kim" {
		t.Errorf("unexpected user tokens: %+v", got.UserTokens[0])
	}

	if err := store.Clear(ctx, "owner"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := store.Load(ctx, "owner"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after clear, got %v", err)
	}
}

func TestSessionStore_LoadMissing(t *testing.T) {
	store := NewSessionStore(newFakeRedis(), 0)
	if _, err := store.Load(context.Background(), "nobody"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_LoadCorrupt(t *testing.T) {
	fake := newFakeRedis()
	fake.data["vicebank:session:owner"] = "{"
	store := NewSessionStore(fake, 0)

	_, err := store.Load(context.Background(), "owner")
	if err == nil || errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
