package goSession

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goSession/identifier"
	"github.com/MrEthical07/goSession/kvstore"
)

func TestBuildRequiresValidConfig(t *testing.T) {
	fake := newFakeAuthClient()

	_, err := New().WithAuthClient(fake).Build()
	if err == nil {
		t.Fatal("expected Build to reject empty config")
	}
}

func TestBuildRequiresAuthClient(t *testing.T) {
	_, err := New().WithConfig(testConfig()).Build()
	if err == nil {
		t.Fatal("expected Build to require an authorization client")
	}
}

func TestBuildOnlyOnce(t *testing.T) {
	builder := New().
		WithConfig(testConfig()).
		WithStore(kvstore.NewMemoryStore(0)).
		WithAuthClient(newFakeAuthClient())

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := builder.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuildFallsBackToMemoryStore(t *testing.T) {
	fake := newFakeAuthClient()
	fake.exchangeResult = testTokenResult()

	engine, err := New().
		WithConfig(testConfig()).
		WithAuthClient(fake).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	userID := identifier.New()
	ctx := context.Background()
	if _, err := engine.SignIn(ctx, nil, userID, "auth-code", "", "state-1", nil); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if authed, _ := engine.IsAuthenticated(ctx, userID); !authed {
		t.Fatal("expected session persisted in fallback memory store")
	}
}

func TestBuildWithRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	fake := newFakeAuthClient()
	fake.exchangeResult = testTokenResult()

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(client).
		WithAuthClient(fake).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	userID := identifier.New()
	ctx := context.Background()
	if _, err := engine.SignIn(ctx, nil, userID, "auth-code", "", "state-1", nil); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}

	if !mr.Exists("session:" + userID) {
		t.Fatal("expected session record written to redis")
	}
}
