package goSession

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goSession/identifier"
)

func newBenchmarkEngine(b *testing.B) (*Engine, string, func()) {
	b.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		b.Fatalf("miniredis start failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	fake := newFakeAuthClient()
	fake.exchangeResult = testTokenResult()
	fake.refreshResult = testTokenResult()

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(client).
		WithAuthClient(fake).
		Build()
	if err != nil {
		mr.Close()
		b.Fatalf("Build failed: %v", err)
	}

	userID := identifier.New()
	if _, err := engine.SignIn(context.Background(), nil, userID, "auth-code", "", "state-1", nil); err != nil {
		mr.Close()
		b.Fatalf("sign-in failed: %v", err)
	}

	return engine, userID, func() {
		engine.Close()
		_ = client.Close()
		mr.Close()
	}
}

func BenchmarkIsAuthenticated(b *testing.B) {
	engine, userID, cleanup := newBenchmarkEngine(b)
	defer cleanup()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if authed, err := engine.IsAuthenticated(context.Background(), userID); err != nil || !authed {
			b.Fatalf("check failed: %v %v", authed, err)
		}
	}
}

func BenchmarkRefreshAccessToken(b *testing.B) {
	engine, userID, cleanup := newBenchmarkEngine(b)
	defer cleanup()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.RefreshAccessToken(context.Background(), userID); err != nil {
			b.Fatalf("refresh failed: %v", err)
		}
	}
}

func BenchmarkIsAuthenticatedParallel(b *testing.B) {
	engine, userID, cleanup := newBenchmarkEngine(b)
	defer cleanup()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := engine.IsAuthenticated(context.Background(), userID); err != nil {
				b.Errorf("check failed: %v", err)
				return
			}
		}
	})
}
