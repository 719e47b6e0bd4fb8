package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/identifier"
)

// scriptedClient is an in-process AuthClient so the load lands on the engine
// and the store, not on a provider.
type scriptedClient struct{}

func (scriptedClient) GetAuthorizationURL(context.Context, *goSession.SignInOptions, string) (string, error) {
	return "https://idp.invalid/oauth2/authorize", nil
}

func (scriptedClient) RequestAccessToken(ctx context.Context, code, sessionState, state, userID string) (*goSession.TokenResult, error) {
	return scriptedTokens(), nil
}

func (scriptedClient) RefreshAccessToken(ctx context.Context, userID string) (*goSession.TokenResult, error) {
	return scriptedTokens(), nil
}

func (scriptedClient) IsAuthenticated(context.Context, string) (bool, error) { return true, nil }

func (scriptedClient) GetSignOutURL(context.Context, string) (string, error) {
	return "https://idp.invalid/oidc/logout", nil
}

func (scriptedClient) GetIDToken(context.Context, string) (string, error)     { return "id-token", nil }
func (scriptedClient) GetAccessToken(context.Context, string) (string, error) { return "access", nil }
func (scriptedClient) GetBasicUserInfo(context.Context, string) (*goSession.BasicUserInfo, error) {
	return &goSession.BasicUserInfo{Sub: "load"}, nil
}
func (scriptedClient) GetDecodedIDToken(context.Context, string) (goSession.IDTokenClaims, error) {
	return goSession.IDTokenClaims{"sub": "load"}, nil
}
func (scriptedClient) ClearUserSession(context.Context, string) error { return nil }

func scriptedTokens() *goSession.TokenResult {
	return &goSession.TokenResult{
		AccessToken: "access-token",
		IDToken:     "id-token",
		TokenType:   "Bearer",
		Scope:       "openid",
		ExpiresIn:   60,
	}
}

func main() {
	var (
		sessions    = flag.Int("sessions", 100000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (check + refresh)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "session:", "session key prefix")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := goSession.Config{
		ClientID:          "loadtest-client",
		ServerOrigin:      "https://idp.invalid",
		SignInRedirectURL: "https://app.invalid/callback",
	}
	cfg.Session.KeyPrefix = *prefix

	engine, err := goSession.New().
		WithConfig(cfg).
		WithRedis(client).
		WithAuthClient(scriptedClient{}).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	userIDs := make([]string, *sessions)
	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	for i := range userIDs {
		userIDs[i] = identifier.New()
		if _, err := engine.SignIn(ctx, nil, userIDs[i], "seed-code", "", "seed-state", nil); err != nil {
			fmt.Fprintf(os.Stderr, "seed sign-in failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	checkStats := runPhase(ctx, userIDs, *ops, *concurrency, func(ctx context.Context, userID string) error {
		_, err := engine.IsAuthenticated(ctx, userID)
		return err
	})
	refreshStats := runPhase(ctx, userIDs, *ops, *concurrency, func(ctx context.Context, userID string) error {
		_, err := engine.RefreshAccessToken(ctx, userID)
		return err
	})

	fmt.Println("---- results ----")
	printStats("check", checkStats)
	printStats("refresh", refreshStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("metrics: check_true=%d refresh_success=%d refresh_failure=%d\n",
		snap.Counters[goSession.MetricAuthCheckTrue],
		snap.Counters[goSession.MetricRefreshSuccess],
		snap.Counters[goSession.MetricRefreshFailure],
	)
}

func runPhase(ctx context.Context, userIDs []string, ops, concurrency int, op func(context.Context, string) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				userID := userIDs[r.Intn(len(userIDs))]
				t0 := time.Now()
				err := op(ctx, userID)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
