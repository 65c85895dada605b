// README: Smoke and load runner against a live vtcride API; prints a PASS/FAIL/SKIP summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	bench := NewRunner(cfg)
	results := bench.RunAll(ctx)

	fmt.Println("\n== Summary ==")
	pass, fail, skipped := 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case statusPass:
			pass++
		case statusFail:
			fail++
		case statusSkip:
			skipped++
		}
	}
	fmt.Printf("PASS=%d FAIL=%d SKIP=%d\n", pass, fail, skipped)

	if fail > 0 || (cfg.Strict && skipped > 0) {
		os.Exit(1)
	}
}

type Config struct {
	BaseURL     string
	RedisAddr   string
	Strict      bool
	Timeout     time.Duration
	Concurrency int
	Duration    time.Duration
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", envOrDefault("VTC_BENCH_BASE_URL", "http://localhost:8080"), "API base URL")
	flag.StringVar(&cfg.RedisAddr, "redis", envOrDefault("VTC_REDIS_ADDR", ""), "Redis address of the geocoding cache (optional)")
	flag.BoolVar(&cfg.Strict, "strict", cast.ToBool(envOrDefault("VTC_BENCH_STRICT", "false")), "Fail on skipped checks")
	flag.DurationVar(&cfg.Timeout, "timeout", cast.ToDuration(envOrDefault("VTC_BENCH_TIMEOUT", "60s")), "Total timeout")
	flag.IntVar(&cfg.Concurrency, "concurrency", cast.ToInt(envOrDefault("VTC_BENCH_CONCURRENCY", "20")), "Concurrency for load checks")
	flag.DurationVar(&cfg.Duration, "duration", cast.ToDuration(envOrDefault("VTC_BENCH_DURATION", "10s")), "Duration of load checks")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
