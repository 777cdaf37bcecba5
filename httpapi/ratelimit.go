package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/Pk1316/slot-swapper-backend/auth"
)

// LimiterStore hands out a token-bucket limiter per client key with
// periodic cleanup of idle entries.
type LimiterStore struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	lastGC  time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewLimiterStore(rps float64, burst int) *LimiterStore {
	return &LimiterStore{
		entries: make(map[string]*limiterEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 15 * time.Minute,
	}
}

// Allow reports whether the client key may proceed, consuming one token.
func (s *LimiterStore) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.lastGC) > s.idleTTL {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) > s.idleTTL {
				delete(s.entries, k)
			}
		}
		s.lastGC = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(s.rps, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	return e.lim.Allow()
}

// StatsStore records rate-limit decisions for offline inspection. It is
// optional and purely observational: recording failures are ignored.
type StatsStore interface {
	Record(ctx context.Context, key string, allowed bool) error
}

// RedisStatsStore keeps per-key allow/deny counters in Redis hashes.
type RedisStatsStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStatsStore(rdb *redis.Client) *RedisStatsStore {
	return &RedisStatsStore{rdb: rdb, prefix: "ratelimit:stats"}
}

func (s *RedisStatsStore) Record(ctx context.Context, key string, allowed bool) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	field := "denied"
	if allowed {
		field = "allowed"
	}
	return s.rdb.HIncrBy(ctx, s.prefix+":"+key, field, 1).Err()
}

// RateLimit rejects clients that exceed their token bucket with a 429.
// Authenticated requests are keyed by user, everything else by client IP.
func RateLimit(store *LimiterStore, stats StatsStore, log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil {
				next.ServeHTTP(w, r)
				return
			}
			key := clientKey(r)
			allowed := store.Allow(key)
			if stats != nil {
				if err := stats.Record(r.Context(), key, allowed); err != nil {
					log.Debug("rate-limit stats lost", "key", key, "error", err)
				}
			}
			if !allowed {
				w.Header().Set("Retry-After", "1")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey resolves who a request should be counted against. The limiter
// runs in front of the auth middleware, so the Bearer token is resolved here
// rather than read from the context; an invalid token falls through to the
// client IP like any anonymous request.
func clientKey(r *http.Request) string {
	if id := UserID(r.Context()); id != "" {
		return id
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		if claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer ")); err == nil {
			return claims.UserID
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
