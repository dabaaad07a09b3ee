package httpapi

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// idleTTL is how long a client bucket survives without requests.
	idleTTL = 10 * time.Minute
	// sweepInterval spaces out passes over the bucket map.
	sweepInterval = time.Minute
)

type bucket struct {
	limiter *rate.Limiter
	used    time.Time
}

// ClientLimiter keeps a token bucket per client address. Buckets idle for longer than
// idleTTL are swept on a later request.
type ClientLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func NewClientLimiter(limit rate.Limit, burst int) *ClientLimiter {
	return &ClientLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

// Allow takes one token from client's bucket. When none is left it reports how long
// until one is, or zero when the bucket never refills.
func (l *ClientLimiter) Allow(client string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[client]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[client] = b
	}
	b.used = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, 0
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return false, wait
	}
	return true, 0
}

func (l *ClientLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now
	for k, b := range l.buckets {
		if now.Sub(b.used) > idleTTL {
			delete(l.buckets, k)
		}
	}
}

// Clients reports how many buckets are held.
func (l *ClientLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimit rejects requests with 429 once the caller's bucket is empty, setting
// Retry-After when a refill time is known.
func RateLimit(limiter *ClientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := limiter.Allow(clientAddr(r))
			if !ok {
				if wait > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				}
				WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
