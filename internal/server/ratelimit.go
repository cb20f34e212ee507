package server

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/peakform/coach-go/internal/logging"
)

// Every coach answer costs two sequential model calls, so the sustained rate
// a single client legitimately needs is low. Half a request per second still
// outpaces any human asking questions; the burst absorbs a client retrying
// or a user firing off a few questions in a row.
const (
	defaultRateLimit = 0.5
	defaultRateBurst = 5
)

// visitor holds one client's token bucket and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter enforces a per-IP token-bucket limit on the coach endpoint.
// Idle visitors are swept periodically to bound memory usage; the sweep
// interval is generous because a single coach exchange can run for minutes.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	rps        rate.Limit
	burst      int
	retryAfter string
	log        *slog.Logger
}

const (
	sweepInterval = 2 * time.Minute
	visitorTTL    = 10 * time.Minute
)

// newRateLimiter constructs a rateLimiter and starts the background sweep
// goroutine. The goroutine exits when the returned stop function is called.
func newRateLimiter(rps float64, burst int, log *slog.Logger) (*rateLimiter, func()) {
	rl := &rateLimiter{
		visitors:   make(map[string]*visitor),
		rps:        rate.Limit(rps),
		burst:      burst,
		retryAfter: retryAfterSeconds(rps),
		log:        log,
	}

	stopCh := make(chan struct{})
	go rl.sweepLoop(stopCh)

	return rl, func() { close(stopCh) }
}

// retryAfterSeconds derives the Retry-After header value from the sustained
// rate: the time until the bucket earns one more token, capped at a minute.
func retryAfterSeconds(rps float64) string {
	if rps <= 0 {
		return "60"
	}
	secs := int(math.Ceil(1 / rps))
	if secs < 1 {
		secs = 1
	}
	if secs > 60 {
		secs = 60
	}
	return strconv.Itoa(secs)
}

// limiterFor returns the token bucket for ip, creating one on first sight.
func (rl *rateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *rateLimiter) sweepLoop(stopCh <-chan struct{}) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep drops visitors idle for longer than visitorTTL.
func (rl *rateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-visitorTTL)
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

// middleware returns an http.Handler that enforces the rate limit before
// delegating to next. Requests over the limit receive 429 Too Many Requests
// with a Retry-After header sized to the configured rate.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if !rl.limiterFor(ip).Allow() {
			log := logging.FromContext(r.Context())
			log.Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
				slog.String("retry_after", rl.retryAfter),
			)
			w.Header().Set("Retry-After", rl.retryAfter)
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the remote IP from the request, stripping the port.
// It does not trust X-Forwarded-For since this server is local-only.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
