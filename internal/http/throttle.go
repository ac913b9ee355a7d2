package httpserver

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// throttle is a coarse per-client token bucket guarding the whole API
// surface. It is process-local boundary protection against bursty clients,
// distinct from the store-backed weekly limiter that enforces the domain's
// submission policy across replicas.
type throttle struct {
	mu      sync.Mutex
	clients map[string]*throttleClient
	rps     rate.Limit
	burst   int
}

type throttleClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const throttleIdle = 3 * time.Minute

func newThrottle(rps float64, burst int) *throttle {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 20
	}
	return &throttle{
		clients: make(map[string]*throttleClient),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (t *throttle) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.allow(clientAddress(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *throttle) allow(addr string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	client, ok := t.clients[addr]
	if !ok {
		// Prune idle buckets inline; no background timers in this service.
		for key, stale := range t.clients {
			if now.Sub(stale.lastSeen) > throttleIdle {
				delete(t.clients, key)
			}
		}
		client = &throttleClient{limiter: rate.NewLimiter(t.rps, t.burst)}
		t.clients[addr] = client
	}
	client.lastSeen = now
	return client.limiter.Allow()
}

// clientAddress extracts the network origin of a request. The RealIP
// middleware has already folded forwarding headers into RemoteAddr.
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
