package redisserver

import (
	"context"
	"net"
	"sync"

	"golang.org/x/time/rate"
)

// clientLimiters hands out one token bucket per client IP, shared by all
// connections from that IP and dropped when the last one closes.
type clientLimiters struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*limiterRef
}

type limiterRef struct {
	limiter *rate.Limiter
	refs    int
}

func newClientLimiters(perSecond, burst int) *clientLimiters {
	if burst <= 0 {
		burst = perSecond
	}
	return &clientLimiters{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*limiterRef),
	}
}

// acquire returns the limiter for ip and takes a reference to it.
func (c *clientLimiters) acquire(ip string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	ref, ok := c.limiters[ip]
	if !ok {
		ref = &limiterRef{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.limiters[ip] = ref
	}
	ref.refs++
	return ref.limiter
}

// release drops a reference taken by acquire.
func (c *clientLimiters) release(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ref, ok := c.limiters[ip]
	if !ok {
		return
	}
	ref.refs--
	if ref.refs <= 0 {
		delete(c.limiters, ip)
	}
}

func (c *clientLimiters) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.limiters)
}

// waitToken blocks until the limiter allows one more command or ctx ends.
func waitToken(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}

// clientIP returns the host part of addr, or the whole string if it has
// no port.
func clientIP(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
