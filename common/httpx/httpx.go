// Package httpx wraps net/http with retries, jittered backoff, a host
// allowlist and a simple consecutive-failure circuit breaker. Every
// outbound HTTP call in the pipeline goes through a Client from here.
package httpx

import (
	"crypto/tls"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/resilience-labs/climatechat/common/logger"
)

type Client struct {
	hc        *http.Client
	opt       Options
	fail      int32 // consecutive failures
	openUntil int64 // unix nanos for circuit open deadline
}

type Options struct {
	Timeout            time.Duration
	Retry              int
	BackoffMin         time.Duration
	BackoffMax         time.Duration
	HostAllowlist      []string
	MaxConsecutiveFail int
	CircuitOpen        time.Duration
}

// New builds a Client, filling zero-valued options with defaults.
func New(opt Options) *Client {
	if opt.Timeout <= 0 {
		opt.Timeout = 30 * time.Second
	}
	if opt.Retry < 0 {
		opt.Retry = 0
	}
	if opt.BackoffMin <= 0 {
		opt.BackoffMin = 100 * time.Millisecond
	}
	if opt.BackoffMax <= 0 {
		opt.BackoffMax = 800 * time.Millisecond
	}
	if opt.MaxConsecutiveFail <= 0 {
		opt.MaxConsecutiveFail = 5
	}
	if opt.CircuitOpen <= 0 {
		opt.CircuitOpen = 5 * time.Second
	}

	transport := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: opt.Timeout}).DialContext,
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		MaxIdleConns:    100,
		IdleConnTimeout: 30 * time.Second,
	}
	return &Client{
		hc:  &http.Client{Timeout: opt.Timeout, Transport: transport},
		opt: opt,
	}
}

func (c *Client) allowed(u string) bool {
	if len(c.opt.HostAllowlist) == 0 {
		return true
	}
	pu, err := url.Parse(u)
	if err != nil {
		return false
	}
	host := pu.Hostname()
	for _, h := range c.opt.HostAllowlist {
		if matchHost(h, host) {
			return true
		}
	}
	return false
}

func matchHost(pattern, host string) bool {
	if pattern == "*" {
		return true
	}
	if strings.EqualFold(pattern, host) {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		suf := strings.TrimPrefix(pattern, "*.")
		return strings.HasSuffix(host, "."+suf) || host == suf
	}
	return false
}

var ErrCircuitOpen = errors.New("circuit open")
var ErrHostNotAllowed = errors.New("host not allowed")

// Do sends the request, retrying on transport errors and 5xx responses.
// Requests with a body must have GetBody set (http.NewRequest does this
// for common body types) or the retry loop degenerates to one attempt.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if !c.allowed(req.URL.String()) {
		logger.Warnf("httpx: blocked outbound host: %s", req.URL.String())
		return nil, ErrHostNotAllowed
	}
	now := time.Now().UnixNano()
	if atomic.LoadInt64(&c.openUntil) > now {
		return nil, ErrCircuitOpen
	}
	retry := c.opt.Retry
	if req.Body != nil && req.GetBody == nil {
		retry = 0
	}
	var resp *http.Response
	var err error
	for i := 0; i <= retry; i++ {
		if i > 0 && req.GetBody != nil {
			if body, berr := req.GetBody(); berr == nil {
				req.Body = body
			}
		}
		resp, err = c.hc.Do(req)
		if err == nil && resp != nil && resp.StatusCode >= 200 && resp.StatusCode < 500 {
			atomic.StoreInt32(&c.fail, 0)
			return resp, nil
		}
		// close body on failure to reuse connection
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		logger.Warnf("httpx: request failed (try %d/%d) to %s: %v", i+1, retry+1, req.URL.String(), err)
		if i < retry {
			time.Sleep(backoffJitter(c.opt.BackoffMin, c.opt.BackoffMax))
		}
	}
	if atomic.AddInt32(&c.fail, 1) >= int32(c.opt.MaxConsecutiveFail) {
		atomic.StoreInt64(&c.openUntil, time.Now().Add(c.opt.CircuitOpen).UnixNano())
		atomic.StoreInt32(&c.fail, 0)
		logger.Warnf("httpx: circuit opened for %v", c.opt.CircuitOpen)
	}
	if err == nil && resp != nil {
		return nil, errors.New("httpx: upstream returned " + resp.Status)
	}
	return nil, err
}

func backoffJitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
