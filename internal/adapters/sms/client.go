package sms

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/greator25/Ievolve-mvp1.0/internal/adapters/observability"
	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

// Client delivers notification messages through an HTTP SMS gateway.
// The core hands it batches and only cares about the sent/failed counts.
type Client struct {
	base    string
	hc      *http.Client
	key     string
	rl      *rate.Limiter
	workers int64
}

func New(base, key string, rps, workers int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("gateway URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if workers <= 0 {
		workers = 8
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: 20 * time.Second},
		key:     key,
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
		workers: int64(workers),
	}, nil
}

// Send fans the batch out over a bounded worker pool. Per-message failures
// only count toward the report; the call itself fails on context errors.
func (c *Client) Send(ctx context.Context, batch []domain.Message) (domain.DeliveryReport, error) {
	var sent, failed int64
	sem := semaphore.NewWeighted(c.workers)
	var wg sync.WaitGroup

	for _, m := range batch {
		if err := sem.Acquire(ctx, 1); err != nil {
			return report(sent, failed), err
		}
		wg.Add(1)
		go func(m domain.Message) {
			defer wg.Done()
			defer sem.Release(1)
			if err := c.send(ctx, m); err != nil {
				atomic.AddInt64(&failed, 1)
				return
			}
			atomic.AddInt64(&sent, 1)
		}(m)
	}
	wg.Wait()

	rep := report(sent, failed)
	observability.ObserveSMS("sent", rep.Sent)
	observability.ObserveSMS("failed", rep.Failed)
	return rep, nil
}

func report(sent, failed int64) domain.DeliveryReport {
	return domain.DeliveryReport{Sent: int(sent), Failed: int(failed)}
}

// send performs a POST with client-side rate limiting and retries.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) send(ctx context.Context, m domain.Message) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(m)
	if err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/messages", bytes.NewReader(body))
		if err != nil {
			return err
		}
		if c.key != "" {
			req.Header.Set("X-API-Key", c.key)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "ievolve-sms/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("gateway %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% concurrency-safe jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
