// Package fetch is the single HTTP client a harvest run shares. It presents
// a browser identity, bounds every request with a timeout and reports
// failures as *Fault.
package fetch

import (
	"context"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"jobhunt-harvester/internal/scrape/util"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36"

	maxBody = 4 << 20
)

type Options struct {
	UserAgent string
	Timeout   time.Duration
	// Retries applies to timeouts and connection errors only. A non-2xx
	// answer is a verdict from the site and is never retried.
	Retries int
	Limiter *util.HostLimiter
}

type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

type Client struct {
	hc      *http.Client
	opts    Options
	backoff func(attempt int) time.Duration
}

func New(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	// cookies persist across the run like a browser session would
	jar, _ := cookiejar.New(nil)
	return &Client{
		hc: &http.Client{
			Jar:     jar,
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: opts.Timeout,
				}).DialContext,
				TLSHandshakeTimeout: opts.Timeout,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		backoff: expBackoff,
	}
}

// Get issues one GET (plus transient retries). On a non-2xx status the
// Response is still returned alongside the Fault.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (Response, error) {
	target, err := withParams(rawURL, params)
	if err != nil {
		return Response{}, &Fault{Kind: FaultRequest, URL: rawURL, Err: err}
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.once(ctx, target)
		if err == nil {
			return resp, nil
		}
		f, _ := AsFault(err)
		if f == nil || !f.transient() || attempt >= c.opts.Retries || ctx.Err() != nil {
			return resp, err
		}
		zap.L().Warn("fetch: transient failure, retrying",
			zap.String("url", target),
			zap.String("kind", string(f.Kind)),
			zap.Int("attempt", attempt+1),
		)
		if werr := util.Sleep(ctx, c.backoff(attempt)); werr != nil {
			return resp, err
		}
	}
}

func (c *Client) once(ctx context.Context, target string) (Response, error) {
	if err := c.opts.Limiter.WaitURL(ctx, target); err != nil {
		return Response{}, &Fault{Kind: classify(err), URL: target, Err: eris.Wrap(err, "rate limiter wait")}
	}

	rctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(rctx, http.MethodGet, target, nil)
	if err != nil {
		return Response{}, &Fault{Kind: FaultRequest, URL: target, Err: eris.Wrap(err, "create request")}
	}
	setIdentity(req, c.opts.UserAgent)

	res, err := c.hc.Do(req)
	if err != nil {
		return Response{}, &Fault{Kind: classify(err), URL: target, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	out := Response{URL: target, StatusCode: res.StatusCode, Body: body}
	if err != nil {
		return out, &Fault{Kind: FaultRead, URL: target, StatusCode: res.StatusCode, Err: eris.Wrap(err, "read body")}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return out, &Fault{Kind: FaultStatus, URL: target, StatusCode: res.StatusCode, Err: eris.Errorf("unexpected status %s", res.Status)}
	}
	if blocked, marker := DetectBlock(res.Header, body); blocked {
		return out, &Fault{Kind: FaultBlocked, URL: target, StatusCode: res.StatusCode, Err: eris.Errorf("anti-bot page (%s)", marker)}
	}
	return out, nil
}

func setIdentity(req *http.Request, ua string) {
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

func withParams(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrap(err, "parse url")
	}
	if u.Scheme == "" || u.Host == "" {
		return "", eris.Errorf("not an absolute url: %q", rawURL)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func expBackoff(attempt int) time.Duration {
	d := time.Duration(float64(time.Second) * math.Pow(2, float64(attempt)))
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}
