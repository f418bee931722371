package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_SendsIdentityAndParams(t *testing.T) {
	var gotUA, gotLang, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`<html><body>ok</body></html>`))
	}))
	defer srv.Close()

	c := New(Options{Timeout: time.Second})
	resp, err := c.Get(context.Background(), srv.URL+"/jobs", url.Values{"q": {"Front Desk"}})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "ok")
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "en-US,en;q=0.9", gotLang)
	assert.Equal(t, "Front Desk", gotQuery)
}

func TestGet_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`denied`))
	}))
	defer srv.Close()

	c := New(Options{Timeout: time.Second, Retries: 3})
	resp, err := c.Get(context.Background(), srv.URL, nil)
	require.Error(t, err)
	f, ok := AsFault(err)
	require.True(t, ok)
	assert.Equal(t, FaultStatus, f.Kind)
	assert.Equal(t, 403, f.StatusCode)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestGet_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(Options{Timeout: 50 * time.Millisecond})
	_, err := c.Get(context.Background(), srv.URL, nil)
	f, ok := AsFault(err)
	require.True(t, ok)
	assert.Equal(t, FaultTimeout, f.Kind)
}

func TestGet_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := New(Options{Timeout: time.Second})
	_, err := c.Get(context.Background(), addr, nil)
	f, ok := AsFault(err)
	require.True(t, ok)
	assert.Equal(t, FaultConnection, f.Kind)
}

func TestGet_CaptchaIsBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Just a moment...</title></head><body><div class="g-recaptcha"></div></body></html>`))
	}))
	defer srv.Close()

	c := New(Options{Timeout: time.Second})
	_, err := c.Get(context.Background(), srv.URL, nil)
	f, ok := AsFault(err)
	require.True(t, ok)
	assert.Equal(t, FaultBlocked, f.Kind)
}

func TestGet_RetriesTransientOnly(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		_, _ = w.Write([]byte(`fine`))
	}))
	defer srv.Close()

	c := New(Options{Timeout: 100 * time.Millisecond, Retries: 1})
	c.backoff = func(int) time.Duration { return 0 }

	resp, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "fine", string(resp.Body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_RejectsRelativeURL(t *testing.T) {
	c := New(Options{})
	_, err := c.Get(context.Background(), "/jobs", nil)
	f, ok := AsFault(err)
	require.True(t, ok)
	assert.Equal(t, FaultRequest, f.Kind)
}

func TestDetectBlock(t *testing.T) {
	h := http.Header{}
	blocked, _ := DetectBlock(h, []byte(`<html><body>Receptionist jobs</body></html>`))
	assert.False(t, blocked)

	h.Set("cf-mitigated", "challenge")
	blocked, marker := DetectBlock(h, nil)
	assert.True(t, blocked)
	assert.Equal(t, "cf-mitigated", marker)
}
