package httputil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	ctx := context.Background()
	permanent := errors.New("permanent")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{"success first try", 0, nil, 1, false},
		{"non-retryable stops", 1, permanent, 1, true},
		{"retryable then success", 2, &RetryableError{Err: ErrNetwork}, 3, false},
		{"retryable exhausted", 5, &RetryableError{Err: ErrNetwork}, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(ctx, 3, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Second, func() error {
		return &RetryableError{Err: ErrNetwork}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		body      string
		wantNil   bool
		retryable bool
		is        error
	}{
		{200, "", true, false, nil},
		{201, "", true, false, nil},
		{404, "", false, false, ErrNotFound},
		{429, "slow down", false, true, ErrNetwork},
		{503, "", false, true, ErrNetwork},
		{401, `{"error":{"message":"Invalid Signature"}}`, false, false, ErrNetwork},
	}
	for _, tt := range tests {
		resp := &http.Response{StatusCode: tt.code, Body: io.NopCloser(strings.NewReader(tt.body))}
		err := CheckStatus(resp)
		if (err == nil) != tt.wantNil {
			t.Errorf("%d: err = %v", tt.code, err)
			continue
		}
		if err == nil {
			continue
		}
		if got := errors.As(err, new(*RetryableError)); got != tt.retryable {
			t.Errorf("%d: retryable = %v, want %v", tt.code, got, tt.retryable)
		}
		if !errors.Is(err, tt.is) {
			t.Errorf("%d: err = %v, want %v", tt.code, err, tt.is)
		}
		if tt.body != "" && !strings.Contains(err.Error(), tt.body) {
			t.Errorf("%d: error %q should include body", tt.code, err)
		}
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"2", 2 * time.Second},
		{" 5 ", 5 * time.Second},
		{"-3", 0},
		{"soon", 0},
		{"3600", MaxRetryAfter},
		{now.Add(10 * time.Second).Format(http.TimeFormat), 10 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
	}
	for _, tt := range tests {
		if got := RetryAfter(tt.header, now); got != tt.want {
			t.Errorf("RetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestRetryWaitsForServer(t *testing.T) {
	calls := 0
	start := time.Now()
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		if calls == 1 {
			return &RetryableError{Err: ErrNetwork, After: 30 * time.Millisecond}
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("Retry = %v after %d calls", err, calls)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("retried after %v, want at least the requested 30ms", elapsed)
	}
}

func TestRetryRateLimitedUpload(t *testing.T) {
	statuses := []int{http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusOK}
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		code := statuses[min(n, len(statuses)-1)]
		if code == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", "0")
		}
		w.WriteHeader(code)
		io.WriteString(w, `{"public_id":"form_uploads/abc"}`)
	}))
	defer srv.Close()

	client := NewClient(time.Second)
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1_1/demo/image/upload", nil)
		resp, err := Do(client, req)
		if err != nil {
			return &RetryableError{Err: err}
		}
		defer resp.Body.Close()
		return CheckStatus(resp)
	})
	if err != nil {
		t.Fatalf("upload = %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestCheckStatusRetryAfter(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{"Retry-After": []string{"4"}},
		Body:       io.NopCloser(strings.NewReader(`{"error":{"message":"Rate Limit Exceeded"}}`)),
	}
	var re *RetryableError
	if err := CheckStatus(resp); !errors.As(err, &re) {
		t.Fatalf("CheckStatus = %v, want RetryableError", err)
	}
	if re.After != 4*time.Second {
		t.Errorf("After = %v, want 4s", re.After)
	}
}
