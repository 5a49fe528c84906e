package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicyBackoffDoublesUpToCeiling(t *testing.T) {
	p := retryPolicy{attempts: 6, base: time.Second, ceiling: 5 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := p.backoff(i + 1); got != w {
			t.Fatalf("backoff(%d) = %s, want %s", i+1, got, w)
		}
	}
}

func TestRetryPolicyNext(t *testing.T) {
	p := retryPolicy{attempts: 3, base: time.Second, ceiling: 10 * time.Second}
	ctx := context.Background()

	if _, ok := p.next(ctx, &statusError{StatusCode: 400}, 1); ok {
		t.Fatal("400 must not be retried")
	}
	if d, ok := p.next(ctx, &statusError{StatusCode: 503, RetryAfter: time.Minute}, 1); !ok || d != 10*time.Second {
		t.Fatalf("expected capped retry-after, got %s %v", d, ok)
	}
	if _, ok := p.next(ctx, &emptyContentError{Op: "x"}, 3); ok {
		t.Fatal("last attempt must not be retried")
	}
	if _, ok := p.next(ctx, errors.New("plain"), 1); ok {
		t.Fatal("unknown errors must not be retried")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, ok := p.next(cancelled, &statusError{StatusCode: 429}, 1); ok {
		t.Fatal("cancelled context must stop retries")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("unexpected delta-seconds parse: %s %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative values are invalid")
	}
	if _, ok := parseRetryAfter("soon"); ok {
		t.Fatal("garbage must not parse")
	}
}

func TestDecodeLLMJSONExtractsObject(t *testing.T) {
	var out struct {
		Translation string `json:"translation"`
	}
	if err := DecodeLLMJSON(`Sure! {"translation":"Ciao"} Hope that helps.`, &out); err != nil {
		t.Fatalf("DecodeLLMJSON returned error: %v", err)
	}
	if out.Translation != "Ciao" {
		t.Fatalf("unexpected translation %q", out.Translation)
	}
	if err := DecodeLLMJSON("   ", &out); err == nil {
		t.Fatal("expected empty payload error")
	}
}
