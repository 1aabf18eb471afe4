package requestctx

import (
	"context"
	"testing"
)

func TestSessionIDRoundTrip(t *testing.T) {
	ctx := WithSessionID(context.Background(), "sess-1")
	if got := SessionIDFromContext(ctx); got != "sess-1" {
		t.Fatalf("SessionIDFromContext = %q, want %q", got, "sess-1")
	}
	if got := SubjectFromContext(ctx); got != "" {
		t.Fatalf("SubjectFromContext = %q, want empty", got)
	}
}

func TestSubjectRoundTrip(t *testing.T) {
	ctx := WithSubject(nil, "admin")
	if got := SubjectFromContext(ctx); got != "admin" {
		t.Fatalf("SubjectFromContext = %q, want %q", got, "admin")
	}
}

func TestNilContext(t *testing.T) {
	if got := SessionIDFromContext(nil); got != "" {
		t.Fatalf("expected empty string for nil context, got %q", got)
	}
}
