package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestConnectivityErrorMatching(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("list articles: %w", NewConnectivityError("articles-service", "list", cause))

	if !IsConnectivity(err) {
		t.Fatalf("expected connectivity error, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be unwrappable")
	}

	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *ConnectivityError in chain")
	}
	if connErr.Upstream != "articles-service" || connErr.Operation != "list" {
		t.Fatalf("unexpected fields: %+v", connErr)
	}
}

func TestConnectivityErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ConnectivityError
		want string
	}{
		{
			name: "all fields",
			err:  &ConnectivityError{Upstream: "sqlite", Operation: "lookup", Cause: errors.New("disk I/O error")},
			want: "upstream unreachable: upstream=sqlite operation=lookup: disk I/O error",
		},
		{
			name: "no fields",
			err:  &ConnectivityError{},
			want: "upstream unreachable",
		},
		{
			name: "nil receiver",
			err:  nil,
			want: "<nil>",
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			if got := testCase.err.Error(); got != testCase.want {
				t.Fatalf("Error() = %q, want %q", got, testCase.want)
			}
		})
	}
}

func TestIsConnectivityRejectsOtherErrors(t *testing.T) {
	t.Parallel()

	for _, err := range []error{nil, ErrAuthorNotFound, ErrInvalidInput, errors.New("boom")} {
		if IsConnectivity(err) {
			t.Fatalf("IsConnectivity(%v) = true", err)
		}
	}
}

func TestUpstreamErrorKeepsCancellation(t *testing.T) {
	t.Parallel()

	cancelled := fmt.Errorf("Get \"http://articles\": %w", context.Canceled)
	if err := UpstreamError("articles-service", "list", cancelled); IsConnectivity(err) || !errors.Is(err, context.Canceled) {
		t.Fatalf("cancellation should pass through unclassified, got %v", err)
	}

	for _, cause := range []error{errors.New("connection refused"), context.DeadlineExceeded} {
		if err := UpstreamError("articles-service", "list", cause); !IsConnectivity(err) || !errors.Is(err, cause) {
			t.Fatalf("UpstreamError(%v) = %v, want wrapped connectivity failure", cause, err)
		}
	}
}
