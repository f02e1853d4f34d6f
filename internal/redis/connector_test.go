package redis

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/MrSnakeDoc/atal/internal/logger"
)

func testOptions(addr string) ConnectOptions {
	return ConnectOptions{
		Addr:           addr,
		DialTimeout:    100 * time.Millisecond,
		ReadTimeout:    100 * time.Millisecond,
		WriteTimeout:   100 * time.Millisecond,
		PoolSize:       2,
		ConnectTimeout: 300 * time.Millisecond,
		RetryInterval:  50 * time.Millisecond,
		MaxWait:        100 * time.Millisecond,
		PingTimeout:    100 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestNewConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(testOptions(mr.Addr()), logger.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.Close()
}

func TestNewUnreachableReturnsClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := New(testOptions(addr), logger.NewNop())
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("New() error = %v, want ErrUnreachable", err)
	}
	if client == nil {
		t.Fatal("New() should return the client for offline start")
	}
	_ = client.Close()
}

func TestNewInvalidOptions(t *testing.T) {
	opts := testOptions("localhost:0")
	opts.ConnectTimeout = 0

	client, err := New(opts, logger.NewNop())
	if err == nil || client != nil {
		t.Fatalf("New() = %v, %v; want nil client and error", client, err)
	}
}

func TestRejected(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"WRONGPASS invalid username-password pair", true},
		{"NOAUTH Authentication required.", true},
		{"ERR DB index is out of range", true},
		{"dial tcp 127.0.0.1:6379: connect: connection refused", false},
		{"i/o timeout", false},
	}
	for _, tt := range tests {
		if got := rejected(errors.New(tt.msg)); got != tt.want {
			t.Errorf("rejected(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}
