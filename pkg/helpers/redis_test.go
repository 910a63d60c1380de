package helpers

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewRedisClientEmptyAddr(t *testing.T) {
	if rdb := NewRedisClient("", "", 0); rdb != nil {
		t.Fatalf("expected nil client for empty addr")
	}
	if err := PingRedis(context.Background(), nil); err != nil {
		t.Fatalf("nil client ping: %v", err)
	}
}

func TestPingRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	rdb := NewRedisClient(mr.Addr(), "", 0)
	defer rdb.Close()
	if err := PingRedis(context.Background(), rdb); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
