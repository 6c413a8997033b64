package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/infrastructure/config"
)

func TestOpen_EmptyAddr(t *testing.T) {
	_, err := Open(context.Background(), config.RedisConfig{})
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected storage unavailable, got %v", err)
	}
}
