package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilClientDegradesToMiss(t *testing.T) {
	svc := NewService(nil, 0)
	ctx := context.Background()

	assert.False(t, svc.IsAvailable())
	assert.NoError(t, svc.SetUserSummary(ctx, "alice", map[string]string{"id": "alice"}))

	var dest map[string]string
	assert.ErrorIs(t, svc.GetUserSummary(ctx, "alice", &dest), ErrCacheMiss)
	assert.NoError(t, svc.InvalidateUserSummary(ctx, "alice"))
}
