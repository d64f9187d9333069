package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("query quote balance: %w", ErrConnectivity), "connectivity"},
		{fmt.Errorf("place buy order: %w: too small", ErrOrderRejected), "order_rejected"},
		{fmt.Errorf("settle oo-1: %w", ErrSettlement), "settlement"},
		{ErrRateLimited, "rate_limited"},
		{ErrUnauthorized, "unauthorized"},
		{ErrNotFound, "not_found"},
		{errors.New("something else"), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err), "%v", tt.err)
	}
}
