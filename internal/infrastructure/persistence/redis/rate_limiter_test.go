package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRateLimitKey(t *testing.T) {
	assert.Equal(t, "ratelimit:search", BuildRateLimitKey("search"))
}

func TestBuildUserRateLimitKey(t *testing.T) {
	assert.Equal(t, "ratelimit:u1:search", BuildUserRateLimitKey("u1", "search"))
}
