package ginutil

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// QueryInt extracts an integer from query parameters, clamped to [lo, hi].
// A missing or malformed value yields defaultValue.
func QueryInt(c *gin.Context, key string, defaultValue, lo, hi int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// QueryUint64 extracts an optional unsigned id from query parameters; absent is 0
func QueryUint64(c *gin.Context, key string) (uint64, error) {
	valueStr := c.Query(key)
	if valueStr == "" {
		return 0, nil
	}
	return strconv.ParseUint(valueStr, 10, 64)
}

// ParamUint64 extracts an unsigned id from path parameters
func ParamUint64(c *gin.Context, key string) (uint64, error) {
	return strconv.ParseUint(c.Param(key), 10, 64)
}
