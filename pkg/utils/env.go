package utils

import (
	"os"
	"strconv"
)

// Env returns the value of the named variable, or def when it is unset
// or empty.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvInt parses the named variable as a positive integer. Unset,
// malformed, and non-positive values all fall back to def.
func EnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
