package server

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginChecker_AllowedOrigin(t *testing.T) {
	checker := newOriginChecker([]string{"http://localhost:8080"})

	r := httptest.NewRequest("GET", "/connect", nil)
	r.Header.Set("Origin", "http://localhost:8080")
	assert.True(t, checker.check(r))

	// Scheme and host comparison is case-insensitive.
	r.Header.Set("Origin", "HTTP://LOCALHOST:8080")
	assert.True(t, checker.check(r))
}

func TestOriginChecker_DisallowedOrigin(t *testing.T) {
	checker := newOriginChecker([]string{"http://localhost:8080"})

	r := httptest.NewRequest("GET", "/connect", nil)
	r.Header.Set("Origin", "http://evil.example.com")
	assert.False(t, checker.check(r))
}

func TestOriginChecker_MissingOrigin(t *testing.T) {
	checker := newOriginChecker([]string{"*"})

	r := httptest.NewRequest("GET", "/connect", nil)
	assert.False(t, checker.check(r))
}

func TestOriginChecker_Wildcard(t *testing.T) {
	checker := newOriginChecker([]string{"*"})

	r := httptest.NewRequest("GET", "/connect", nil)
	r.Header.Set("Origin", "http://anything.example.com")
	assert.True(t, checker.check(r))
}

func TestOriginChecker_InvalidConfiguredOriginIgnored(t *testing.T) {
	checker := newOriginChecker([]string{"not a url", "http://localhost:8080"})

	r := httptest.NewRequest("GET", "/connect", nil)
	r.Header.Set("Origin", "http://localhost:8080")
	assert.True(t, checker.check(r))
}
