package gate

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributesSharedDomain(t *testing.T) {
	attrs := NewPolicy(".example.com").Attributes()

	assert.Equal(t, ".example.com", attrs.Domain)
	assert.True(t, attrs.Secure)
	assert.Equal(t, http.SameSiteNoneMode, attrs.SameSite)
}

func TestAttributesLocalDev(t *testing.T) {
	attrs := NewPolicy("").Attributes()

	assert.Empty(t, attrs.Domain)
	assert.False(t, attrs.Secure)
	assert.Equal(t, http.SameSiteLaxMode, attrs.SameSite)
}

func TestSessionCookieCarriesTokenAndTTL(t *testing.T) {
	policy := NewPolicy(".example.com")
	cookie := policy.SessionCookie("signed-token", 7*24*time.Hour)

	assert.Equal(t, CookieName, cookie.Name)
	assert.Equal(t, "signed-token", cookie.Value)
	assert.Equal(t, ".example.com", cookie.Domain)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
}

func TestClearCookieMatchesSetAttributes(t *testing.T) {
	policy := NewPolicy(".example.com")
	set := policy.SessionCookie("tok", time.Hour)
	clear := policy.ClearCookie()

	require.Equal(t, set.Name, clear.Name)
	assert.Equal(t, set.Domain, clear.Domain)
	assert.Equal(t, set.Path, clear.Path)
	assert.Equal(t, set.Secure, clear.Secure)
	assert.Equal(t, set.SameSite, clear.SameSite)

	assert.Empty(t, clear.Value)
	assert.Negative(t, clear.MaxAge)
	assert.False(t, clear.Expires.After(time.Unix(0, 0)))
}
