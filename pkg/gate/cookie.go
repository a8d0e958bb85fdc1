package gate

import (
	"net/http"
	"time"
)

// Attributes are the transport attributes applied to the session cookie.
type Attributes struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// Policy derives cookie attributes from deployment configuration.
//
// A parent-domain value (e.g. ".entermaya.com") makes every subdomain service
// observe the same cookie, which requires Secure + SameSite=None. An empty
// domain confines the cookie to the exact host and uses the lax/insecure
// combination suitable for local development.
type Policy struct {
	domain string
}

// NewPolicy builds a cookie policy. domain may be empty.
func NewPolicy(domain string) Policy {
	return Policy{domain: domain}
}

// Attributes is a pure function of the configured domain.
func (p Policy) Attributes() Attributes {
	if p.domain != "" {
		return Attributes{Domain: p.domain, Secure: true, SameSite: http.SameSiteNoneMode}
	}
	return Attributes{Secure: false, SameSite: http.SameSiteLaxMode}
}

// SessionCookie wraps an encoded session token in a Set-Cookie instruction
// whose lifetime matches the token's.
func (p Policy) SessionCookie(token string, ttl time.Duration) *http.Cookie {
	attrs := p.Attributes()
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Domain:   attrs.Domain,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   attrs.Secure,
		SameSite: attrs.SameSite,
	}
}

// ClearCookie returns the deletion instruction for the session cookie.
// Attributes must match the ones used when setting the cookie or browsers
// will not overwrite it.
func (p Policy) ClearCookie() *http.Cookie {
	attrs := p.Attributes()
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Domain:   attrs.Domain,
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   attrs.Secure,
		SameSite: attrs.SameSite,
	}
}
