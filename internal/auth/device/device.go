// Package device turns raw User-Agent strings into short display names for
// login audit logs.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Describe extracts a human-readable client description from a User-Agent
// string, e.g. "Chrome on Mac OS X" or "Safari on iOS (mobile)".
func Describe(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Client"
	}

	ua := useragent.New(userAgentString)

	browser, _ := ua.Browser()
	browser = strings.TrimSpace(browser)
	if browser == "" {
		browser = "Unknown Browser"
	}

	os := strings.TrimSpace(ua.OS())
	if os == "" {
		return browser
	}

	name := browser + " on " + os
	if ua.Mobile() {
		name += " (mobile)"
	}
	return name
}
