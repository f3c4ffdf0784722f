package auth

import (
	"net/http"
	"regexp"
)

const (
	GuestCookieName = "guest_session"
	DeviceHeader    = "X-Device-ID"
)

var sessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// ExtractGuestSession reads the guest_session cookie, falling back to the
// X-Device-ID header for clients without cookies. Ids that do not look
// like session ids are ignored.
func ExtractGuestSession(r *http.Request) string {
	if cookie, err := r.Cookie(GuestCookieName); err == nil && ValidSession(cookie.Value) {
		return cookie.Value
	}
	if device := r.Header.Get(DeviceHeader); ValidSession(device) {
		return device
	}
	return ""
}

func ValidSession(id string) bool {
	return sessionPattern.MatchString(id)
}
