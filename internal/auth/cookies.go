package auth

import (
	"net/http"
	"time"
)

// RefreshTokenCookieName is the cookie the refresh token travels in. The
// access token is never placed in a cookie; callers attach it as a bearer
// header themselves.
const RefreshTokenCookieName = "refreshToken"

// SetRefreshTokenCookie writes the refresh token as an httpOnly cookie.
// Secure is only set in production so local development over plain HTTP works.
func SetRefreshTokenCookie(w http.ResponseWriter, token string, isProduction bool, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearRefreshTokenCookie expires the refresh cookie immediately.
func ClearRefreshTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetRefreshTokenFromCookie reads the refresh token from the request cookie.
func GetRefreshTokenFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshTokenCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
