package service

import (
	"time"
	"unicode/utf8"
)

// farFuture marks tokens that never expire, such as Facebook page tokens.
var farFuture = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

func GetExpiresAt(expiresIn int64) time.Time {
	if expiresIn <= 0 {
		return farFuture
	}
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}

func tokenExpiry(expiry time.Time) time.Time {
	if expiry.IsZero() {
		return farFuture
	}
	return expiry
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
