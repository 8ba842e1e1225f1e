package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TokenPrefix is the fixed scheme prefix of fallback tokens. It
// distinguishes them from real provider tokens so calling code can detect
// fallback mode.
const TokenPrefix = "fallback-token"

// mintToken builds an opaque token embedding the user id and issue time:
// "fallback-token-<user-id>-<issue-epoch-millis>".
func mintToken(userID string, issued time.Time) string {
	return fmt.Sprintf("%s-%s-%d", TokenPrefix, userID, issued.UnixMilli())
}

// parseToken extracts the user id and issue time from a fallback token.
// Generated user ids contain the delimiter themselves (UUIDs), so parsing
// strips the literal prefix and takes the final segment as the timestamp;
// everything between is the user id.
func parseToken(token string) (string, time.Time, error) {
	rest, ok := strings.CutPrefix(token, TokenPrefix+"-")
	if !ok {
		return "", time.Time{}, fmt.Errorf("%w: missing %q prefix", ErrInvalidToken, TokenPrefix)
	}
	i := strings.LastIndex(rest, "-")
	if i <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: malformed token", ErrInvalidToken)
	}
	userID := rest[:i]
	ms, err := strconv.ParseInt(rest[i+1:], 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: bad issue timestamp", ErrInvalidToken)
	}
	return userID, time.UnixMilli(ms), nil
}
