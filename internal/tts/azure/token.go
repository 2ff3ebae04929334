package azure

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// tokenExpiry 读取 token 的 exp，不校验签名
func tokenExpiry(token string) (time.Time, bool) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return time.Time{}, false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// warnIfTokenExpired token 过期只打印警告，由服务端决定是否拒绝
func warnIfTokenExpired(token string, now time.Time) bool {
	exp, ok := tokenExpiry(token)
	if !ok || now.Before(exp) {
		return false
	}
	logrus.Warnf("azure: auth token expired at %s, the service will likely reject it", exp.Format(time.RFC3339))
	return true
}

func bearer(token string) string {
	if strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bearer " + token
}
