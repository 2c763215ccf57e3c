package common

import "time"

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "jwt"

// AccessTokenQueryParam carries the session token on websocket handshakes
// from clients that cannot set cookies.
const AccessTokenQueryParam = "token"

// DefaultTokenValidity is the lifetime of an issued session token.
const DefaultTokenValidity = 7 * 24 * time.Hour

// MinPasswordLength is the shortest password accepted on signup.
const MinPasswordLength = 6
