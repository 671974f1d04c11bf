package credentials

import (
	"errors"
	"strings"
)

const (
	// SessionCookieName carries the login session.
	SessionCookieName = "SESSDATA"
	// CSRFCookieName carries the token echoed back as the csrf form field.
	CSRFCookieName = "bili_jct"
	// OwnerCookieName carries the numeric identifier of the logged in user.
	OwnerCookieName = "DedeUserID"

	cookiePairSeparatorConstant  = "; "
	cookieValueSeparatorConstant = "="

	sessionDataMissingMessageConstant     = "session cookie SESSDATA is empty"
	csrfTokenMissingMessageConstant       = "csrf token bili_jct is empty"
	ownerIdentifierMissingMessageConstant = "owner identifier DedeUserID is empty"
)

// Session holds the authenticated session values. Field tags name the environment
// keys without the FAVSORT_ prefix.
type Session struct {
	SessionData     string `env:"SESSDATA,required"`
	CSRFToken       string `env:"BILI_JCT,required"`
	OwnerIdentifier string `env:"DEDEUSERID,required"`
}

// Validate ensures every value is present after trimming.
func (session Session) Validate() error {
	if len(strings.TrimSpace(session.SessionData)) == 0 {
		return errors.New(sessionDataMissingMessageConstant)
	}
	if len(strings.TrimSpace(session.CSRFToken)) == 0 {
		return errors.New(csrfTokenMissingMessageConstant)
	}
	if len(strings.TrimSpace(session.OwnerIdentifier)) == 0 {
		return errors.New(ownerIdentifierMissingMessageConstant)
	}
	return nil
}

// CookieHeader renders the session as a Cookie request header value.
func (session Session) CookieHeader() string {
	pairs := []string{
		SessionCookieName + cookieValueSeparatorConstant + session.SessionData,
		CSRFCookieName + cookieValueSeparatorConstant + session.CSRFToken,
		OwnerCookieName + cookieValueSeparatorConstant + session.OwnerIdentifier,
	}
	return strings.Join(pairs, cookiePairSeparatorConstant)
}

func (session Session) trimmed() Session {
	return Session{
		SessionData:     strings.TrimSpace(session.SessionData),
		CSRFToken:       strings.TrimSpace(session.CSRFToken),
		OwnerIdentifier: strings.TrimSpace(session.OwnerIdentifier),
	}
}
