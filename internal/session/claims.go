package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gtrac-gateway/internal/model"
)

// Claims is what the gateway reads out of an access token payload. The
// signature is never checked: these values only drive redirects and cache
// lifetimes. Authorization stays with the backend.
type Claims struct {
	ExpiresAt time.Time
	Subject   string
	UserID    string
	Email     string
}

var unverifiedParser = jwt.NewParser()

// DecodeClaims decodes the payload segment of a JWT without verifying it.
func DecodeClaims(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, model.ErrMalformedToken
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := unverifiedParser.ParseUnverified(token, mapClaims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", model.ErrMalformedToken, err)
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, fmt.Errorf("%w: exp claim missing or invalid", model.ErrMalformedToken)
	}

	claims := Claims{ExpiresAt: exp.Time.UTC()}
	claims.Subject, _ = mapClaims.GetSubject()
	claims.Email, _ = mapClaims["email"].(string)
	if id, ok := mapClaims["user_id"]; ok && id != nil {
		switch v := id.(type) {
		case float64:
			claims.UserID = fmt.Sprintf("%.0f", v)
		default:
			claims.UserID = fmt.Sprint(v)
		}
	}

	return claims, nil
}

// DecodeExpiry returns the exp claim of a token, or false when the token
// cannot be decoded. Non-authoritative.
func DecodeExpiry(token string) (time.Time, bool) {
	claims, err := DecodeClaims(token)
	if err != nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt, true
}

// Expired fails closed: an undecodable token counts as expired.
func Expired(token string, now time.Time) bool {
	exp, ok := DecodeExpiry(token)
	if !ok {
		return true
	}
	return !now.Before(exp)
}
