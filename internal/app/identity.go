package app

import (
	"errors"
	"fmt"

	"github.com/form3tech-oss/jwt-go"
)

// IdentityVerifier validates signed identity credentials presented at
// authentication and extracts the stable player id they carry.
type IdentityVerifier struct {
	secret string
	issuer string
}

var ErrInvalidCredential = errors.New("invalid identity credential")

func NewIdentityVerifier(secret, issuer string) *IdentityVerifier {
	return &IdentityVerifier{
		secret: secret,
		issuer: issuer,
	}
}

// Verify checks the credential's signature, expiry and issuer and returns
// the subject id it was minted for.
func (v *IdentityVerifier) Verify(credential string) (string, error) {
	if v == nil || v.secret == "" {
		return "", fmt.Errorf("identity config is incomplete")
	}

	token, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidCredential
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return "", ErrInvalidCredential
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidCredential
	}
	return sub, nil
}
