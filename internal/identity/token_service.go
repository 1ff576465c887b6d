package identity

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/omarelshorbagy/Project-Software-Engineering/pkg/variables"
)

const _ISSUER = "collab-platform"

var _ACCESS_TOKEN_EXPIRES_AFTER = time.Hour * 1

type TokenService struct {
	key jwk.Key
}

func NewTokenService() (*TokenService, error) {
	secret := variables.Env(variables.JWT_SECRET_NAME, variables.JWT_SECRET_DEFAULT)

	key, err := jwk.FromRaw([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("unable build signing key. Error: %w", err)
	}
	return &TokenService{key: key}, nil
}

// CreateAccessToken issues a one hour HS256 token carrying the user id and
// username claims.
func (s *TokenService) CreateAccessToken(userID, username string) (string, error) {
	token, err := jwt.NewBuilder().
		Issuer(_ISSUER).
		Subject(username).
		Expiration(time.Now().Add(_ACCESS_TOKEN_EXPIRES_AFTER)).
		Build()
	if err != nil {
		return "", err
	}

	if err = token.Set("user:id", userID); err != nil {
		return "", fmt.Errorf("unable set `user:id` claim. Error: %w", err)
	}

	byteToken, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.key))
	if err != nil {
		return "", err
	}
	return string(byteToken), nil
}

// VerifyToken validates signature and expiry and returns the username the
// token was issued for.
func (s *TokenService) VerifyToken(insecureToken string) (username string, err error) {
	token, err := jwt.ParseString(insecureToken,
		jwt.WithKey(jwa.HS256, s.key),
		jwt.WithIssuer(_ISSUER),
		jwt.WithValidate(true),
	)
	if err != nil {
		return "", ErrInvalidToken
	}
	return token.Subject(), nil
}
