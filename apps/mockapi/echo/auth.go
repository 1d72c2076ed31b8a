package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

const (
	contextTokenKey   = "userToken"
	contextAccountKey = "account"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (s *server) jwtConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(s.opts.Conf.Mock.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func (s *server) accountClaims(acc account) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    s.opts.Conf.AppName,
			Subject:   acc.ID,
			Audience:  acc.SchoolID,
			ExpiresAt: now.Add(s.opts.Conf.Mock.JWTExpiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: acc.Email,
		Role:  acc.Role,
	}
}

// GenerateToken signs a token for acc.
func (s *server) GenerateToken(acc account) (string, error) {
	conf := s.jwtConfig()
	token := jwt.NewWithClaims(jwt.GetSigningMethod(conf.SigningMethod), s.accountClaims(acc))
	ss, err := token.SignedString(conf.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (s *server) authenticate(email, pwd string) (account, error) {
	acc, ok := s.db.accounts.find(func(a account) bool { return a.Email == email })
	if !ok || !acc.checkPassword(pwd) {
		return account{}, errAuthenticationFailed
	}
	return acc, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func (s *server) getContextAccount(ctx echo.Context) (account, error) {
	if acc, ok := ctx.Get(contextAccountKey).(account); ok {
		return acc, nil
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return account{}, err
	}
	acc, ok := s.db.accounts.get(claims.Subject)
	if !ok {
		// account removed after the token was issued
		return account{}, errUnauthorized
	}
	ctx.Set(contextAccountKey, acc)
	return acc, nil
}
