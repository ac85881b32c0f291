package middleware

import (
	"errors"
	"log"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

// SessionCookie holds the signed session JWT.
const SessionCookie = "session"

// sessionKey is where the verified *utils.SessionClaims are stored on the
// echo context.
const sessionKey = "user"

// Session reads the session cookie and, when it carries a valid token signed
// with secret, stores its claims on the context. Requests without a usable
// session continue anonymously; the Authorized gate decides what they may see.
func Session(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + SessionCookie,
		ContextKey:  sessionKey,
		ParseTokenFunc: func(_ echo.Context, raw string) (interface{}, error) {
			return utils.ParseSessionToken(secret, raw)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var tokErr *echojwt.TokenParsingError
			if errors.As(err, &tokErr) {
				log.Printf("auth: discarded session cookie: %v", tokErr.Err)
			}
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}
