package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sethshivam11/project-store-backend/logging"
	"github.com/sethshivam11/project-store-backend/models"
	"github.com/sethshivam11/project-store-backend/services"
	"github.com/sethshivam11/project-store-backend/utils"

	"github.com/gorilla/mux"
)

// UserResolver loads the user record behind a validated token.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

type contextKey struct{}

var userContextKey contextKey

// VerifyJWT validira access token iz kolačića ili Authorization header-a,
// učitava korisnika i kači ga na request kontekst. Obnavljanje tokena se ne
// radi ovde, već eksplicitnim pozivom renewAccessToken.
func VerifyJWT(jwtService *services.JWTService, resolver UserResolver) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := TokenFromRequest(r)
			if tokenStr == "" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_TOKEN, Description: No access token for request to %s %s", r.Method, r.URL.Path)
				utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
				return
			}

			claims, err := jwtService.ValidateAccessToken(tokenStr)
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token for request to %s %s: %v", r.Method, r.URL.Path, err)
				utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Invalid token"))
				return
			}

			user, err := resolver.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_USER_GONE, Description: Token resolved to missing user %s", claims.UserID)
				utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// TokenFromRequest reads the access token from the accessToken cookie, then
// falls back to the Authorization bearer header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFrom returns the authenticated user attached by VerifyJWT.
func UserFrom(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}
