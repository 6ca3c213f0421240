package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alwitt/bluelight/models"
	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/golang-jwt/jwt/v5"
)

type actorContextKey struct{}

// ActorClaims JWT claims carrying the caller identity
type ActorClaims struct {
	jwt.RegisteredClaims
	// Name display name
	Name string `json:"name,omitempty"`
	// Role user role
	Role string `json:"role,omitempty"`
}

// ActorFromContext the authenticated caller of a request
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(models.Actor)
	return actor, ok && actor.ID != ""
}

// ContextWithActor attach a caller identity to a context
func ContextWithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// AuthenticatorParams caller authentication parameters
type AuthenticatorParams struct {
	// JWTSecret HS256 shared secret, token authentication is disabled when empty
	JWTSecret []byte
	// JWTIssuer expected token issuer, not checked when empty
	JWTIssuer string
	// SystemActor when set, requests without a token are attributed to this actor
	SystemActor *models.Actor
}

// Authenticator resolves the caller identity of each request
type Authenticator struct {
	goutils.RestAPIHandler
	secret      []byte
	issuer      string
	systemActor *models.Actor
}

/*
NewAuthenticator define new request authenticator

	@param params AuthenticatorParams - authentication parameters
	@returns authenticator
*/
func NewAuthenticator(params AuthenticatorParams) (*Authenticator, error) {
	if len(params.JWTSecret) == 0 && params.SystemActor == nil {
		return nil, fmt.Errorf("neither token authentication nor a system actor is configured")
	}
	if params.SystemActor != nil && params.SystemActor.ID == "" {
		return nil, fmt.Errorf("system actor has no ID")
	}

	logTags := log.Fields{"package": "bluelight", "module": "api", "component": "authenticator"}
	return &Authenticator{
		RestAPIHandler: goutils.RestAPIHandler{
			Component: goutils.Component{
				LogTags: logTags,
				LogTagModifiers: []goutils.LogMetadataModifier{
					goutils.ModifyLogMetadataByRestRequestParam,
				},
			},
		},
		secret:      params.JWTSecret,
		issuer:      params.JWTIssuer,
		systemActor: params.SystemActor,
	}, nil
}

// parseToken verify a bearer token and extract the caller identity
func (a *Authenticator) parseToken(tokenString string) (models.Actor, error) {
	if len(a.secret) == 0 {
		return models.Actor{}, fmt.Errorf("token authentication is not enabled")
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		options = append(options, jwt.WithIssuer(a.issuer))
	}

	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) { return a.secret, nil },
		options...,
	)
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid bearer token [%w]", err)
	}
	if !token.Valid {
		return models.Actor{}, fmt.Errorf("invalid bearer token")
	}
	if claims.Subject == "" {
		return models.Actor{}, fmt.Errorf("bearer token has no subject")
	}

	return models.Actor{ID: claims.Subject, Name: claims.Name, Role: claims.Role}, nil
}

// Middleware reject requests without a caller identity, and attach the identity to the
// request context otherwise
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logTags := a.GetLogTagsForContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if a.systemActor != nil {
				next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), *a.systemActor)))
				return
			}
			a.reject(w, r, "missing bearer token")
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			a.reject(w, r, "malformed authorization header")
			return
		}

		actor, err := a.parseToken(strings.TrimSpace(tokenString))
		if err != nil {
			log.WithError(err).WithFields(logTags).Warn("Rejected bearer token")
			a.reject(w, r, "invalid bearer token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="bluelight"`)
	respCode := http.StatusUnauthorized
	resp := a.GetStdRESTErrorMsg(r.Context(), respCode, message, "")
	if err := a.WriteRESTResponse(w, respCode, resp, nil); err != nil {
		log.WithError(err).WithFields(a.GetLogTagsForContext(r.Context())).
			Error("Failed to write response")
	}
}

/*
IssueToken sign a token for an actor. Used by tooling and tests.

	@param secret []byte - HS256 shared secret
	@param issuer string - token issuer
	@param actor models.Actor - the token subject
	@param validity time.Duration - token lifetime
	@returns signed token
*/
func IssueToken(
	secret []byte, issuer string, actor models.Actor, validity time.Duration,
) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ActorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Name: actor.Name,
		Role: actor.Role,
	})
	return token.SignedString(secret)
}
