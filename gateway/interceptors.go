package gateway

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// RouteLogin is where the user is sent when the backend rejects the credential.
const RouteLogin = "/login"

// RequestInterceptor runs on every outgoing request before it is sent.
type RequestInterceptor func(req *http.Request) error

// ResponseInterceptor observes every response. It cannot swallow errors;
// the caller always receives the original failure afterwards.
type ResponseInterceptor func(resp *http.Response)

// Navigator performs the hard redirect to another screen.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function into a Navigator
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Evicter drops the current credential.
type Evicter interface {
	Credential() string
	Logout() error
}

// BearerInterceptor attaches "Authorization: Bearer <credential>" when the
// token source has a credential and sends the request unauthenticated otherwise.
func BearerInterceptor(ts oauth2.TokenSource) RequestInterceptor {
	return func(req *http.Request) error {
		tok, err := ts.Token()
		if errors.Is(err, apperrors.ErrNoCredential) {
			req.Header.Del("Authorization")
			return nil
		}
		if err != nil {
			return err
		}
		tok.SetAuthHeader(req)
		return nil
	}
}

// RequestIDInterceptor tags each request with a fresh X-Request-ID.
func RequestIDInterceptor() RequestInterceptor {
	return func(req *http.Request) error {
		if req.Header.Get("X-Request-ID") == "" {
			req.Header.Set("X-Request-ID", uuid.NewString())
		}
		return nil
	}
}

// EvictOnUnauthorized clears the session and forces navigation to the
// login screen whenever the backend answers 401. A 401 for a credential
// that has since been replaced by a new login leaves the new one alone.
func EvictOnUnauthorized(sess Evicter, nav Navigator) ResponseInterceptor {
	return func(resp *http.Response) {
		if resp.StatusCode != http.StatusUnauthorized {
			return
		}
		var path, sent string
		if resp.Request != nil {
			path, sent = resp.Request.URL.Path, resp.Request.Header.Get("Authorization")
		}
		if current := sess.Credential(); sent != "" && current != "" && sent != "Bearer "+current {
			log.Debug().Str("path", path).Msg("Ignoring 401 for a replaced credential")
			return
		}
		log.Warn().Str("path", path).Msg("Credential rejected, signing out")
		if err := sess.Logout(); err != nil {
			log.Err(err).Msg("Failed to clear session after 401")
		}
		if nav != nil {
			nav.Navigate(RouteLogin)
		}
	}
}
