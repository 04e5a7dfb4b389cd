package authclient

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/carddemo/portal/internal/core/ports"
	"github.com/carddemo/portal/internal/pkg/metrics"
)

const defaultValidateTimeout = 10 * time.Second

// Validator implements ports.SessionValidator. It never reports a token as
// valid unless the auth service said so.
type Validator struct {
	client  *Client
	timeout time.Duration
	retries int
	log     zerolog.Logger
	now     func() time.Time
}

var _ ports.SessionValidator = (*Validator)(nil)

// NewValidator returns a Validator with a per-attempt timeout. retries is the
// number of extra attempts made after a transport failure; HTTP answers are
// never retried.
func NewValidator(client *Client, timeout time.Duration, retries int, log zerolog.Logger) *Validator {
	if timeout <= 0 {
		timeout = defaultValidateTimeout
	}
	if retries < 0 {
		retries = 0
	}
	return &Validator{
		client:  client,
		timeout: timeout,
		retries: retries,
		log:     log.With().Str("component", "validator").Logger(),
		now:     time.Now,
	}
}

func (v *Validator) Validate(ctx context.Context, accessToken string) bool {
	if accessToken == "" {
		metrics.ValidationsTotal.WithLabelValues("invalid").Inc()
		return false
	}
	if tokenExpired(accessToken, v.now()) {
		metrics.ValidationsTotal.WithLabelValues("expired").Inc()
		v.log.Debug().Msg("token expired, skipping remote validation")
		return false
	}

	var err error
	for attempt := 0; attempt <= v.retries; attempt++ {
		var valid bool
		valid, err = v.attempt(ctx, accessToken)
		if err == nil {
			if valid {
				metrics.ValidationsTotal.WithLabelValues("valid").Inc()
			} else {
				metrics.ValidationsTotal.WithLabelValues("invalid").Inc()
			}
			return valid
		}
		if isStatusError(err) || ctx.Err() != nil {
			break
		}
		v.log.Debug().Err(err).Int("attempt", attempt+1).Msg("validation attempt failed")
	}

	var se *StatusError
	if errors.As(err, &se) && (se.Code == 401 || se.Code == 403) {
		metrics.ValidationsTotal.WithLabelValues("invalid").Inc()
	} else {
		metrics.ValidationsTotal.WithLabelValues("error").Inc()
	}
	v.log.Warn().Err(err).Msg("token validation failed, treating session as invalid")
	return false
}

func (v *Validator) attempt(ctx context.Context, accessToken string) (bool, error) {
	actx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	return v.client.validate(actx, accessToken)
}

// tokenExpired reports whether accessToken is a JWT whose exp claim has
// passed. Opaque tokens and JWTs without exp are left to the auth service.
func tokenExpired(accessToken string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(now)
}
