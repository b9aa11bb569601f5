package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"pokedoro/internal/metrics"
	"pokedoro/internal/models"
)

const maxResponseBytes = 1 << 20

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// AuthClient performs the outbound login request. Each call sends exactly one
// request; nothing is retried.
type AuthClient interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
}

type authClient struct {
	client   httpDoer
	endpoint string
}

func NewAuthClient(client httpDoer, endpoint string) AuthClient {
	return &authClient{client: client, endpoint: endpoint}
}

func (c *authClient) Login(ctx context.Context, creds models.Credentials) (resp *models.LoginResponse, err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		var aerr *AuthError
		if errors.As(err, &aerr) {
			outcome = aerr.outcome()
		}
		metrics.AuthRequestsTotal.WithLabelValues(outcome).Inc()
		metrics.AuthRequestDurationSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(creds)
	if err != nil {
		return nil, unclassified(0, fmt.Errorf("encoding credentials: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, unclassified(0, fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.Debug().Str("email", creds.Email).Str("endpoint", c.endpoint).Msg("Sending login request")
	res, err := c.client.Do(req)
	if err != nil {
		return nil, unclassified(0, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, ErrUserNotFound
	case res.StatusCode == http.StatusUnauthorized:
		return nil, ErrPasswordMismatch
	case res.StatusCode < 200 || res.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, unclassified(res.StatusCode, fmt.Errorf("response: %q", bytes.TrimSpace(snippet)))
	}

	var out models.LoginResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, unclassified(res.StatusCode, fmt.Errorf("decoding response: %w", err))
	}
	if out.Token == "" {
		return nil, unclassified(res.StatusCode, errors.New("response carries no token"))
	}
	return &out, nil
}
