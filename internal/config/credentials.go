package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// tokenPayload is the expected JSON shape stored in SSM for an API token.
type tokenPayload struct {
	Token string `json:"token"`
}

// Getter is the parameter store lookup used for credentials.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// ResolveCredentials fills empty upstream API keys from their token
// parameters. Upstreams whose key stays empty are reported unavailable by
// their clients; that is not an error. The returned error joins per-upstream
// lookup failures so the caller can log them.
func (c *Config) ResolveCredentials(ctx context.Context, getter Getter, isNotFound func(error) bool) error {
	if getter == nil {
		return nil
	}
	var errs []error
	for _, up := range []*Upstream{&c.Enhancer, &c.Generator} {
		if up.APIKey != "" || up.TokenParam == "" {
			continue
		}
		key, err := fetchAPIKeyFromParamStore(ctx, getter, up.TokenParam)
		if err != nil {
			if isNotFound != nil && isNotFound(err) {
				continue
			}
			errs = append(errs, fmt.Errorf("%s: %w", up.Name, err))
			continue
		}
		up.APIKey = key
	}
	return errors.Join(errs...)
}

func fetchAPIKeyFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("config: token parameter name is empty")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("config: fetch token from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("config: unmarshal paramstore token value as JSON: %w", err)
	}
	if strings.TrimSpace(tp.Token) == "" {
		return "", errors.New("config: API token is empty")
	}
	return strings.TrimSpace(tp.Token), nil
}
