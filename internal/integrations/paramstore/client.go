package paramstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// maxBatch is the SSM GetParameters limit per call.
const maxBatch = 10

// ssmAPI is the subset of *ssm.Client used here.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	GetParameters(ctx context.Context, in *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// Getter is the interface that wraps GetParameter.
// Credential resolution and the portfolio loader depend on it so they can be
// tested without AWS.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// ErrNotFound is returned when the parameter does not exist.
var ErrNotFound = errors.New("paramstore: parameter not found")

// Client reads decrypted parameters and keeps every value it has seen for the
// life of the process. Parameters are only read during cold start.
type Client struct {
	api ssmAPI

	mu      sync.Mutex
	values  map[string]string
	missing map[string]bool
}

// New creates a Client with the given SSM API implementation.
func New(api ssmAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	return &Client{
		api:     api,
		values:  make(map[string]string),
		missing: make(map[string]bool),
	}, nil
}

// Prefetch loads names in batches so later GetParameter calls are served
// from memory. Names SSM reports as invalid are remembered as missing.
func (c *Client) Prefetch(ctx context.Context, names ...string) error {
	if c.api == nil {
		return errors.New("paramstore: client not initialized")
	}
	pending := c.uncached(names)
	for start := 0; start < len(pending); start += maxBatch {
		end := min(start+maxBatch, len(pending))
		batch := pending[start:end]

		withDecryption := true
		out, err := c.api.GetParameters(ctx, &ssm.GetParametersInput{
			Names:          batch,
			WithDecryption: &withDecryption,
		})
		if err != nil {
			return fmt.Errorf("paramstore: get parameters %v: %w", batch, err)
		}
		if out == nil {
			continue
		}

		c.mu.Lock()
		for _, p := range out.Parameters {
			if p.Name != nil && p.Value != nil {
				c.values[*p.Name] = *p.Value
			}
		}
		for _, name := range out.InvalidParameters {
			c.missing[name] = true
		}
		c.mu.Unlock()
	}
	return nil
}

// uncached returns the trimmed, de-duplicated names not yet resolved.
func (c *Client) uncached(names []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] || c.missing[n] {
			continue
		}
		if _, ok := c.values[n]; ok {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// GetParameter returns the decrypted value of name. A missing parameter
// yields an error wrapping ErrNotFound.
func (c *Client) GetParameter(ctx context.Context, name string) (string, error) {
	if c.api == nil {
		return "", errors.New("paramstore: client not initialized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: name is required")
	}

	c.mu.Lock()
	v, hit := c.values[name]
	gone := c.missing[name]
	c.mu.Unlock()
	if hit {
		return v, nil
	}
	if gone {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	withDecryption := true
	out, err := c.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			c.mu.Lock()
			c.missing[name] = true
			c.mu.Unlock()
			return "", fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return "", fmt.Errorf("paramstore: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", errors.New("paramstore: parameter missing value")
	}

	c.mu.Lock()
	c.values[name] = *out.Parameter.Value
	c.mu.Unlock()
	return *out.Parameter.Value, nil
}
