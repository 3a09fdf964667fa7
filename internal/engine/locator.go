package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// Kind identifies an engine implementation
type Kind string

const (
	KindGoja     Kind = "goja"
	KindStarlark Kind = "starlark"
)

// Locator identifies an engine and, optionally, a prelude module to
// load into it. The wire form is "<kind>:<prelude-ref>" where the
// prelude ref is empty, a local file path, or an http(s) URL.
type Locator struct {
	Kind    Kind
	Prelude string // file path or URL, empty when none
	Raw     string // original locator string
}

// ParseLocator parses a module locator string.
func ParseLocator(raw string) (Locator, error) {
	scheme, rest, found := strings.Cut(raw, ":")
	if !found {
		scheme = raw
	}

	kind := Kind(strings.ToLower(strings.TrimSpace(scheme)))
	switch kind {
	case KindGoja, KindStarlark:
		return Locator{Kind: kind, Prelude: strings.TrimSpace(rest), Raw: raw}, nil
	default:
		return Locator{}, fmt.Errorf("%w: %q", ErrUnknownLocator, raw)
	}
}

// FetchPrelude resolves the locator's prelude ref to source text.
// Remote refs are fetched with retries; a missing ref yields "".
func FetchPrelude(ctx context.Context, loc Locator) (string, error) {
	ref := loc.Prelude
	if ref == "" {
		return "", nil
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		client := retryablehttp.NewClient()
		client.RetryMax = 3
		client.Logger = nil

		req, err := retryablehttp.NewRequestWithContext(ctx, "GET", ref, nil)
		if err != nil {
			return "", fmt.Errorf("%w: bad prelude url %q: %v", ErrModuleLoad, ref, err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("%w: fetch prelude %q: %v", ErrModuleLoad, ref, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != 200 {
			return "", fmt.Errorf("%w: fetch prelude %q: status %d", ErrModuleLoad, ref, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("%w: read prelude %q: %v", ErrModuleLoad, ref, err)
		}
		return string(body), nil
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("%w: read prelude %q: %v", ErrModuleLoad, ref, err)
	}
	return string(data), nil
}
