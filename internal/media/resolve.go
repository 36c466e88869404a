package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-multierror"
	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/tidwall/gjson"
)

type Resolver interface {
	Resolve(ctx context.Context, source string, profile Profile, quality string) (Link, error)
}

type Prober interface {
	// Size returns the advertised size in bytes, or -1 when unknown.
	Size(ctx context.Context, url string) (int64, error)
}

// ProviderResolver asks the download API for a direct link at one quality.
type ProviderResolver struct {
	apiURL string
	apiKey string
	client *http.Client
	logger logger.Logger
}

func NewProviderResolver(apiURL, apiKey string, client *http.Client, log logger.Logger) *ProviderResolver {
	return &ProviderResolver{
		apiURL: apiURL,
		apiKey: apiKey,
		client: client,
		logger: log,
	}
}

func (r *ProviderResolver) Resolve(ctx context.Context, source string, profile Profile, quality string) (Link, error) {
	if r.apiKey == "" {
		return Link{}, ErrNotConfigured
	}

	body, err := json.Marshal(map[string]string{
		"link":               source,
		"format":             profile.Format,
		profile.QualityField: quality,
	})
	if err != nil {
		return Link{}, fmt.Errorf("marshal error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiURL, bytes.NewReader(body))
	if err != nil {
		return Link{}, fmt.Errorf("create request error: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Link{}, fmt.Errorf("download api request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Link{}, fmt.Errorf("read download api response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Link{}, fmt.Errorf("download api returned %d: %s", resp.StatusCode, gjson.GetBytes(data, "message").String())
	}

	result := gjson.ParseBytes(data)
	if !result.Get("success").Bool() || !result.Get("data.downloadUrl").Exists() {
		return Link{}, fmt.Errorf("download api returned no link for quality %s", quality)
	}

	return Link{
		URL:      result.Get("data.downloadUrl").String(),
		Title:    result.Get("data.title").String(),
		Filename: result.Get("data.filename").String(),
		Quality:  quality,
		Size:     -1,
	}, nil
}

// HeadProber reads Content-Length with a HEAD request.
type HeadProber struct {
	client *http.Client
}

func NewHeadProber(client *http.Client) *HeadProber {
	return &HeadProber{client: client}
}

func (p *HeadProber) Size(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return -1, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return -1, err
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return -1, fmt.Errorf("head request returned %d", resp.StatusCode)
	}
	return resp.ContentLength, nil
}

// ResolveTiers walks the profile's qualities in order and returns the first
// link whose advertised size fits maxSize. A failed size probe accepts the
// tier, the download itself still enforces the limit.
func ResolveTiers(
	ctx context.Context,
	resolver Resolver,
	prober Prober,
	source string,
	profile Profile,
	maxSize int64,
	log logger.Logger,
) (Link, error) {
	var result *multierror.Error
	for _, quality := range profile.Qualities {
		link, err := resolver.Resolve(ctx, source, profile, quality)
		if errors.Is(err, ErrNotConfigured) {
			return Link{}, err
		}
		if err != nil {
			log.WithError(err).WithField("quality", quality).Warn("Failed to get download link")
			result = multierror.Append(result, fmt.Errorf("quality %s: %w", quality, err))
			continue
		}

		size, err := prober.Size(ctx, link.URL)
		if err != nil {
			log.WithError(err).WithField("quality", quality).Debug("Size probe failed, accepting tier")
			return link, nil
		}
		if maxSize > 0 && size > maxSize {
			log.WithFields(logger.Fields{
				"quality": quality,
				"size":    size,
			}).Info("Quality too large, trying next")
			result = multierror.Append(result, fmt.Errorf("quality %s: %w (%d bytes)", quality, ErrTooLarge, size))
			continue
		}
		link.Size = size
		return link, nil
	}
	if result == nil {
		return Link{}, ErrUnavailable
	}
	return Link{}, fmt.Errorf("%w: %w", ErrUnavailable, result)
}
