package sponsorblock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/llehouerou/mpv-sponsorblock/internal/metrics"
)

const (
	// DefaultServer is the public SponsorBlock instance.
	DefaultServer = "https://sponsor.ajay.app"

	defaultTimeout = 10 * time.Second
	userAgent      = "mpv-sponsorblock/1.0 (https://github.com/llehouerou/mpv-sponsorblock)"

	// hashPrefixLen is the number of hex characters sent by the privacy lookup.
	hashPrefixLen = 4

	strategyDirect  = "direct"
	strategyPrivate = "private"
)

// FetchFunc resolves a video ID into its segments.
// A nil slice with a nil error means the video has no segments.
type FetchFunc func(ctx context.Context, videoID string) ([]Segment, error)

// Options configures a Client.
type Options struct {
	ServerAddress string
	Categories    []Category
	Actions       []Action
	PrivacyAPI    bool
	Timeout       time.Duration
	HTTPClient    *http.Client // overrides Timeout when set
	Logger        *slog.Logger
}

// Client is a SponsorBlock API client.
type Client struct {
	baseURL    string
	categories []Category
	actions    []Action
	privacy    bool
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a new SponsorBlock client.
func NewClient(opts Options) *Client {
	base := strings.TrimSuffix(opts.ServerAddress, "/")
	if base == "" {
		base = DefaultServer
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:    base,
		categories: opts.Categories,
		actions:    opts.Actions,
		privacy:    opts.PrivacyAPI,
		httpClient: httpClient,
		log:        log,
	}
}

type apiSegment struct {
	Category   string     `json:"category"`
	ActionType string     `json:"actionType"`
	Segment    [2]float64 `json:"segment"`
	UUID       string     `json:"UUID"`
}

type apiVideo struct {
	Hash     string       `json:"hash"`
	Segments []apiSegment `json:"segments"`
}

// Fetch looks up segments with the strategy selected in Options.
func (c *Client) Fetch(ctx context.Context, videoID string) ([]Segment, error) {
	if c.privacy {
		return c.FetchPrivate(ctx, videoID)
	}
	return c.FetchDirect(ctx, videoID)
}

// FetchDirect sends the video ID to the server and returns its segments.
func (c *Client) FetchDirect(ctx context.Context, videoID string) ([]Segment, error) {
	const op = "fetch segments"
	start := time.Now()

	params := c.filterParams()
	params.Set("videoID", videoID)
	reqURL := fmt.Sprintf("%s/api/skipSegments?%s", c.baseURL, params.Encode())

	var raw []apiSegment
	found, err := c.getJSON(ctx, op, reqURL, &raw)
	if err != nil {
		metrics.ObserveLookup(strategyDirect, outcomeOf(err), time.Since(start))
		return nil, err
	}
	if !found {
		metrics.ObserveLookup(strategyDirect, metrics.OutcomeNotFound, time.Since(start))
		return nil, nil
	}

	segments := c.convert(raw)
	metrics.ObserveLookup(strategyDirect, outcomeFor(segments), time.Since(start))
	return segments, nil
}

// FetchPrivate sends only a SHA-256 prefix of the video ID and picks the
// matching video out of the returned candidates.
func (c *Client) FetchPrivate(ctx context.Context, videoID string) ([]Segment, error) {
	const op = "fetch segments by hash prefix"
	start := time.Now()

	sum := sha256.Sum256([]byte(videoID))
	hash := hex.EncodeToString(sum[:])

	params := c.filterParams()
	reqURL := fmt.Sprintf("%s/api/skipSegments/%s", c.baseURL, hash[:hashPrefixLen])
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	var videos []apiVideo
	found, err := c.getJSON(ctx, op, reqURL, &videos)
	if err != nil {
		metrics.ObserveLookup(strategyPrivate, outcomeOf(err), time.Since(start))
		return nil, err
	}
	if !found {
		metrics.ObserveLookup(strategyPrivate, metrics.OutcomeNotFound, time.Since(start))
		return nil, nil
	}

	for _, v := range videos {
		if strings.EqualFold(v.Hash, hash) {
			segments := c.convert(v.Segments)
			metrics.ObserveLookup(strategyPrivate, outcomeFor(segments), time.Since(start))
			return segments, nil
		}
	}

	c.log.Debug("no candidate matched the full hash", "candidates", len(videos))
	metrics.ObserveLookup(strategyPrivate, metrics.OutcomeEmpty, time.Since(start))
	return nil, nil
}

func (c *Client) filterParams() url.Values {
	params := url.Values{}
	for _, cat := range c.categories {
		params.Add("category", cat.String())
	}
	for _, act := range c.actions {
		params.Add("actionType", act.String())
	}
	return params
}

// getJSON performs a GET and decodes the body into v. Any 2xx is a
// success; an empty body leaves v untouched. It reports found=false for a 404.
func (c *Client) getJSON(ctx context.Context, op, reqURL string, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return false, transient(op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, transient(op, fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, transient(op, fmt.Errorf("unexpected status: %s", resp.Status))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		// An empty success body (204 and friends) carries no segments.
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if ctx.Err() != nil {
			return false, transient(op, ctx.Err())
		}
		return false, malformed(op, fmt.Errorf("decode response: %w", err))
	}

	return true, nil
}

// convert maps wire records to segments, dropping the ones that cannot be used.
func (c *Client) convert(raw []apiSegment) []Segment {
	segments := make([]Segment, 0, len(raw))
	for _, r := range raw {
		cat, err := ParseCategory(r.Category)
		if err != nil {
			c.log.Debug("ignoring segment", "uuid", r.UUID, "error", err)
			continue
		}
		act, err := ParseAction(r.ActionType)
		if err != nil {
			c.log.Debug("ignoring segment", "uuid", r.UUID, "error", err)
			continue
		}
		if r.Segment[0] > r.Segment[1] {
			c.log.Debug("ignoring segment with inverted bounds",
				"uuid", r.UUID, "start", r.Segment[0], "end", r.Segment[1])
			continue
		}
		segments = append(segments, Segment{
			Category: cat,
			Action:   act,
			Start:    r.Segment[0],
			End:      r.Segment[1],
			UUID:     r.UUID,
		})
	}
	return segments
}

func outcomeFor(segments []Segment) string {
	if len(segments) == 0 {
		return metrics.OutcomeEmpty
	}
	return metrics.OutcomeFound
}

func outcomeOf(err error) string {
	kind, _ := KindOf(err)
	switch kind {
	case KindMalformed:
		return metrics.OutcomeMalformed
	case KindCancelled:
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeTransient
	}
}
