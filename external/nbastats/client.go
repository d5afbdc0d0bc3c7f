package nbastats

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/upstream"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/logging"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	defaultStatsBaseURL = "https://stats.nba.com/stats"
	defaultCDNBaseURL   = "https://cdn.nba.com/static/json"
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultTimeout      = 30 * time.Second
	maxResponseBytes    = 64 << 20
)

// statsParamNames maps canonical parameter names to the wire names of the
// playergamelogs endpoint.
var statsParamNames = map[string]string{
	"Season":     "SeasonNullable",
	"SeasonType": "SeasonTypeNullable",
	"LeagueID":   "LeagueIDNullable",
	"PlayerID":   "PlayerIDNullable",
	"DateFrom":   "DateFromNullable",
	"DateTo":     "DateToNullable",
}

type ClientConfig struct {
	HTTPClient   *http.Client
	StatsBaseURL string
	CDNBaseURL   string
	Timeout      time.Duration
	// RequestsPerSecond caps outbound calls; zero disables the limiter.
	RequestsPerSecond float64
	UserAgent         string
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
}

// Client performs single-attempt requests against the stats API and the
// static CDN. Retries belong to the caller.
type Client struct {
	httpClient   *http.Client
	statsBaseURL string
	cdnBaseURL   string
	userAgent    string
	limiter      *rate.Limiter
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       resilience.Group[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	client := &Client{
		httpClient:   httpClient,
		statsBaseURL: trimBaseURL(cfg.StatsBaseURL, defaultStatsBaseURL),
		cdnBaseURL:   trimBaseURL(cfg.CDNBaseURL, defaultCDNBaseURL),
		userAgent:    userAgent,
		limiter:      limiter,
		logger:       logger.Named("nbastats"),
		breaker:      resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}
	if client.breaker != nil {
		client.breaker.OnStateChange(func(from, to resilience.CircuitState) {
			client.logger.Warn("nba circuit breaker state changed", "from", from, "to", to)
		})
	}
	return client
}

func trimBaseURL(raw, fallback string) string {
	value := strings.TrimRight(strings.TrimSpace(raw), "/")
	if value == "" {
		return fallback
	}
	return value
}

// Do issues one request. Failures are marked upstream.ErrTransient or
// upstream.ErrPermanent.
func (c *Client) Do(ctx context.Context, req upstream.Request) ([]byte, error) {
	fullURL, err := c.resolveURL(req)
	if err != nil {
		return nil, err
	}

	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "nba circuit breaker rejected request", "kind", req.Kind, "state", c.breaker.State())
			return nil, crerr.Mark(crerr.Wrap(err, "nba provider is temporarily unavailable"), upstream.ErrTransient)
		}
	}

	raw, err, _ := c.flight.Do(fullURL, func() ([]byte, error) {
		raw, reqErr := c.execute(ctx, req.Kind, fullURL)
		if c.breaker != nil {
			if reqErr != nil && upstream.IsTransient(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) resolveURL(req upstream.Request) (string, error) {
	switch req.Kind {
	case upstream.KindLeagueGameLogs, upstream.KindPlayerGameLogs:
		return c.statsURL("playergamelogs", req, statsParamNames), nil
	case upstream.KindRoster:
		return c.statsURL("commonallplayers", req, nil), nil
	case upstream.KindSchedule:
		return c.cdnBaseURL + "/staticData/scheduleLeagueV2.json", nil
	case upstream.KindBoxscore:
		gameID := req.Param("GameID")
		if gameID == "" {
			return "", crerr.Mark(crerr.New("boxscore request without GameID"), upstream.ErrPermanent)
		}
		return c.cdnBaseURL + "/liveData/boxscore/boxscore_" + url.PathEscape(gameID) + ".json", nil
	default:
		return "", crerr.Mark(crerr.Newf("unsupported request kind %q", req.Kind), upstream.ErrPermanent)
	}
}

func (c *Client) statsURL(endpoint string, req upstream.Request, rename map[string]string) string {
	values := url.Values{}
	for _, name := range req.ParamNames() {
		wire := name
		if renamed, ok := rename[name]; ok {
			wire = renamed
		}
		values.Set(wire, req.Param(name))
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString(c.statsBaseURL)
	_ = buf.WriteByte('/')
	_, _ = buf.WriteString(endpoint)
	if encoded := values.Encode(); encoded != "" {
		_ = buf.WriteByte('?')
		_, _ = buf.WriteString(encoded)
	}
	return buf.String()
}

func (c *Client) execute(ctx context.Context, kind upstream.Kind, fullURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "build request"), upstream.ErrPermanent)
	}
	c.setHeaders(httpReq, kind)

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, crerr.Mark(crerr.Wrapf(err, "send %s request", kind), upstream.ErrTransient)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, crerr.Mark(crerr.Wrapf(err, "read %s response body", kind), upstream.ErrTransient)
	}

	c.logger.DebugContext(ctx, "nba request finished",
		"kind", kind,
		"url", fullURL,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(started).Milliseconds(),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	statusErr := crerr.Newf("nba provider status=%d kind=%s body=%s", resp.StatusCode, kind, abbreviateBody(raw))
	if isRetryableStatus(resp.StatusCode) {
		return nil, crerr.Mark(statusErr, upstream.ErrTransient)
	}
	return nil, crerr.Mark(statusErr, upstream.ErrPermanent)
}

// setHeaders mimics a browser session; the stats API drops requests without
// these headers.
func (c *Client) setHeaders(req *http.Request, kind upstream.Kind) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Origin", "https://www.nba.com")
	if kind == upstream.KindSchedule || kind == upstream.KindBoxscore {
		return
	}
	req.Header.Set("x-nba-stats-origin", "stats")
	req.Header.Set("x-nba-stats-token", "true")
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
