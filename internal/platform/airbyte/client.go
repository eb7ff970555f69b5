// Package airbyte lists the connections of the Airbyte workspace that syncs a
// channel's ad accounts.
package airbyte

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/secrets"
)

const (
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusDeprecated = "deprecated"

	listPath    = "/api/v1/connections/list"
	maxAttempts = 3
)

type Connection struct {
	ConnectionID string `json:"connectionId"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	SourceID     string `json:"sourceId,omitempty"`
	Schedule     any    `json:"scheduleData,omitempty"`
}

// BrandID parses the brand id out of a "<prefix>_<brand id>_..." connection name.
func (c Connection) BrandID() (int, error) {
	parts := strings.Split(c.Name, "_")
	if len(parts) < 2 {
		return 0, ads.NewError(ads.CodeUpstream, "airbyte.BrandID", fmt.Sprintf("connection name %q has no brand segment", c.Name), nil)
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, ads.NewError(ads.CodeUpstream, "airbyte.BrandID", fmt.Sprintf("connection name %q", c.Name), err)
	}
	return id, nil
}

// Workspace is where one channel's connections live.
type Workspace struct {
	Endpoint    string
	WorkspaceID string
}

type Config struct {
	Workspaces map[ads.Channel]Workspace
	Username   string
	Password   string
	Timeout    time.Duration
}

// Only these channels are synced through Airbyte.
var workspaceKeys = map[ads.Channel][2]string{
	ads.ChannelFacebook: {"FACEBOOK_AIRBYTE_ENDPOINT", "FACEBOOK_WORKSPACE_ID"},
	ads.ChannelGoogle:   {"GOOGLE_ADS_AIRBYTE_ENDPOINT", "GOOGLE_ADS_WORKSPACE_ID"},
}

func Supported(c ads.Channel) bool {
	_, ok := workspaceKeys[c]
	return ok
}

// ConfigFromSecrets reads endpoints, workspace ids and basic auth. Channels
// without an endpoint are left out.
func ConfigFromSecrets(p secrets.Provider) Config {
	cfg := Config{
		Workspaces: map[ads.Channel]Workspace{},
		Username:   p.Get("AIRBYTE_USERNAME", ""),
		Password:   p.Get("AIRBYTE_PASSWORD", ""),
		Timeout:    30 * time.Second,
	}
	for ch, keys := range workspaceKeys {
		ep := strings.TrimRight(strings.TrimSpace(p.Get(keys[0], "")), "/")
		if ep == "" {
			continue
		}
		cfg.Workspaces[ch] = Workspace{Endpoint: ep, WorkspaceID: strings.TrimSpace(p.Get(keys[1], ""))}
	}
	return cfg
}

type Client interface {
	ListConnections(ctx context.Context, channel ads.Channel) ([]Connection, error)
}

type httpClient struct {
	cfg  Config
	http *http.Client
	log  *logger.Logger
}

func New(cfg Config, log *logger.Logger) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &httpClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		log:  log.With("client", "Airbyte"),
	}
}

type listRequest struct {
	WorkspaceID string `json:"workspaceId"`
}

type listResponse struct {
	Connections []Connection `json:"connections"`
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string { return fmt.Sprintf("airbyte status=%d body=%s", e.code, e.body) }

// ListConnections lists every connection of the channel's workspace.
func (c *httpClient) ListConnections(ctx context.Context, channel ads.Channel) ([]Connection, error) {
	const op = "airbyte.ListConnections"
	if !Supported(channel) {
		return nil, ads.NewError(ads.CodeUnknownChannel, op, "no airbyte workspace for channel "+channel.String(), ads.ErrUnknownChannel)
	}
	ws, ok := c.cfg.Workspaces[channel]
	if !ok || ws.WorkspaceID == "" {
		return nil, ads.NewError(ads.CodeConfig, op, "airbyte endpoint or workspace id not configured for "+channel.String(), ads.ErrMissingConfig)
	}
	body, err := json.Marshal(listRequest{WorkspaceID: ws.WorkspaceID})
	if err != nil {
		return nil, ads.Wrap(ads.CodeInternal, op, err)
	}

	attempt := func() (listResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.Endpoint+listPath, bytes.NewReader(body))
		if err != nil {
			return listResponse{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

		resp, err := c.http.Do(req)
		if err != nil {
			return listResponse{}, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			serr := &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(msg))}
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return listResponse{}, serr
			}
			return listResponse{}, backoff.Permanent(serr)
		}
		var out listResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return listResponse{}, backoff.Permanent(fmt.Errorf("decode connections: %w", err))
		}
		return out, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	out, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(maxAttempts),
		backoff.WithNotify(func(err error, d time.Duration) {
			c.log.Warn("airbyte list failed, retrying", "channel", channel.String(), "error", err, "retry_in", d.String())
		}),
	)
	if err != nil {
		return nil, ads.NewError(ads.CodeUpstream, op, "list connections for "+channel.String(), err)
	}
	return out.Connections, nil
}
