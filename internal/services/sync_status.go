package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/airbyte"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

// SyncStatusEvaluator grades upstream sync health from the brand's Airbyte
// connections.
type SyncStatusEvaluator struct {
	client airbyte.Client
	log    *logger.Logger
}

func NewSyncStatusEvaluator(client airbyte.Client, baseLog *logger.Logger) *SyncStatusEvaluator {
	return &SyncStatusEvaluator{client: client, log: baseLog.With("service", "SyncStatusEvaluator")}
}

// Evaluate reports UNKNOWN when the channel's workspace is not configured.
// Channels without an Airbyte workspace, upstream failures and connection
// names without a numeric brand segment are errors.
func (s *SyncStatusEvaluator) Evaluate(ctx context.Context, brandID uint, channel ads.Channel) (StatusResult, error) {
	if s.client == nil {
		return newResult(ads.StatusUnknown, "Airbyte is not configured", brandID, channel), nil
	}
	conns, err := s.client.ListConnections(ctx, channel)
	switch {
	case ads.IsCode(err, ads.CodeConfig):
		return newResult(ads.StatusUnknown, "Airbyte workspace not configured for "+channel.String(), brandID, channel), nil
	case err != nil:
		return StatusResult{}, err
	}

	var matched []airbyte.Connection
	for _, c := range conns {
		id, err := c.BrandID()
		if err != nil {
			return StatusResult{}, err
		}
		if id == int(brandID) {
			matched = append(matched, c)
		}
	}
	return classifyConnections(matched, brandID, channel), nil
}

func classifyConnections(conns []airbyte.Connection, brandID uint, channel ads.Channel) StatusResult {
	if len(conns) == 0 {
		return newResult(ads.StatusUnknown, "No Airbyte connection for brand", brandID, channel)
	}
	var inactive, deprecated []string
	for _, c := range conns {
		switch strings.ToLower(c.Status) {
		case airbyte.StatusActive:
		case airbyte.StatusDeprecated:
			deprecated = append(deprecated, c.Name)
		default:
			inactive = append(inactive, c.Name)
		}
	}
	switch {
	case len(deprecated) > 0:
		return newResult(ads.StatusFailed, "deprecated connections: "+strings.Join(deprecated, ", "), brandID, channel)
	case len(inactive) > 0:
		return newResult(ads.StatusWarning, "inactive connections: "+strings.Join(inactive, ", "), brandID, channel)
	default:
		return newResult(ads.StatusOK, fmt.Sprintf("%d active connection(s)", len(conns)), brandID, channel)
	}
}
