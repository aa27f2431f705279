package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/warmpath/scout-cli/internal/core/domain"
	"github.com/warmpath/scout-cli/internal/logger"
)

// maxConnectorPool caps the fallback contact scan when nobody in the book
// matches the target company.
const maxConnectorPool = 200

// buildConnectorPaths scores every (target, connector) pairing and keeps the
// best few per target. Company-matched contacts are preferred as the pool;
// when none exist the most recent contacts stand in.
func (s *ScoutService) buildConnectorPaths(
	ctx context.Context,
	runID string,
	targetCompany string,
	targetFunction string,
	targets []domain.Target,
	weights domain.ScoringWeights,
) ([]domain.ConnectorPath, error) {
	pool, err := s.contacts.FindByCompany(ctx, targetCompany)
	if err != nil {
		return nil, fmt.Errorf("finding contacts at %q: %w", targetCompany, err)
	}
	if len(pool) == 0 {
		pool, err = s.contacts.List(ctx, maxConnectorPool)
		if err != nil {
			return nil, fmt.Errorf("listing contacts: %w", err)
		}
	}
	if len(pool) == 0 {
		logger.Debug("No connectors available, skipping path mapping")
		return nil, nil
	}

	functionToken := strings.ToLower(strings.TrimSpace(targetFunction))
	now := s.opts.Now()

	var paths []domain.ConnectorPath
	for _, target := range targets {
		candidates := make([]domain.ConnectorPath, 0, len(pool))
		for _, connector := range pool {
			strength := domain.EstimateConnectorStrength(connector.ConnectedOn, now)
			result := domain.ScoreConnectorPath(domain.PathInput{
				Connector:         connector,
				Target:            target,
				TargetCompany:     targetCompany,
				FunctionToken:     functionToken,
				ConnectorStrength: strength,
				Weights:           weights,
				GuardrailPenalty:  s.opts.GuardrailPenalty,
			})

			breakdown := result.Breakdown
			candidates = append(candidates, domain.ConnectorPath{
				ID:                 uuid.New().String(),
				RunID:              runID,
				TargetID:           target.ID,
				ConnectorContactID: connector.ID,
				ConnectorName:      connector.Name,
				ConnectorStrength:  result.ConnectorStrength,
				PathScore:          result.PathScore,
				RecommendedAsk:     result.Ask,
				Rationale:          result.Rationale,
				Breakdown:          &breakdown,
				CreatedAt:          now,
			})
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].PathScore > candidates[j].PathScore
		})
		if len(candidates) > domain.MaxConnectorsPerTarget {
			candidates = candidates[:domain.MaxConnectorsPerTarget]
		}

		for _, candidate := range candidates {
			if len(paths) >= domain.MaxConnectorPaths {
				logger.Debug("Connector path cap reached at %d", domain.MaxConnectorPaths)
				return paths, nil
			}
			paths = append(paths, candidate)
		}
	}

	return paths, nil
}
