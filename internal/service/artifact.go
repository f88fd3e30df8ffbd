package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/agentbridge/gateway/internal/domain"
	"github.com/agentbridge/gateway/internal/store"
)

// GetLatestArtifact returns the stored artifact for sessionID + name, or a
// synthesized placeholder when nothing is stored.
func (s *Service) GetLatestArtifact(ctx context.Context, sessionID, name string) (*domain.Artifact, error) {
	artifact, err := s.store.GetArtifact(ctx, sessionID, name)
	if err == nil {
		return artifact, nil
	}
	if !errors.Is(err, store.ErrArtifactNotFound) {
		return nil, err
	}
	return &domain.Artifact{
		ID:        uuid.New().String(),
		Name:      name,
		Content:   map[string]any{"type": "text", "data": "Sample content for " + name},
		Version:   "1.0",
		CreatedAt: time.Now(),
	}, nil
}

// GetArtifactVersion always synthesizes a placeholder labeled with the
// requested version. The store is never consulted; the version qualifier
// only affects response framing.
func (s *Service) GetArtifactVersion(name, version string) *domain.Artifact {
	return &domain.Artifact{
		ID:        version,
		Name:      name,
		Content:   map[string]any{"type": "text", "data": "Version " + version + " of " + name},
		Version:   version,
		CreatedAt: time.Now(),
	}
}
