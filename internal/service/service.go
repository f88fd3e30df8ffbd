// Package service implements the gateway's core operations on top of the
// store, the remote agent client, and the access policy.
package service

import (
	"context"
	"errors"

	"github.com/agentbridge/gateway/internal/agent"
	"github.com/agentbridge/gateway/internal/config"
	"github.com/agentbridge/gateway/internal/policy"
	"github.com/agentbridge/gateway/internal/store"
)

// ErrForbidden is returned when a session exists but is owned by a
// different (app, user) pair. Callers must not learn more than that the
// request was denied.
var ErrForbidden = errors.New("access denied")

// Service wires the gateway components together.
type Service struct {
	store  store.Store
	agent  *agent.Client
	policy *policy.Engine
	config *config.Config
}

// New creates a service.
func New(st store.Store, agentClient *agent.Client, policyEngine *policy.Engine, cfg *config.Config) *Service {
	return &Service{
		store:  st,
		agent:  agentClient,
		policy: policyEngine,
		config: cfg,
	}
}

// Agent exposes the remote agent client for the configuration surface and
// connectivity checks.
func (s *Service) Agent() *agent.Client { return s.agent }

// Apps returns the configured application catalog.
func (s *Service) Apps() []string { return s.config.Apps }

// authorize maps a policy "deny" to ErrForbidden.
func (s *Service) authorize(ctx context.Context, appName, userID, ownerApp, ownerUser string) error {
	decision, err := s.policy.Evaluate(ctx, policy.AccessInput{
		App:       appName,
		User:      userID,
		OwnerApp:  ownerApp,
		OwnerUser: ownerUser,
	})
	if err != nil {
		return err
	}
	if decision != "allow" {
		return ErrForbidden
	}
	return nil
}
