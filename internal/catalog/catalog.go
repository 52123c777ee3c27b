// Package catalog discovers foundation models from both Bedrock services
// and merges them into one ordered list.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
)

// Service identifies which backing service returned a model.
type Service string

const (
	ServiceRuntime Service = "bedrock-runtime"
	ServiceMantle  Service = "bedrock-mantle"
)

// Model identifies one foundation model. IDs are unique within a service;
// the same ID appearing under both services is two distinct records.
type Model struct {
	ID      string
	Service Service
}

// Lister lists the model IDs one service advertises, in the service's
// natural return order.
type Lister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// DiscoveryError reports that every model source failed. A single failed
// source is tolerated; losing both leaves nothing to probe.
type DiscoveryError struct {
	RuntimeErr error
	MantleErr  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("all model sources failed: bedrock-runtime: %v; bedrock-mantle: %v",
		e.RuntimeErr, e.MantleErr)
}

// Builder assembles the model catalog from both services.
type Builder struct {
	Runtime Lister
	Mantle  Lister
}

// Discover queries both services once each and concatenates the results,
// runtime first. A failed source is logged and skipped; both failing
// returns a *DiscoveryError.
func (b *Builder) Discover(ctx context.Context) ([]Model, error) {
	var models []Model

	runtimeIDs, runtimeErr := b.Runtime.ListModels(ctx)
	if runtimeErr != nil {
		slog.Warn("bedrock-runtime discovery failed", "error", runtimeErr)
	}
	for _, id := range runtimeIDs {
		models = append(models, Model{ID: id, Service: ServiceRuntime})
	}

	mantleIDs, mantleErr := b.Mantle.ListModels(ctx)
	if mantleErr != nil {
		slog.Warn("bedrock-mantle discovery failed", "error", mantleErr)
	}
	for _, id := range mantleIDs {
		models = append(models, Model{ID: id, Service: ServiceMantle})
	}

	if runtimeErr != nil && mantleErr != nil {
		return nil, &DiscoveryError{RuntimeErr: runtimeErr, MantleErr: mantleErr}
	}

	slog.Info("model discovery complete",
		"bedrock_runtime", len(runtimeIDs),
		"bedrock_mantle", len(mantleIDs))

	return models, nil
}

// Limit truncates the catalog to its first n entries by discovery order.
// A negative n means unlimited; zero yields an empty catalog.
func Limit(models []Model, n int) []Model {
	if n < 0 || n >= len(models) {
		return models
	}
	return models[:n]
}
