// Package profiles discovers inference profiles and classifies each one
// into a routing scope.
package profiles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrock"
)

// Scope is the routing scope of an inference profile.
type Scope string

const (
	ScopeInRegion Scope = "in-region"
	ScopeRegional Scope = "regional-cross-region"
	ScopeGlobal   Scope = "global-cross-region"
)

// ScopeOrder is the fixed enumeration order for matrix rows.
var ScopeOrder = []Scope{ScopeInRegion, ScopeRegional, ScopeGlobal}

// Map is the inverse mapping from model ID to the invocation target per
// observed scope. The target is the inference profile ID that routes to the
// model under that scope.
type Map map[string]map[Scope]string

// Scopes returns the scope targets for a model. A model with no associated
// profile gets the documented fallback: one in-region scope targeting the
// bare model ID, i.e. direct invocation.
func (m Map) Scopes(modelID string) map[Scope]string {
	if targets, ok := m[modelID]; ok && len(targets) > 0 {
		return targets
	}
	return map[Scope]string{ScopeInRegion: modelID}
}

// geographies are the prefixes Bedrock uses for regional cross-region
// system profiles.
var geographies = map[string]bool{
	"us":   true,
	"eu":   true,
	"ap":   true,
	"apac": true,
	"jp":   true,
	"au":   true,
}

// ClassifyProfile derives a profile's scope from its ID prefix. A geography
// prefix (us., eu., ap., ...) marks a regional cross-region profile and
// global. marks a global one; everything else routes in-region. The second
// return value is false when the ID carries a dotted prefix that is not a
// known routing token, which callers should warn about.
func ClassifyProfile(profileID string) (Scope, bool) {
	prefix, rest, found := strings.Cut(profileID, ".")
	if !found || rest == "" {
		return ScopeInRegion, true
	}
	if geographies[prefix] {
		return ScopeRegional, true
	}
	if prefix == "global" {
		return ScopeGlobal, true
	}
	return ScopeInRegion, false
}

// ModelIDFromARN extracts the trailing model identifier from a foundation
// model ARN.
func ModelIDFromARN(arn string) string {
	if i := strings.LastIndex(arn, "/"); i >= 0 {
		return arn[i+1:]
	}
	return arn
}

// BedrockAPI is the slice of the control-plane client profile discovery
// needs. *bedrock.Client satisfies it.
type BedrockAPI interface {
	ListInferenceProfiles(ctx context.Context, params *bedrock.ListInferenceProfilesInput, optFns ...func(*bedrock.Options)) (*bedrock.ListInferenceProfilesOutput, error)
}

// Discover retrieves all inference profiles and builds the inverse mapping
// from model ID to scope targets. When a model has several profiles of the
// same scope, the first in listing order wins, keeping enumeration
// deterministic.
func Discover(ctx context.Context, client BedrockAPI) (Map, error) {
	m := make(Map)
	profileCount := 0

	var token *string
	for {
		out, err := client.ListInferenceProfiles(ctx, &bedrock.ListInferenceProfilesInput{NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("listing inference profiles: %w", err)
		}

		for _, summary := range out.InferenceProfileSummaries {
			if summary.InferenceProfileId == nil {
				continue
			}
			profileID := *summary.InferenceProfileId
			scope, recognized := ClassifyProfile(profileID)
			if !recognized {
				slog.Warn("unrecognized profile routing prefix, classifying as in-region", "profile", profileID)
			}
			profileCount++

			for _, pm := range summary.Models {
				if pm.ModelArn == nil {
					continue
				}
				modelID := ModelIDFromARN(*pm.ModelArn)
				if modelID == "" {
					continue
				}
				targets := m[modelID]
				if targets == nil {
					targets = make(map[Scope]string)
					m[modelID] = targets
				}
				if existing, ok := targets[scope]; ok {
					slog.Debug("duplicate profile for scope, keeping first",
						"model", modelID, "scope", scope, "kept", existing, "skipped", profileID)
					continue
				}
				targets[scope] = profileID
			}
		}

		if out.NextToken == nil {
			break
		}
		token = out.NextToken
	}

	slog.Info("inference profile discovery complete", "profiles", profileCount, "models", len(m))
	return m, nil
}
