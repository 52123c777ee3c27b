package catalog

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrock"
)

// BedrockAPI is the slice of the Bedrock control-plane client the catalog
// needs. *bedrock.Client satisfies it.
type BedrockAPI interface {
	ListFoundationModels(ctx context.Context, params *bedrock.ListFoundationModelsInput, optFns ...func(*bedrock.Options)) (*bedrock.ListFoundationModelsOutput, error)
}

// BedrockLister lists foundation models via the Bedrock control plane.
type BedrockLister struct {
	Client BedrockAPI
}

func (l *BedrockLister) ListModels(ctx context.Context) ([]string, error) {
	out, err := l.Client.ListFoundationModels(ctx, &bedrock.ListFoundationModelsInput{})
	if err != nil {
		return nil, fmt.Errorf("listing foundation models: %w", err)
	}

	ids := make([]string, 0, len(out.ModelSummaries))
	for _, s := range out.ModelSummaries {
		if s.ModelId == nil {
			continue
		}
		ids = append(ids, *s.ModelId)
	}
	return ids, nil
}
