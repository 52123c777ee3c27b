// Package scan wires discovery, probing, and reporting into one run.
package scan

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"golang.org/x/time/rate"

	"github.com/everstacklabs/bedrockscan/internal/awsauth"
	"github.com/everstacklabs/bedrockscan/internal/catalog"
	"github.com/everstacklabs/bedrockscan/internal/config"
	"github.com/everstacklabs/bedrockscan/internal/matrix"
	"github.com/everstacklabs/bedrockscan/internal/oaiclient"
	"github.com/everstacklabs/bedrockscan/internal/probe"
	"github.com/everstacklabs/bedrockscan/internal/profiles"
	"github.com/everstacklabs/bedrockscan/internal/report"
)

// Exit codes for the CLI.
const (
	ExitSuccess   = 0
	ExitDiscovery = 1 // total discovery failure
	ExitWrite     = 2 // unwritable output
)

// ExitCode maps a run error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var werr *report.WriteError
	if errors.As(err, &werr) {
		return ExitWrite
	}
	return ExitDiscovery
}

// Scanner runs the full discovery → probe → report pipeline.
type Scanner struct {
	cfg     *config.Config
	bedrock *bedrock.Client
	builder *catalog.Builder
	prober  *probe.Prober
}

// New constructs the scanner and its pre-authenticated clients.
func New(ctx context.Context, cfg *config.Config) (*Scanner, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AWS.AccessKey != "" && cfg.AWS.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKey, cfg.AWS.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	timeout := cfg.ProbeTimeout()
	maxTokens := int64(cfg.MaxTokens)

	runtimeOAI := oaiclient.New(cfg.RuntimeBaseURL(),
		awsauth.New(awsCfg.Credentials, "bedrock-runtime", cfg.Region),
		timeout, cfg.TestPrompt, maxTokens)
	mantleOAI := oaiclient.New(cfg.MantleBaseURL(),
		awsauth.New(awsCfg.Credentials, "bedrock-mantle", cfg.Region),
		timeout, cfg.TestPrompt, maxTokens)

	bedrockClient := bedrock.NewFromConfig(awsCfg)

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Scanner{
		cfg:     cfg,
		bedrock: bedrockClient,
		builder: &catalog.Builder{
			Runtime: &catalog.BedrockLister{Client: bedrockClient},
			Mantle:  mantleOAI,
		},
		prober: &probe.Prober{
			Bedrock:   bedrockruntime.NewFromConfig(awsCfg),
			Chat:      runtimeOAI,
			Responses: mantleOAI,
			Limiter:   limiter,
			Prompt:    cfg.TestPrompt,
			MaxTokens: int32(cfg.MaxTokens),
			Timeout:   timeout,
		},
	}, nil
}

// Run executes the full pipeline: discovery, the probe loop, and the
// report, returning the run summary.
func (s *Scanner) Run(ctx context.Context) (report.Summary, error) {
	models, err := s.builder.Discover(ctx)
	if err != nil {
		return report.Summary{}, err
	}

	models = catalog.Limit(models, s.cfg.Limit)
	if s.cfg.Limit >= 0 {
		fmt.Printf("Limiting to first %d models\n", len(models))
	}

	profileMap, err := profiles.Discover(ctx, s.bedrock)
	if err != nil {
		return report.Summary{}, err
	}

	printDiscovery(models, profileMap)

	rows, errEntries := matrix.Build(ctx, models, profileMap, s.prober)

	summary, err := report.Write(rows, errEntries, s.cfg.Output, s.cfg.ErrorLog)
	if err != nil {
		return report.Summary{}, err
	}

	printSummary(summary, s.cfg)
	return summary, nil
}

func printDiscovery(models []catalog.Model, profileMap profiles.Map) {
	runtime, mantle := 0, 0
	for _, m := range models {
		if m.Service == catalog.ServiceRuntime {
			runtime++
		} else {
			mantle++
		}
	}
	fmt.Println("\n=== Discovery Complete ===")
	fmt.Printf("Models from bedrock-runtime: %d\n", runtime)
	fmt.Printf("Models from bedrock-mantle: %d\n", mantle)
	fmt.Printf("Models with inference profiles: %d\n", len(profileMap))
	fmt.Println("\n=== Testing API Compatibility ===")
}

func printSummary(s report.Summary, cfg *config.Config) {
	fmt.Println("\n=== Summary ===")
	fmt.Printf("Total models tested: %d\n", s.Models)
	fmt.Printf("Total API combinations: %d\n", s.Cells)
	fmt.Printf("Supported combinations: %d\n", s.Supported)
	fmt.Printf("Success rate: %.1f%%\n", s.SuccessRate*100)
	fmt.Printf("\nResults saved to: %s\n", cfg.Output)
	fmt.Printf("Error log saved to: %s\n", cfg.ErrorLog)
}
