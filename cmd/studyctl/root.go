package main

import (
	"github.com/spf13/cobra"

	"studyblossom/internal/infra"
	"studyblossom/internal/providers/genai"
	"studyblossom/internal/providers/render"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "studyctl",
		Short: "studyctl - operator tool for the StudyBlossom API",
		Long: `studyctl runs the study goal validator and the video pipeline from a
terminal, without the HTTP layer.

Commands:
  validate      Check a goal name or topic against the content rules
  render-check  Verify the rendering credentials and print remaining credits
  video         Generate a video for a topic and print the result`,
		SilenceUsage: true,
	}
	root.AddCommand(newValidateCmd(), newRenderCheckCmd(), newVideoCmd())
	return root
}

type clients struct {
	cfg    *infra.Config
	logger infra.Logger
	text   *genai.Client
	render *render.Client
}

func loadClients() (*clients, error) {
	cfg, err := infra.LoadClientConfig()
	if err != nil {
		return nil, err
	}
	logger := infra.NewLogger(cfg.AppEnv)
	return &clients{
		cfg:    cfg,
		logger: logger,
		text: genai.NewClient(genai.Options{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Timeout: cfg.GeminiTimeout,
			Logger:  &logger,
		}),
		render: render.NewClient(render.Options{
			APIKey:  cfg.RenderAPIKey,
			BaseURL: cfg.RenderBaseURL,
			Timeout: cfg.RenderTimeout,
			Logger:  &logger,
		}),
	}, nil
}
