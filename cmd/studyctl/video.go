package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"studyblossom/internal/providers/render"
	"studyblossom/internal/video"
)

func newVideoCmd() *cobra.Command {
	var (
		topicFlag    string
		durationFlag string
	)
	cmd := &cobra.Command{
		Use:   "video",
		Short: "Generate a video for a topic and print the result",
		Long: `Video writes a script, submits it for rendering and polls until the video
is ready. Ctrl-C cancels the run.

Example:
  studyctl video --topic "Fotosíntesis y respiración celular" --duration short`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := video.ParseTier(durationFlag)
			if err != nil {
				return err
			}
			c, err := loadClients()
			if err != nil {
				return err
			}
			pipeline := video.NewPipeline(c.text, c.render, video.Options{
				PollInterval: c.cfg.VideoPollInterval,
				MaxAttempts:  c.cfg.VideoMaxAttempts,
				Voice:        render.Voice{Type: c.cfg.RenderVoiceType, VoiceID: c.cfg.RenderVoiceID},
				SourceURL:    c.cfg.RenderSourceURL,
				Logger:       &c.logger,
			})

			result, err := pipeline.Generate(cmd.Context(), topicFlag, tier)
			if err != nil {
				var pe *video.PipelineError
				if errors.As(err, &pe) {
					fmt.Fprintln(cmd.ErrOrStderr(), pe.UserMessage)
				}
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVarP(&topicFlag, "topic", "t", "", "Topic to explain")
	cmd.Flags().StringVarP(&durationFlag, "duration", "d", string(video.TierShort), "Video length (short, medium or long)")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}
