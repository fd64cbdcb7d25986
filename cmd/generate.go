package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	aiutils "libgenui_server/internal/ai/utils"
	"libgenui_server/internal/pipeline"
)

var (
	generatePrompt string
	generateImage  string
	generateOut    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generation and print the artifact as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := pipeline.Request{Prompt: generatePrompt}
		if generateImage != "" {
			data, err := os.ReadFile(generateImage)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			req.Image = data
		}
		if req.Prompt == "" && req.Image == nil {
			return errors.New("one of --prompt or --image is required")
		}

		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		artifact, err := a.orchestrator.Run(ctx, req)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(artifact); err != nil {
			return err
		}
		if generateOut != "" {
			return aiutils.SaveFilesDisk(generateOut, artifact.StoredFiles())
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generatePrompt, "prompt", "p", "", "text description of the UI to generate")
	generateCmd.Flags().StringVarP(&generateImage, "image", "i", "", "path to a screenshot to generate from")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "directory to write the generated files to")
	generateCmd.MarkFlagsMutuallyExclusive("prompt", "image")
}
