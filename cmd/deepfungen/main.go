package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aaakoako/DeepFunGen/internal/analysis"
	"github.com/aaakoako/DeepFunGen/internal/config"
	"github.com/aaakoako/DeepFunGen/internal/logging"
	"github.com/aaakoako/DeepFunGen/internal/model"
	"github.com/aaakoako/DeepFunGen/internal/pipeline"
	"github.com/aaakoako/DeepFunGen/internal/predict"
	"github.com/aaakoako/DeepFunGen/internal/recommend"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()
	defer model.Cleanup()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "deepfungen",
	Short: "DeepFunGen - video to funscript generator",
	Long:  "Generates haptic funscript files from video using ONNX sequence-model inference and signal-driven action synthesis.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./deepfungen.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	generateCmd.Flags().Bool("no-recommend", false, "use configured postprocess options instead of recommending them")
	generateCmd.Flags().String("model", "", "override model path from config")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate [input video]",
	Short: "Generate a funscript from a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		if modelPath, _ := cmd.Flags().GetString("model"); modelPath != "" {
			cfg.Model.Path = modelPath
		}
		noRecommend, _ := cmd.Flags().GetBool("no-recommend")

		pipe, err := pipeline.New(log.Logger, cfg)
		if err != nil {
			return err
		}
		defer pipe.Close()

		reporter := pipeline.NewReporter(cmd.Context(), log.Logger)
		result, err := pipe.Generate(cmd.Context(), args[0], pipeline.GenerateOptions{
			AutoRecommend: !noRecommend,
		}, reporter)
		if err != nil {
			return err
		}

		logger := logging.WithComponent("generate")
		logger.Info().
			Int("frames", result.FrameCount).
			Int("actions", len(result.Actions)).
			Str("script", result.ScriptPath).
			Msg("funscript written")

		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend [input video]",
	Short: "Recommend postprocess parameters from sampled segments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := pipeline.New(log.Logger, cfg)
		if err != nil {
			return err
		}
		defer pipe.Close()

		rec, err := pipe.Recommend(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(rec.Reasoning)
		out, err := yamlMarshal(rec.Options)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [prediction csv]",
	Short: "Analyze a saved prediction signal and print features",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		signal, err := predict.ReadCSV(args[0])
		if err != nil {
			return err
		}
		values := signal.Values()
		features := analysis.Analyze(values)
		rec := recommend.Recommend(values)

		logger := logging.WithComponent("analyze")
		logger.Info().
			Int("samples", len(values)).
			Float64("main_frequency", features.MainFrequency).
			Float64("smoothness", features.Smoothness).
			Float64("periodicity", features.Periodicity).
			Float64("stability", features.Stability).
			Msg("signal analyzed")

		fmt.Println(rec.Reasoning)
		return nil
	},
}

func yamlMarshal(v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		out, err := yamlMarshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}
