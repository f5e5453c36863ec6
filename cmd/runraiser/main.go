package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"RunRaiser/internal/app"
	"RunRaiser/internal/config"
	"RunRaiser/internal/domain"
	"RunRaiser/internal/logging"
)

type requestFlags struct {
	platform  string
	tone      string
	objective string
	audience  string
	cta       string
}

func (f requestFlags) apply(req domain.PostRequest) domain.PostRequest {
	if f.platform != "" {
		req.TargetPlatform = domain.Platform(f.platform)
	}
	if f.tone != "" {
		req.Tone = domain.Tone(f.tone)
	}
	if f.objective != "" {
		req.Objective = f.objective
	}
	if f.audience != "" {
		req.Audience = f.audience
	}
	if f.cta != "" {
		req.CallToActionHint = f.cta
	}
	return req
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "runraiser:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return 2
	case domain.KindSelection:
		return 3
	default:
		return 1
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	var flags requestFlags

	rootCmd := &cobra.Command{
		Use:           "runraiser",
		Short:         "Post-and-approve orchestrator for the RMHC Run-Raiser campaign",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				return os.Setenv("RUNRAISER_CONFIG", cfgFile)
			}
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file (overrides RUNRAISER_CONFIG)")
	pf.StringVar(&flags.platform, "platform", "", "target platform: linkedin|strava|internal")
	pf.StringVar(&flags.tone, "tone", "", "tone: professional|motivational|casual")
	pf.StringVar(&flags.objective, "objective", "", "post objective")
	pf.StringVar(&flags.audience, "audience", "", "intended audience")
	pf.StringVar(&flags.cta, "cta", "", "call to action hint")

	rootCmd.AddCommand(newRunCmd(&flags))
	rootCmd.AddCommand(newScheduleCmd(&flags))

	return rootCmd
}

func bootstrap(ctx context.Context, logOut io.Writer) (*app.Application, config.Config, error) {
	cfg := config.Load()
	logger := logging.NewWriter(logOut, cfg.Logging)

	application, err := app.New(ctx, cfg, logger, app.Options{})
	if err != nil {
		return nil, cfg, fmt.Errorf("build application: %w", err)
	}
	return application, cfg, nil
}

func newRunCmd(flags *requestFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the workflow once and print the result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application, cfg, err := bootstrap(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer application.Close()

			result, err := application.Run(ctx, flags.apply(cfg.Request))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(result)
		},
	}
}

func newScheduleCmd(flags *requestFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the workflow periodically until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, cfg, err := bootstrap(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Schedule(ctx, flags.apply(cfg.Request)); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
