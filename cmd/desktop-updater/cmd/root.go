package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/desktop-updater/internal/config"
	"github.com/oshokin/desktop-updater/internal/logger"
	"github.com/oshokin/desktop-updater/internal/service/restarter"
	"github.com/oshokin/desktop-updater/internal/service/updater"
	"github.com/oshokin/desktop-updater/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// Trigger overrides for the restart subcommand. Registered with empty
	// defaults so an unset flag never shadows the settings file.
	stagingPath    string
	installPath    string
	executablePath string
	// Worker inputs, passed by the trigger on the apply command line. The
	// worker binds its own variables: pflag assigns defaults at registration
	// time, so sharing these with restart would overwrite restart's empty
	// defaults during init.
	applyStagingPath    string
	applyInstallPath    string
	applyExecutablePath string
	workerPath          string
	logFile             string
	logLevel            string
	waitAttempts        int
	waitInterval        time.Duration
	applyAttempts       int
	applyRetryDelay     time.Duration

	// rootCmd represents the base command of the update orchestrator.
	rootCmd = &cobra.Command{
		Use:   "desktop-updater",
		Short: "In-place self-update orchestrator for a desktop application.",
		Long: `Coordinates an unsupervised in-place update of an installed desktop application:
waits for the running instance to exit, snapshots the installation, replaces
files from a staged update directory with bounded retry, rolls back on failure,
cleans up, and relaunches the application.`,
	}

	// restartCmd is the trigger: it hands off to a detached worker and returns
	// immediately so the calling process can exit.
	restartCmd = &cobra.Command{
		Use:   "restart",
		Short: "Launch the detached update worker and exit.",
		Long: `Validates the staged update, takes the session marker, clones this executable
into the temp directory, and launches the clone as a detached worker running
the update pipeline. Returns as soon as the worker is launched; the outcome is
observable only via the worker's log file and the final installation state.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &restarter.Options{
				ConfigPath:     configPath,
				StagingPath:    stagingPath,
				InstallPath:    installPath,
				ExecutablePath: executablePath,
			}

			return restarter.Run(ctx, options)
		},
	}

	// applyCmd is the worker half of the handoff. It is launched by restart
	// and hidden from help output.
	applyCmd = &cobra.Command{
		Use:    "apply",
		Short:  "Run the update pipeline (launched internally by restart).",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// The worker is detached from any console, so its logger writes to a file.
			level, _ := logger.ParseLogLevel(logLevel)
			if logFile != "" {
				logger.SetLogger(logger.NewFile(level, logFile))
			}

			options := &updater.Options{
				StagingPath:     applyStagingPath,
				InstallPath:     applyInstallPath,
				ExecutablePath:  applyExecutablePath,
				WorkerPath:      workerPath,
				LogFile:         logFile,
				WaitAttempts:    waitAttempts,
				WaitInterval:    waitInterval,
				ApplyAttempts:   applyAttempts,
				ApplyRetryDelay: applyRetryDelay,
			}

			return updater.Run(ctx, options)
		},
	}

	// currentVersionCmd prints the build number of this binary.
	currentVersionCmd = &cobra.Command{
		Use:   "current-version",
		Short: "Print the build number embedded in this binary.",
		Long:  "Extracts and prints the build number component after the \"+\" separator of the embedded product version.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			buildNumber, err := version.BuildNumber()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), buildNumber)

			return err
		},
	}
)

// Execute runs the desktop-updater CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	restartCmd.Flags().StringVarP(&configPath, "config", "c", "",
		fmt.Sprintf("path to configuration file (default %q, missing file uses built-in defaults)", config.DefaultConfigFilename))
	restartCmd.Flags().StringVar(&stagingPath, "staging", "", "staged update directory (overrides configuration)")
	restartCmd.Flags().StringVar(&installPath, "install", "", "live application directory (overrides configuration)")
	restartCmd.Flags().StringVar(&executablePath, "executable", "", "application binary to relaunch (overrides configuration)")

	applyCmd.Flags().StringVar(&applyStagingPath, "staging", config.DefaultStagingPath, "staged update directory")
	applyCmd.Flags().StringVar(&applyInstallPath, "install", config.DefaultInstallPath, "live application directory")
	applyCmd.Flags().StringVar(&applyExecutablePath, "executable", "", "application binary to relaunch")
	applyCmd.Flags().StringVar(&workerPath, "worker-path", "", "path of this worker's executable clone")
	applyCmd.Flags().StringVar(&logFile, "log-file", config.DefaultLogFile, "pipeline log destination")
	applyCmd.Flags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "minimum log level")
	applyCmd.Flags().IntVar(&waitAttempts, "wait-attempts", config.DefaultWaitAttempts, "exit-wait poll attempts")
	applyCmd.Flags().DurationVar(&waitInterval, "wait-interval", config.DefaultWaitInterval, "pause between exit polls")
	applyCmd.Flags().IntVar(&applyAttempts, "apply-attempts", config.DefaultApplyAttempts, "file replacement attempts")
	applyCmd.Flags().DurationVar(&applyRetryDelay, "apply-delay", config.DefaultApplyRetryDelay, "pause between replacement attempts")

	rootCmd.AddCommand(restartCmd, applyCmd, currentVersionCmd)
}
