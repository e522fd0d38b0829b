package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gallxyz/lowbatt/pkg/config"
	"github.com/gallxyz/lowbatt/pkg/daemon"
	"github.com/gallxyz/lowbatt/pkg/version"
)

type daemonFlags struct {
	low                      int
	risk                     int
	buttonText               string
	buttonCommand            string
	styleFile                string
	presenter                string
	alwaysAllowNonRootAccess bool
	background               bool
}

var daemonFlagNames = []string{
	"low", "risk", "button-text", "button-command", "style-file", "presenter",
}

// changed reports whether any config flag was set.
func (f *daemonFlags) changed(cmd *cobra.Command) bool {
	for _, name := range daemonFlagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return f.alwaysAllowNonRootAccess
}

// apply copies the flags the user set over conf.
func (f *daemonFlags) apply(cmd *cobra.Command, conf config.Config) {
	flags := cmd.Flags()
	if flags.Changed("low") {
		conf.SetLowLevel(f.low)
	}
	if flags.Changed("risk") {
		conf.SetRiskLevel(f.risk)
	}
	if flags.Changed("button-text") {
		conf.SetButtonText(f.buttonText)
	}
	if flags.Changed("button-command") {
		conf.SetButtonCommand(f.buttonCommand)
	}
	if flags.Changed("style-file") {
		conf.SetStyleFile(f.styleFile)
	}
	if flags.Changed("presenter") {
		conf.SetPresenter(f.presenter)
	}
	if f.alwaysAllowNonRootAccess {
		conf.SetAllowNonRootAccess(true)
	}
}

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	f := &daemonFlags{}

	cmd := &cobra.Command{
		Use:         "daemon",
		Short:       "Run lowbatt daemon in the foreground",
		GroupID:     gAdvanced,
		Annotations: map[string]string{annotationLocal: "true"},
		Long: `Run lowbatt daemon in the foreground.

The daemon watches the battery and shows the alert with the configured
presenter: "tui" takes over the terminal, "tray" lives in the system tray,
"log" only writes log lines. Flags override the config file for this run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}
			f.apply(cmd, conf)
			if err := conf.Validate(); err != nil {
				return err
			}

			if f.background {
				if conf.Presenter() == config.PresenterTUI {
					return fmt.Errorf("the %q presenter needs a terminal, use --presenter tray or log with --background", config.PresenterTUI)
				}
				pid, err := startBackground(os.Args[1:])
				if err != nil {
					return fmt.Errorf("failed to start daemon in background: %w", err)
				}
				cmd.Printf("lowbatt daemon started in background (pid %d)\n", pid)
				return nil
			}

			// The TUI owns the terminal, so logs go to a file.
			if conf.Presenter() == config.PresenterTUI && logFile == "" {
				logFile = config.DefaultLogPath()
			}
			if logFile != "" {
				closer, err := redirectLogs(config.ExpandHome(logFile))
				if err != nil {
					return err
				}
				defer closer.Close()
			}

			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("lowbatt daemon starting")
			return daemon.Run(conf, unixSocketPath)
		},
	}

	flags := cmd.Flags()

	flags.IntVar(&f.low, "low", 15, "Battery level (percent) at or below which the alert shows.")
	flags.IntVar(&f.risk, "risk", 5, "Battery level (percent) at or below which the secondary action is offered.")
	flags.StringVar(&f.buttonText, "button-text", "Hibernate", "Label of the secondary action button.")
	flags.StringVar(&f.buttonCommand, "button-command", "systemctl hibernate", "Shell command run by the secondary action.")
	flags.StringVar(&f.styleFile, "style-file", "", "JSON theme for the tui presenter.")
	flags.StringVar(&f.presenter, "presenter", config.PresenterTUI, "How to show the alert (tui, tray, log).")
	flags.StringVar(&logFile, "log-file", "", "Write logs to this file. Defaults to "+config.DefaultLogPath()+" with the tui presenter.")
	flags.BoolVar(&f.alwaysAllowNonRootAccess, "always-allow-non-root-access", false,
		"Always allow other users to access the daemon.")
	flags.BoolVar(&f.background, "background", false, "Detach from the terminal and keep running in the background.")

	return cmd
}
