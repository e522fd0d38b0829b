package main

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gallxyz/lowbatt/pkg/config"
	daemonutils "github.com/gallxyz/lowbatt/pkg/utils/daemon"
)

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	allowNonRootAccess := false
	presenter := config.PresenterTray

	cmd := &cobra.Command{
		Use:         "install",
		Short:       "Install lowbatt as a systemd user service",
		GroupID:     gInstallation,
		Annotations: map[string]string{annotationLocal: "true"},
		Long: `Install lowbatt daemon as a systemd user service.

This makes lowbatt start with your graphical session. A service has no terminal,
so it uses the "tray" presenter unless you pick "log".

By default, only you are allowed to access the lowbatt daemon. Use
--allow-non-root-access to let other users dismiss the alert too.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if presenter == config.PresenterTUI {
				return fmt.Errorf("the %q presenter needs a terminal and cannot run as a service", presenter)
			}

			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			conf.SetAllowNonRootAccess(allowNonRootAccess)
			if allowNonRootAccess {
				logrus.Info("other users are allowed to access the lowbatt daemon.")
			} else {
				logrus.Info("only you are allowed to access the lowbatt daemon.")
			}

			// The daemon reads the config as soon as the service starts.
			err = conf.Save()
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}

			err = daemonutils.Install(presenter)
			if err != nil {
				return fmt.Errorf("failed to install daemon: %w", err)
			}

			logrus.Infof("installation succeeded")

			exePath, _ := os.Executable()

			cmd.Printf("`systemd' will use current binary (%s) at startup so please make sure you do not move this binary. Once this binary is moved or deleted, you will need to run ``lowbatt install'' again.\n", exePath)

			return nil
		},
	}

	cmd.Flags().BoolVar(&allowNonRootAccess, "allow-non-root-access", false, "Allow other users to access lowbatt daemon.")
	cmd.Flags().StringVar(&presenter, "presenter", presenter, "How the service shows the alert (tray, log).")

	return cmd
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "uninstall",
		Short:       "Uninstall the lowbatt systemd user service",
		GroupID:     gInstallation,
		Annotations: map[string]string{annotationLocal: "true"},
		Long: `Uninstall lowbatt daemon from systemd.

This stops lowbatt and removes its user unit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := daemonutils.Uninstall()
			if err != nil {
				return fmt.Errorf("failed to uninstall daemon: %w", err)
			}

			fmt.Println("successfully uninstalled")

			cmd.Printf("Your config is kept in %s, in case you want to use `lowbatt' again. If you want a complete uninstall, you can remove both config file and lowbatt itself manually.\n", configPath)

			return nil
		},
	}

	return cmd
}
