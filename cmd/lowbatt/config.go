package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gallxyz/lowbatt/pkg/config"
)

func printConfig(cmd *cobra.Command, conf config.Config) {
	cmd.Println(bold("Configuration (%s):", configPath))
	cmd.Printf("  %-22s %s\n", "Low level:", bold("%d%%", conf.LowLevel()))
	cmd.Printf("  %-22s %s\n", "Risk level:", bold("%d%%", conf.RiskLevel()))
	cmd.Printf("  %-22s %s\n", "Button text:", bold("%s", conf.ButtonText()))
	cmd.Printf("  %-22s %s\n", "Button command:", bold("%s", conf.ButtonCommand()))
	style := conf.StyleFile()
	if style == "" {
		style = "(built-in)"
	}
	cmd.Printf("  %-22s %s\n", "Style file:", bold("%s", style))
	cmd.Printf("  %-22s %s\n", "Presenter:", bold("%s", conf.Presenter()))
	cmd.Printf("  %-22s %s\n", "Sample interval:", bold("%s", conf.SampleInterval()))
	cmd.Printf("  %-22s %s\n", "Tick interval:", bold("%s", conf.TickInterval()))
	cmd.Printf("  %-22s %s\n", "Other users allowed:", bool2Text(conf.AllowNonRootAccess()))
	if m := conf.MQTT(); m.Enabled() {
		cmd.Printf("  %-22s %s (topic %s)\n", "MQTT broker:", bold("%s", m.Broker), m.Topic)
	} else {
		cmd.Printf("  %-22s %s\n", "MQTT broker:", bool2Text(false))
	}
}

// NewConfigCommand .
func NewConfigCommand() *cobra.Command {
	f := &daemonFlags{}

	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Show or change the config file",
		GroupID:     gAdvanced,
		Annotations: map[string]string{annotationLocal: "true"},
		Long: `Show the config file, or change it with the same flags as "lowbatt daemon".

Changes are validated and saved. Restart the daemon for them to take effect.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			if f.changed(cmd) {
				f.apply(cmd, conf)
				if err := conf.Validate(); err != nil {
					return err
				}
				if err := conf.Save(); err != nil {
					return err
				}
				logrus.Infof("config saved to %s, restart the daemon to apply it", configPath)
			}

			printConfig(cmd, conf)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&f.low, "low", 15, "Battery level (percent) at or below which the alert shows.")
	flags.IntVar(&f.risk, "risk", 5, "Battery level (percent) at or below which the secondary action is offered.")
	flags.StringVar(&f.buttonText, "button-text", "Hibernate", "Label of the secondary action button.")
	flags.StringVar(&f.buttonCommand, "button-command", "systemctl hibernate", "Shell command run by the secondary action.")
	flags.StringVar(&f.styleFile, "style-file", "", "JSON theme for the tui presenter.")
	flags.StringVar(&f.presenter, "presenter", config.PresenterTUI, "How to show the alert (tui, tray, log).")
	flags.BoolVar(&f.alwaysAllowNonRootAccess, "allow-non-root-access", false, "Allow other users to access the daemon.")

	return cmd
}
