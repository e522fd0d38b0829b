package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gallxyz/lowbatt/pkg/alert"
	"github.com/gallxyz/lowbatt/pkg/config"
	"github.com/gallxyz/lowbatt/pkg/types"
)

type statusData struct {
	status      *types.DaemonStatus
	batteryInfo *types.BatteryInfo
	config      *config.RawFileConfig
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	st, err := apiClient.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	// Battery details are optional, e.g. on desktops.
	bat, _ := apiClient.GetBatteryInfo()

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return &statusData{
		status:      st,
		batteryInfo: bat,
		config:      conf,
	}, nil
}

func suppressionText(s alert.Suppression) string {
	switch s {
	case alert.SuppressionOnce:
		return color.YellowString("dismissed once, back at the risk level")
	case alert.SuppressionSession:
		return color.RedString("dismissed until the battery recovers")
	}
	return color.GreenString("none")
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of lowbatt",
		Long:    `Get the alert state, battery info, and configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			st := data.status
			conf := config.NewFileFromConfig(data.config, "")

			cmd.Println(bold("Alert:"))
			cmd.Printf("  Shown: %s\n", bool2Text(st.State.Visible))
			cmd.Printf("  Secondary action (%s) available: %s\n", conf.ButtonText(), bool2Text(st.State.SecondaryActionEnabled))
			cmd.Printf("  Suppression: %s\n", bold("%s", suppressionText(st.State.Suppression)))
			if st.Decision.StatusText != "" {
				cmd.Printf("  Message: %s\n", st.Decision.StatusText)
			}

			cmd.Println()

			cmd.Println(bold("Battery status:"))
			cmd.Printf("  Current charge: %s\n", bold("%s", percentage(st.Sample.Percentage)))
			cmd.Printf("  Charging: %s\n", bool2Text(st.Sample.Charging))
			if st.LastSampleError != "" {
				cmd.Printf("  Last reading failed: %s\n", color.RedString("%s", st.LastSampleError))
			}
			if bat := data.batteryInfo; bat != nil {
				state := bat.State
				switch bat.State {
				case "Charging":
					state = color.GreenString("charging")
				case "Discharging":
					state = color.RedString("discharging")
				}
				cmd.Printf("  State: %s\n", bold("%s", state))
				cmd.Printf("  Energy: %s\n", bold("%.1f / %.1f Wh", bat.Current/1e3, bat.Full/1e3))
				cmd.Printf("  Health: %s\n", bold("%.1f%%", bat.Health))
				cmd.Printf("  Charge rate: %s\n", bold("%.1f W", bat.ChargeRate/1e3))
				cmd.Printf("  Voltage: %s\n", bold("%.2f V", bat.Voltage))
			}

			cmd.Println()

			cmd.Println(bold("Configuration:"))
			cmd.Printf("  Low level: %s\n", bold("%d%%", conf.LowLevel()))
			cmd.Printf("  Risk level: %s\n", bold("%d%%", conf.RiskLevel()))
			cmd.Printf("  Secondary action: %s (%s)\n", bold("%s", conf.ButtonText()), conf.ButtonCommand())
			cmd.Printf("  Presenter: %s\n", bold("%s", st.Presenter))
			cmd.Printf("  Sampler: %s\n", bold("%s", st.Sampler))
			if m := conf.MQTT(); m.Enabled() {
				cmd.Printf("  MQTT: %s (topic %s)\n", bold("%s", m.Broker), m.Topic)
			}
			cmd.Printf("  Allow other users to access the daemon: %s\n", bool2Text(conf.AllowNonRootAccess()))
			if st.MissedTicks > 0 {
				cmd.Printf("  Resumed from sleep: %s\n", bold("%d times", st.MissedTicks))
			}
			return nil
		},
	}
}
