package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gallxyz/lowbatt/pkg/events"
	"github.com/gallxyz/lowbatt/pkg/version"
)

func getVersion() (clientVersion, daemonVersion string, err error) {
	daemonVersion, err = apiClient.GetVersion()
	return version.Version, daemonVersion, err
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version",
		Annotations: map[string]string{annotationLocal: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewDismissCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "dismiss",
		Short:   "Dismiss the low battery alert",
		GroupID: gBasic,
		Long: `Dismiss the low battery alert, like pressing "Got it!".

The first dismiss silences the alert until the battery reaches the risk level.
Dismissing it at the risk level silences it until the battery is charged.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			st, err := apiClient.Dismiss()
			if err != nil {
				return err
			}

			logrus.WithField("suppression", st.State.Suppression.String()).Info("successfully dismissed the alert")

			return nil
		},
	}
}

func NewActCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "act",
		Short:   "Run the secondary action, e.g. hibernate",
		GroupID: gBasic,
		Long: `Run the secondary action, like pressing its button on the alert.

It is only available while the alert is shown at the risk level.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := apiClient.SecondaryAction()
			if err != nil {
				return err
			}

			logrus.Info("secondary action launched")

			return nil
		},
	}
}

func NewEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "events",
		Short:   "Follow alert events",
		GroupID: gAdvanced,
		Long:    `Print alert and action events as the daemon publishes them, until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ch, err := apiClient.SubscribeEvents(ctx)
			if err != nil {
				return err
			}

			for ev := range ch {
				cmd.Println(formatEvent(ev))
			}
			return nil
		},
	}
}

func formatEvent(ev events.Event) string {
	switch ev.Name {
	case events.AlertShown, events.AlertHidden, events.AlertDismissed:
		p, err := events.DecodeAs[events.AlertEvent](ev)
		if err != nil {
			break
		}
		return fmt.Sprintf("%s %s: battery %s, suppression %s, secondary action %s",
			time.Unix(p.Ts, 0).Format(time.TimeOnly), bold("%s", ev.Name),
			percentage(p.Percentage), p.Suppression, bool2Text(p.Secondary))
	case events.ActionLaunched, events.ActionFailed:
		p, err := events.DecodeAs[events.ActionEvent](ev)
		if err != nil {
			break
		}
		line := fmt.Sprintf("%s %s: %s", time.Unix(p.Ts, 0).Format(time.TimeOnly), bold("%s", ev.Name), p.Command)
		if p.Error != "" {
			line += ": " + p.Error
		}
		return line
	}
	return fmt.Sprintf("%s: %s", ev.Name, string(ev.Data))
}
