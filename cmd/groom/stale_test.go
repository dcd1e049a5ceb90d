package main

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/trackerops/groomer/internal/config"
	"github.com/trackerops/groomer/internal/stale"
)

func daysCommand(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("days", stale.DefaultDaysThreshold, "")
	return cmd
}

func TestResolveDaysUsesConfiguredDefault(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()
	cfg = &config.Config{DaysThreshold: 7}

	if got := resolveDays(daysCommand(t)); got != 7 {
		t.Errorf("resolveDays = %d, want configured 7", got)
	}
}

func TestResolveDaysFlagWins(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()
	cfg = &config.Config{DaysThreshold: 7}

	cmd := daysCommand(t)
	if err := cmd.Flags().Set("days", "30"); err != nil {
		t.Fatal(err)
	}
	if got := resolveDays(cmd); got != 30 {
		t.Errorf("resolveDays = %d, explicit flag should win", got)
	}
}

func TestResolveDaysBuiltInDefault(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()
	cfg = &config.Config{}

	if got := resolveDays(daysCommand(t)); got != stale.DefaultDaysThreshold {
		t.Errorf("resolveDays = %d, want %d", got, stale.DefaultDaysThreshold)
	}
}
