package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fairway/internal/deps"
	"fairway/internal/ipc"
	"fairway/internal/preflight"
	"fairway/internal/queue"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start queue processing on the fairway daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Start()
				if err != nil {
					return err
				}
				if resp.Started {
					fmt.Fprintln(cmd.OutOrStdout(), "Daemon processing started")
				} else if strings.TrimSpace(resp.Message) != "" {
					fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
				}
				return nil
			})
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop queue processing on the fairway daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Stop(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon processing stopped")
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show system and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatusCommand(ctx, cmd)
		},
	}

	return []*cobra.Command{startCmd, stopCmd, statusCmd}
}

func runStatusCommand(ctx *commandContext, cmd *cobra.Command) error {
	cfg := ctx.configValue()
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	var (
		running      bool
		daemonDetail string
		stats        map[string]int
		stages       []ipc.StageHealth
		dependencies []ipc.DependencyStatus
	)

	err := ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
		if client != nil {
			resp, err := client.Status()
			if err != nil {
				return err
			}
			running = resp.Running
			daemonDetail = fmt.Sprintf("Running (pid %d)", resp.PID)
			if !resp.Running {
				daemonDetail = "Connected, processing stopped"
			}
			stats = resp.QueueStats
			stages = resp.StageHealth
			dependencies = resp.Dependencies
			return nil
		}

		daemonDetail = "Not running"
		queueStats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		stats = make(map[string]int, len(queueStats))
		for status, count := range queueStats {
			stats[string(status)] = count
		}
		for _, dep := range deps.CheckBinaries(deps.Requirements(cfg)) {
			dependencies = append(dependencies, ipc.DependencyStatus{
				Name:        dep.Name,
				Command:     dep.Command,
				Description: dep.Description,
				Optional:    dep.Optional,
				Available:   dep.Available,
				Detail:      dep.Detail,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, line := range renderSectionHeader("System Status", colorize) {
		fmt.Fprintln(stdout, line)
	}
	daemonKind := statusWarn
	if running {
		daemonKind = statusOK
	}
	fmt.Fprintln(stdout, renderStatusLine("Daemon", daemonKind, daemonDetail, colorize))
	for _, check := range []struct {
		label string
		path  string
	}{
		{"Staging", cfg.Paths.StagingDir},
		{"Output", cfg.Paths.OutputDir},
	} {
		result := preflight.CheckDirectoryAccess(check.label, check.path)
		kind := statusError
		if result.Passed {
			kind = statusOK
		}
		fmt.Fprintln(stdout, renderStatusLine(check.label, kind, result.Detail, colorize))
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(stdout, line)
	}
	for _, line := range dependencyLines(dependencies, colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout)

	if len(stages) > 0 {
		for _, line := range renderSectionHeader("Stages", colorize) {
			fmt.Fprintln(stdout, line)
		}
		for _, stg := range stages {
			kind := statusWarn
			message := stg.Detail
			if stg.Ready {
				kind = statusOK
				if message == "" {
					message = "Ready"
				}
			}
			fmt.Fprintln(stdout, renderStatusLine(formatStatusLabel(stg.Name), kind, message, colorize))
		}
		fmt.Fprintln(stdout)
	}

	for _, line := range renderSectionHeader("Queue Status", colorize) {
		fmt.Fprintln(stdout, line)
	}
	rows := buildQueueStatusRows(stats)
	if len(rows) == 0 {
		fmt.Fprintln(stdout, "Queue is empty")
		return nil
	}
	table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
	fmt.Fprintln(stdout, table)
	return nil
}

func dependencyLines(dependencies []ipc.DependencyStatus, colorize bool) []string {
	if len(dependencies) == 0 {
		return []string{renderStatusLine("Summary", statusInfo, "No dependencies reported", colorize)}
	}
	lines := make([]string, 0, len(dependencies)+1)
	missing := make([]string, 0)
	for _, dep := range dependencies {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		if !dep.Optional {
			missing = append(missing, dep.Name)
		}
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines
}
