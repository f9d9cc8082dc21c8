package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"flintc/internal/buildpipeline"
	"flintc/internal/ui"
)

// progressUI decides whether build shows the interactive progress view.
// --ui=auto shows it on a capable terminal unless --quiet is set.
func progressUI(cmd *cobra.Command) (bool, error) {
	value, err := cmd.Flags().GetString("ui")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "", "auto":
		return !quiet(cmd) && os.Getenv("TERM") != "dumb" && isTerminal(os.Stdout), nil
	}
	return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// runBuildWithUI runs the build in the background and renders its progress
// events until the build finishes.
func runBuildWithUI(ctx context.Context, title string, targets []string, req *buildpipeline.BuildRequest) (buildpipeline.BuildResult, error) {
	if req == nil {
		return buildpipeline.BuildResult{}, fmt.Errorf("missing build request")
	}
	events := make(chan buildpipeline.Event, 16*(len(targets)+1))
	type outcome struct {
		res buildpipeline.BuildResult
		err error
	}
	done := make(chan outcome, 1)

	bg := *req
	bg.Progress = buildpipeline.ChannelSink{Ch: events, Ctx: ctx}
	go func() {
		defer close(events)
		res, err := buildpipeline.Build(ctx, &bg)
		done <- outcome{res, err}
	}()

	_, uiErr := tea.NewProgram(ui.NewProgressModel(title, targets, events), tea.WithOutput(os.Stdout)).Run()
	// The view may quit before the build does; keep the build unblocked.
	go func() {
		for range events {
		}
	}()
	out := <-done
	if uiErr != nil {
		return out.res, fmt.Errorf("progress view: %w", uiErr)
	}
	return out.res, out.err
}
