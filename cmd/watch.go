package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"audio_bridge/internal/client"
	"audio_bridge/internal/logger"
	"audio_bridge/internal/models"
	"audio_bridge/internal/service"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const (
	colorSuccess lipgloss.Color = "2"
	colorError   lipgloss.Color = "1"
	colorMuted   lipgloss.Color = "8"
)

var (
	runningStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	stoppedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	hintStyle    = lipgloss.NewStyle().Faint(true)
)

func newWatchCmd() *cobra.Command {
	var (
		baseURL  string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the convolver peak log through a running bridge",
		Long: `Polls the bridge the way the browser page does and prints the peaks
recorded since the last clear, most recent first. Type c and Enter to clear,
a and Enter to show the whole day again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be positive, got %s", interval)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			bridge := client.New(baseURL)
			mon := service.NewPeakMonitorService(bridge, logger.Get(logger.WarnLevel))
			return watch(ctx, mon, bridge.Available, interval, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&baseURL, "url", "u", defaultBridgeURL, "bridge base URL")
	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "poll interval")
	return cmd
}

// watch ticks mon until ctx ends, redrawing after every tick and every key
// command read from in. available reports whether the last bridge call
// reached the daemon.
func watch(ctx context.Context, mon service.PeakMonitor, available func() bool, interval time.Duration, in io.Reader, out io.Writer) error {
	keys := make(chan string)
	go readKeys(ctx, in, keys)

	draw := func(snap models.MonitorSnapshot) {
		_, _ = fmt.Fprint(out, renderWatch(snap, available()))
	}

	snap, _ := mon.Tick(ctx)
	draw(snap)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			snap, _ = mon.Tick(ctx)
			draw(snap)
		case key := <-keys:
			switch key {
			case "c":
				draw(mon.ResetWatermark())
			case "a":
				draw(mon.ShowAll())
			}
		}
	}
}

func readKeys(ctx context.Context, in io.Reader, keys chan<- string) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case keys <- strings.ToLower(strings.TrimSpace(sc.Text())):
		case <-ctx.Done():
			return
		}
	}
}

// renderWatch formats one frame: status line, optional watermark and error,
// then the peak lines.
func renderWatch(snap models.MonitorSnapshot, available bool) string {
	var b strings.Builder
	switch {
	case !available || !snap.Available:
		b.WriteString(errorStyle.Render("daemon unavailable"))
		b.WriteString(" ")
		b.WriteString(stoppedStyle.Render(snap.Status))
	case snap.Running:
		b.WriteString(runningStyle.Render(snap.Status))
	default:
		b.WriteString(stoppedStyle.Render(snap.Status))
	}
	b.WriteString("\n")
	if snap.Watermark != "" {
		b.WriteString(hintStyle.Render("cleared at " + snap.Watermark))
		b.WriteString("\n")
	}
	if snap.Error != "" {
		b.WriteString(errorStyle.Render(snap.Error))
		b.WriteString("\n")
	}
	b.WriteString(snap.Display)
	return b.String()
}
