// Command scanlinedemo is a small reference app exercising scanline's
// three build-time render modes and frame pacing knobs from a cobra CLI -
// a counter ticking on its own via UseInterval, with Up/Down adjusting it
// and Ctrl+C (or the mode-specific quit behavior) exiting.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/scanline-tui/scanline"
	"github.com/spf13/cobra"
)

func main() {
	var (
		modeFlag    string
		fps         int
		exitOnCtrlC bool
	)

	root := &cobra.Command{
		Use:   "scanlinedemo",
		Short: "Demo application for the scanline terminal UI framework",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseMode(modeFlag)
			if err != nil {
				return err
			}

			opts := scanline.RunOptions{
				Mode:        mode,
				FPS:         fps,
				ExitOnCtrlC: &exitOnCtrlC,
			}
			return scanline.Run(counterApp, opts)
		},
	}

	root.Flags().StringVar(&modeFlag, "mode", "inline", "render mode: inline, alt-screen, explicit-inline")
	root.Flags().IntVar(&fps, "fps", 60, "target frame rate")
	root.Flags().BoolVar(&exitOnCtrlC, "exit-on-ctrl-c", true, "exit the app when Ctrl+C is pressed")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseMode(s string) (scanline.AppMode, error) {
	switch s {
	case "inline":
		return scanline.ModeInline, nil
	case "alt-screen":
		return scanline.ModeAltScreen, nil
	case "explicit-inline":
		return scanline.ModeExplicitInline, nil
	default:
		return 0, fmt.Errorf("unknown --mode %q (want inline, alt-screen, or explicit-inline)", s)
	}
}

// counterApp is the demo's root component: a bordered box showing a count
// that ticks up once a second on its own (UseInterval) and responds to
// Up/Down for manual adjustment (UseInput) - enough surface to exercise
// UseState, UseInterval and UseInput together in one screen.
func counterApp(ctx *scanline.RuntimeContext) scanline.Element {
	count, setCount := scanline.UseState(ctx, 0)

	scanline.UseInterval(ctx, func() {
		setCount(count + 1)
	}, time.Second)

	scanline.UseInput(ctx, func(key string) bool {
		switch key {
		case scanline.Up:
			setCount(count + 1)
			return true
		case scanline.Down:
			setCount(count - 1)
			return true
		}
		return false
	})

	return scanline.Box("box", scanline.ElementStyle{
		Layout: scanline.LayoutStyle{
			Direction: scanline.Column,
			Justify:   scanline.JustifyCenter,
			Align:     scanline.AlignCenter,
			Width:     30,
			Height:    7,
			Padding:   scanline.Spacing{Top: 1, Bottom: 1, Left: 2, Right: 2},
		},
		Border: scanline.BorderFacet{
			Style: scanline.BorderRounded,
			Color: scanline.ColorCyan,
			Label: "scanlinedemo",
		},
	}, nil,
		scanline.Text(fmt.Sprintf("count: %d", count)),
		scanline.Text("Up/Down to adjust, Ctrl+C to quit"),
	)
}
