// Command lv2bench times the run method of LV2 plugins.
package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/lv2-go/internal/cliutil"
	"github.com/geoknoesis/lv2-go/lv2"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lv2bench [plugin-uri...]",
		Short: "Benchmark LV2 plugins",
		Long:  "Instantiate each plugin, feed it silence and report the time spent in run per frame.",
		RunE:  runBench,
	}
	cliutil.AddWorldFlags(rootCmd)
	flags := rootCmd.Flags()
	flags.Uint32("block", 512, "Frames per run call")
	flags.Uint32("frames", 1<<19, "Total frames to process")
	flags.Float64("rate", 48000, "Sample rate")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBench(cmd *cobra.Command, args []string) error {
	world, err := cliutil.OpenWorld(cmd)
	if err != nil {
		return err
	}
	defer world.Close()

	flags := cmd.Flags()
	block, _ := flags.GetUint32("block")
	frames, _ := flags.GetUint32("frames")
	rate, _ := flags.GetFloat64("rate")
	if block == 0 {
		return fmt.Errorf("block size must be positive")
	}

	var plugins []*lv2.Plugin
	if len(args) == 0 {
		plugins = world.Plugins().Slice()
	}
	for _, uri := range args {
		p, err := cliutil.PluginArg(world, uri)
		if err != nil {
			return err
		}
		plugins = append(plugins, p)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "# Block  Frames  Time/frame(ns)  URI")
	for _, p := range plugins {
		elapsed, err := bench(p, rate, block, frames)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipping <%s>: %v\n", p.URI(), err)
			continue
		}
		perFrame := float64(elapsed.Nanoseconds()) / float64(frames)
		fmt.Fprintf(out, "%7d  %6d  %14.3f  %s\n", block, frames, perFrame, p.URI())
	}
	return nil
}

// bench runs p over frames of silence in blocks and returns the time
// spent in Run.
func bench(p *lv2.Plugin, rate float64, block, frames uint32) (time.Duration, error) {
	inst, err := p.Instantiate(rate, nil)
	if err != nil {
		return 0, err
	}
	defer inst.Free()

	mins, maxs, defs := p.PortRanges()
	var (
		audio   = lv2.NewURI(lv2.URIAudioPort)
		cv      = lv2.NewURI(lv2.URICVPort)
		control = lv2.NewURI(lv2.URIControlPort)
	)
	for i := uint32(0); i < p.NumPorts(); i++ {
		port := p.PortByIndex(i)
		switch {
		case port.IsA(audio), port.IsA(cv):
			if err := inst.ConnectPort(i, make([]float32, block)); err != nil {
				return 0, err
			}
		case port.IsA(control):
			value := controlValue(mins[i], maxs[i], defs[i])
			if err := inst.ConnectPort(i, &value); err != nil {
				return 0, err
			}
		}
	}

	inst.Activate()
	var elapsed time.Duration
	for done := uint32(0); done < frames; done += block {
		n := min(block, frames-done)
		start := time.Now()
		if err := inst.Run(n); err != nil {
			return 0, err
		}
		elapsed += time.Since(start)
	}
	return elapsed, nil
}

// controlValue picks the default, or the middle of the range, or zero.
func controlValue(lo, hi, def float32) float32 {
	switch {
	case !isNaN(def):
		return def
	case !isNaN(lo) && !isNaN(hi):
		return lo + (hi-lo)/2
	case !isNaN(lo):
		return lo
	}
	return 0
}

func isNaN(f float32) bool { return math.IsNaN(float64(f)) }
