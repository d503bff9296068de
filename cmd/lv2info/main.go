// Command lv2info prints everything known about LV2 plugins.
package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/lv2-go/internal/cliutil"
	"github.com/geoknoesis/lv2-go/lv2"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lv2info [plugin-uri...]",
		Short: "Print information about LV2 plugins",
		Long:  "Print information about the given plugins, or about every installed plugin when none is named.",
		RunE:  runInfo,
	}
	cliutil.AddWorldFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	world, err := cliutil.OpenWorld(cmd)
	if err != nil {
		return err
	}
	defer world.Close()

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
	for i, p := range plugins {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printPlugin(out, world, p)
	}
	return nil
}

func printPlugin(out io.Writer, world *lv2.World, p *lv2.Plugin) {
	fmt.Fprintln(out, p.URI())
	fmt.Fprintf(out, "\n\tName:              %s\n", p.Name())
	fmt.Fprintf(out, "\tClass:             %s\n", p.Class().Label())
	if name := p.AuthorName(); name != nil {
		fmt.Fprintf(out, "\tAuthor:            %s\n", name)
	}
	if email := p.AuthorEmail(); email != nil {
		fmt.Fprintf(out, "\tAuthor Email:      %s\n", email)
	}
	if home := p.AuthorHomepage(); home != nil {
		fmt.Fprintf(out, "\tAuthor Homepage:   %s\n", home)
	}
	fmt.Fprintf(out, "\tHas latency:       %s\n", yesNo(p.HasLatency()))
	if idx, ok := p.LatencyPortIndex(); ok {
		fmt.Fprintf(out, "\tLatency port:      %d\n", idx)
	}
	fmt.Fprintf(out, "\tBundle:            %s\n", p.BundleURI())
	if lib := p.LibraryURI(); lib != nil {
		fmt.Fprintf(out, "\tBinary:            %s\n", lib)
	}
	if uis := p.UIs(); uis != nil {
		fmt.Fprintln(out, "\tUIs:")
		for ui := range uis.All() {
			fmt.Fprintf(out, "\t\t%s\n", ui.URI())
			for class := range ui.Classes().All() {
				fmt.Fprintf(out, "\t\t\tClass:  %s\n", class)
			}
			fmt.Fprintf(out, "\t\t\tBinary: %s\n", ui.BinaryURI())
			fmt.Fprintf(out, "\t\t\tBundle: %s\n", ui.BundleURI())
		}
	}
	printList(out, "Data URIs", p.DataURIs())
	printList(out, "Required Features", p.RequiredFeatures().Slice())
	printList(out, "Optional Features", p.OptionalFeatures().Slice())
	printList(out, "Extension Data", p.ExtensionData().Slice())
	printList(out, "Presets", presetLabels(world, p))
	if p.IsReplaced() {
		fmt.Fprintln(out, "\tReplaced:          yes")
	}

	mins, maxs, defs := p.PortRanges()
	for i := uint32(0); i < p.NumPorts(); i++ {
		printPort(out, p.PortByIndex(i), mins[i], maxs[i], defs[i])
	}
}

func printList(out io.Writer, title string, nodes []*lv2.Node) {
	if len(nodes) == 0 {
		return
	}
	fmt.Fprintf(out, "\t%-19s%s\n", title+":", nodes[0])
	for _, n := range nodes[1:] {
		fmt.Fprintf(out, "\t%19s%s\n", "", n)
	}
}

func presetLabels(world *lv2.World, p *lv2.Plugin) []*lv2.Node {
	var labels []*lv2.Node
	label := lv2.NewURI(lv2.URIRDFSLabel)
	for preset := range p.Related(lv2.NewURI(lv2.URIPreset)).All() {
		if _, err := world.LoadResource(preset); err != nil {
			continue
		}
		if l := world.Get(preset, label, nil); l != nil {
			labels = append(labels, l)
		} else {
			labels = append(labels, preset)
		}
	}
	return labels
}

func printPort(out io.Writer, port *lv2.Port, lo, hi, def float32) {
	fmt.Fprintf(out, "\n\tPort %d:\n", port.Index())
	var classes []string
	for class := range port.Classes().All() {
		classes = append(classes, class.String())
	}
	fmt.Fprintf(out, "\t\tType:        %s\n", strings.Join(classes, "\n\t\t             "))
	fmt.Fprintf(out, "\t\tSymbol:      %s\n", port.Symbol())
	fmt.Fprintf(out, "\t\tName:        %s\n", port.Name())
	if !math.IsNaN(float64(lo)) {
		fmt.Fprintf(out, "\t\tMinimum:     %g\n", lo)
	}
	if !math.IsNaN(float64(hi)) {
		fmt.Fprintf(out, "\t\tMaximum:     %g\n", hi)
	}
	if !math.IsNaN(float64(def)) {
		fmt.Fprintf(out, "\t\tDefault:     %g\n", def)
	}
	if points := port.ScalePoints(); points != nil {
		fmt.Fprintln(out, "\t\tScale Points:")
		for sp := range points.All() {
			fmt.Fprintf(out, "\t\t\t%s = \"%s\"\n", sp.Value(), sp.Label())
		}
	}
	for prop := range port.Properties().All() {
		fmt.Fprintf(out, "\t\tProperty:    %s\n", prop)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
