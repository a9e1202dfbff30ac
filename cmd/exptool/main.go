// exptool is a CLI utility for checking AR experience files without opening
// a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/chewxy/math32"

	"github.com/Faultbox/arscene/internal/assets"
	"github.com/Faultbox/arscene/internal/config"
	"github.com/Faultbox/arscene/internal/engine/layout"
	"github.com/Faultbox/arscene/internal/engine/loader"
	"github.com/Faultbox/arscene/pkg/experience"
	"github.com/Faultbox/arscene/pkg/math"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "validate", "check":
		return cmdValidate(args, stdout, stderr)
	case "layout":
		return cmdLayout(args, stdout, stderr)
	case "probe":
		return cmdProbe(args, stdout, stderr)
	case "config":
		return cmdConfig(args, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `exptool - AR experience file utility

Usage:
  exptool <command> [options] <file>

Commands:
  validate [-strict] <file>           Decode and report authoring issues
  layout [-radius R] [-spacing S] <file>
                                      Print where each asset is placed
  probe [-timeout D] <file>           Load every asset and report the result
  config [-o path]                    Write the default arviewer config

Files may be JSON, YAML or TOML.

Examples:
  exptool validate showroom.yaml
  exptool layout -radius 4 showroom.yaml
  exptool probe -timeout 10s showroom.json`)
}

func cmdConfig(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "", "Output path (default: the user config directory)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg := config.Default()
	path := *out
	save := func() error { return cfg.SaveTo(path) }
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.yaml")
		save = cfg.Save
	}
	if err := save(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return 0
}

func load(path string, stderr io.Writer) (*experience.Experience, bool) {
	exp, err := experience.Load(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, false
	}
	return exp, true
}

func cmdValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	strict := fs.Bool("strict", false, "Exit with status 2 when issues are found")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Usage: exptool validate [-strict] <file>")
		return 1
	}

	exp, ok := load(fs.Arg(0), stderr)
	if !ok {
		return 1
	}

	fmt.Fprintf(stdout, "Experience: %s\n", exp.Title)
	fmt.Fprintf(stdout, "Assets:     %d\n", len(exp.Assets))

	counts := make(map[experience.AssetType]int)
	for _, a := range exp.Assets {
		counts[a.Type]++
	}
	for _, t := range experience.AllAssetTypes() {
		if counts[t] > 0 {
			fmt.Fprintf(stdout, "  %-12s %d\n", t, counts[t])
		}
	}

	issues := exp.Validate()
	if len(issues) == 0 {
		fmt.Fprintln(stdout, "No issues found")
		return 0
	}
	fmt.Fprintf(stdout, "\n%d issue(s):\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(stdout, "  %s\n", issue)
	}
	if *strict {
		return 2
	}
	return 0
}

func cmdLayout(args []string, stdout, stderr io.Writer) int {
	def := layout.DefaultParams()
	fs := flag.NewFlagSet("layout", flag.ContinueOnError)
	fs.SetOutput(stderr)
	radius := fs.Float64("radius", float64(def.BaseRadius), "Base circle radius")
	spacing := fs.Float64("spacing", float64(def.Spacing), "Radius growth per asset")
	height := fs.Float64("height", float64(def.ObjectHeight), "Height of every asset")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Usage: exptool layout [-radius R] [-spacing S] [-height H] <file>")
		return 1
	}

	exp, ok := load(fs.Arg(0), stderr)
	if !ok {
		return 1
	}

	p := layout.Params{
		ObjectHeight: float32(*height),
		BaseRadius:   float32(*radius),
		Spacing:      float32(*spacing),
	}
	total := len(exp.Assets)
	fmt.Fprintf(stdout, "Radius: %.2f for %d asset(s)\n\n", p.Radius(total), total)
	fmt.Fprintf(stdout, "%4s  %-12s %-24s %8s %8s %8s %7s\n", "#", "TYPE", "NAME", "X", "Y", "Z", "ANGLE")
	for i, pos := range layout.Positions(total, p) {
		a := exp.Assets[i]
		fmt.Fprintf(stdout, "%4d  %-12s %-24s %8.3f %8.3f %8.3f %6.1f°\n",
			i, a.Type, truncate(a.DisplayName(), 24), pos.X, pos.Y, pos.Z, heading(pos))
	}
	return 0
}

// heading is the angle of pos around the vertical axis in degrees, [0, 360),
// measured clockwise from +Z seen from above.
func heading(pos math.Vec3) float32 {
	if pos.X == 0 && pos.Z == 0 {
		return 0
	}
	return math.Degrees(math.WrapAngle(math32.Atan2(-pos.X, pos.Z)))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func cmdProbe(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	timeout := fs.Duration("timeout", 30*time.Second, "Per-asset load timeout")
	maxTex := fs.Int("max-texture", 2048, "Largest texture edge")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Usage: exptool probe [-timeout D] <file>")
		return 1
	}

	exp, ok := load(fs.Arg(0), stderr)
	if !ok {
		return 1
	}

	fetcher := assets.NewFetcher(assets.Options{Timeout: *timeout}, nil)
	l, err := loader.New(fetcher, loader.Options{MaxTextureSize: *maxTex}, nil)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	failed := 0
	for i, a := range exp.Assets {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		start := time.Now()
		content, err := l.Load(ctx, exp.BaseDir, a)
		elapsed := time.Since(start)
		cancel()

		name := truncate(a.DisplayName(), 24)
		if err != nil {
			failed++
			fmt.Fprintf(stdout, "%4d  %-12s %-24s FAILED  %v\n", i, a.Type, name, err)
			continue
		}
		fmt.Fprintf(stdout, "%4d  %-12s %-24s ok      %d part(s), %d triangles, %v\n",
			i, a.Type, name, len(content.Parts), content.TriangleCount(), elapsed.Round(time.Millisecond))
	}

	fmt.Fprintf(stdout, "\n%d/%d asset(s) loaded\n", len(exp.Assets)-failed, len(exp.Assets))
	if failed > 0 {
		return 2
	}
	return 0
}
