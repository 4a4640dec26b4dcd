// smftool is a CLI utility for working with Spring map (SMF) terrain files.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/mapforge/smfedit/internal/config"
	"github.com/mapforge/smfedit/internal/editor"
	"github.com/mapforge/smfedit/internal/logger"
	"github.com/mapforge/smfedit/internal/rastercache"
	"github.com/mapforge/smfedit/pkg/brush"
	"github.com/mapforge/smfedit/pkg/heightfield"
	"github.com/mapforge/smfedit/pkg/smf"
)

func main() {
	config.ParseFlags()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "info":
		cmdInfo(args)
	case "new":
		cmdNew(args)
	case "apply":
		cmdApply(args, cfg)
	case "rescale":
		cmdRescale(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`smftool - Spring map (SMF) terrain utility

Usage:
  smftool [global options] <command> [options]

Global options (before the command):
  -config <path>   Config file path
  -debug           Debug logging
  -ceiling N       Display segment ceiling per side
  -radius R        Default brush radius (world units)
  -strength S      Default brush strength

Commands:
  info <file.smf>                             Show header and section report
  new -width N -length N [-height H] <out>    Create a flat map with stub sections
  apply [options] <file.smf> <out.smf>        Apply one brush stroke and save
  rescale <file.smf> <min> <max> <out>        Rewrite quantization bounds

Examples:
  smftool info maps/smallmap.smf
  smftool new -width 64 -length 64 -height 100 flat.smf
  smftool apply -brush raise -x 0 -z 0 -radius 96 -strength 15 flat.smf hill.smf
  smftool -radius 96 apply -brush raise flat.smf hill.smf
  smftool rescale hill.smf -50 350 hill_rescaled.smf`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: smftool info <file.smf>")
		os.Exit(1)
	}

	m, err := smf.ParseFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	h := &m.Header
	worldW, worldL := h.WorldSize()
	fmt.Printf("Map:      %s\n", args[0])
	fmt.Printf("Version:  %d (id %08x)\n", h.Version, h.ID)
	fmt.Printf("Size:     %dx%d squares (%gx%g world units)\n", h.Width, h.Length, worldW, worldL)
	fmt.Printf("Heights:  %d samples, range [%g, %g]\n", h.HeightmapLen(), h.MinHeight, h.MaxHeight)
	fmt.Println()
	fmt.Println("Sections:")
	printSection("heightmap", m.RawHeights != nil)
	printSection("type map", m.TypeMap != nil)
	printSection("tile index", m.TileIndex != nil)
	printSection("minimap", m.MiniMap != nil)
	printSection("metal map", m.MetalMap != nil)
	printSection("grass map", m.GrassMap != nil)
	if m.Features != nil {
		fmt.Printf("  %-11s present (%d features, %d types)\n", "features", len(m.Features.Features), len(m.Features.TypeNames))
	} else {
		printSection("features", false)
	}

	if len(m.Warnings) > 0 {
		fmt.Println()
		fmt.Println("Warnings:")
		for _, w := range m.Warnings {
			fmt.Printf("  %s\n", w)
		}
	}
}

func printSection(name string, present bool) {
	state := "absent"
	if present {
		state = "present"
	}
	fmt.Printf("  %-11s %s\n", name, state)
}

func cmdNew(args []string) {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	width := fs.Int("width", 64, "Map width in squares")
	length := fs.Int("length", 64, "Map length in squares")
	height := fs.Float64("height", 0, "Uniform terrain height (world units)")
	minH := fs.Float64("min", 0, "Quantization lower bound")
	maxH := fs.Float64("max", 256, "Quantization upper bound")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: smftool new [options] <out.smf>")
		os.Exit(1)
	}

	verts := (*width + 1) * (*length + 1)
	heights := make([]float32, verts)
	for i := range heights {
		heights[i] = float32(*height)
	}

	data, err := smf.EncodeWithStubs(smf.BuildSpec{
		Width:     int32(*width),
		Length:    int32(*length),
		MinHeight: float32(*minH),
		MaxHeight: float32(*maxH),
		Heights:   heights,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	writeOut(fs.Arg(0), data)
}

func cmdApply(args []string, cfg *config.Config) {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	id := fs.String("brush", "raise", "Brush id")
	x := fs.Float64("x", 0, "Stroke center x (world units)")
	z := fs.Float64("z", 0, "Stroke center z (world units)")
	radius := fs.Float64("radius", float64(cfg.Brush.DefaultRadius), "Brush radius (world units)")
	strength := fs.Float64("strength", float64(cfg.Brush.DefaultStrength), "Brush strength")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: smftool apply [options] <file.smf> <out.smf>")
		os.Exit(1)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	registry := brush.NewDefaultRegistry(logger.Log)
	registry.Register(brush.NewStampBrush(rastercache.New(logger.Log, nil)))
	session, err := editor.NewSession(data, registry, logger.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	session.SetSegmentCeiling(cfg.Editor.SegmentCeiling)

	resolved := editor.ResolveAlias(*id)
	if !registry.Exists(resolved) {
		fmt.Fprintf(os.Stderr, "Unknown brush: %s\n", *id)
		fmt.Fprintln(os.Stderr, "Available brushes:")
		for _, b := range registry.List() {
			fmt.Fprintf(os.Stderr, "  %-14s %s\n", b.ID, b.Label)
		}
		os.Exit(1)
	}

	if !session.ApplyStroke(editor.Stroke{
		Brush:    resolved,
		X:        float32(*x),
		Z:        float32(*z),
		Radius:   float32(*radius),
		Strength: float32(*strength),
	}) {
		fmt.Fprintln(os.Stderr, "Stroke had no effect")
	}

	out, err := session.Save()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	writeOut(fs.Arg(1), out)
}

func cmdRescale(args []string) {
	if len(args) < 4 {
		fmt.Fprintln(os.Stderr, "Usage: smftool rescale <file.smf> <min> <max> <out.smf>")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m, err := smf.Parse(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	minH := parseFloat(args[1], "min")
	maxH := parseFloat(args[2], "max")
	if maxH <= minH {
		fmt.Fprintln(os.Stderr, "Error: max must be greater than min")
		os.Exit(1)
	}

	grid := heightfield.FromMap(m)
	out, err := smf.PatchHeightsAndHeader(data, grid.Heights, smf.HeaderPatch{
		MinHeight: &minH,
		MaxHeight: &maxH,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	writeOut(args[3], out)
}

func parseFloat(s, name string) float32 {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid %s: %s\n", name, s)
		os.Exit(1)
	}
	return float32(v)
}

func writeOut(path string, data []byte) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", path, len(data))
}
