/*
animac compiles TOML asset sources into the binary content format and
inspects or serves the compiled files.
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spaghettifunk/anima-content/engine/assets"
	"github.com/spaghettifunk/anima-content/engine/assets/loaders"
	"github.com/spaghettifunk/anima-content/engine/assets/source"
	"github.com/spaghettifunk/anima-content/engine/content"
	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-content/testbed"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(2)
	}

	cfg := core.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = core.LoadConfig(*configPath); err != nil {
			core.LogFatal("%s", err)
		}
	}
	if err := core.SetLogLevel(cfg.LogLevel); err != nil {
		core.LogFatal("%s", err)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "build":
		err = runBuild(args)
	case "dump":
		err = runDump(args, os.Stdout)
	case "sample":
		err = runSample(args, cfg)
	case "watch":
		err = runWatch(args, cfg)
	case "help":
		printUsage()
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		core.LogFatal("%s: %s", command, err)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: animac [-config file.toml] <command> [arguments]

Commands:
  build <source> <out%[1]s>        compile a .toml or .yaml source
  dump <file%[1]s>                 print the contents of a compiled file
  sample [dir]                    write the testbed assets
  watch [dir] [-load a,b]         load assets and log changes on disk
`, core.DefaultExtension)
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return errors.New("expected a source file and an output file")
	}
	src, out := fs.Arg(0), fs.Arg(1)

	clock := core.NewClock()
	clock.Start()
	v, err := source.Parse(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	err = content.Encode(f, loaders.NewDefaultRegistry(), v)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(out)
		return err
	}
	clock.Update()
	core.LogInfo("built %s (%s) in %s", out, metadata.TypeOf(v), clock.Elapsed())
	return nil
}

func runDump(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("expected a compiled file")
	}
	path := fs.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	v, rt, err := content.Decode(f, loaders.NewDefaultRegistry(), filepath.Base(path))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s\n", path, rt)
	describe(w, v)
	return nil
}

func describe(w io.Writer, v interface{}) {
	switch o := v.(type) {
	case metadata.SceneObject:
		metadata.Walk(o, func(obj metadata.SceneObject, depth int) bool {
			n := obj.SceneNode()
			indent := strings.Repeat("  ", depth)
			p := n.Transform.Position
			fmt.Fprintf(w, "%s%s pos=[%.2f %.2f %.2f] visible=%t", indent, n.Name, p.X, p.Y, p.Z, n.Visible)
			if n.Occluder != nil {
				fmt.Fprintf(w, " occluder=%s", n.Occluder.Name)
			}
			if g, ok := obj.(*metadata.LODGroup); ok {
				fmt.Fprintf(w, " levels=%d", len(g.Levels))
			}
			fmt.Fprintln(w)
			return true
		})
	case *metadata.Material:
		c := o.DiffuseColour
		fmt.Fprintf(w, "%s diffuse=[%.2f %.2f %.2f %.2f] shininess=%.2f\n", o.Name, c.X, c.Y, c.Z, c.W, o.Shininess)
		for _, p := range o.Passes() {
			effect := "none"
			if p.Effect != nil {
				effect = p.Effect.Name
			}
			fmt.Fprintf(w, "  pass %s effect=%s parameters=%d\n", p.Name, effect, len(p.Parameters))
		}
	case *metadata.OcclusionMesh:
		b := o.Bounds()
		fmt.Fprintf(w, "%s vertices=%d triangles=%d bounds=[%v %v]\n", o.Name, len(o.Vertices), o.TriangleCount(), b.Min, b.Max)
	case *metadata.Effect:
		fmt.Fprintf(w, "%s\n", o.Name)
		for _, s := range o.Stages {
			fmt.Fprintf(w, "  %s %s words=%d\n", s.Stage, s.EntryPoint, len(s.Code))
		}
	case []byte:
		fmt.Fprintf(w, "%d bytes\n", len(o))
	case nil:
		fmt.Fprintln(w, "<nil>")
	default:
		fmt.Fprintf(w, "%T\n", o)
	}
}

// parseDirArgs parses fs over args, accepting an optional directory either
// before or after the flags. Anything else positional is an error.
func parseDirArgs(fs *flag.FlagSet, args []string, dir string) (string, error) {
	dirSet := false
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		dir, dirSet = args[0], true
		args = args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	rest := fs.Args()
	if len(rest) == 1 && !dirSet {
		return rest[0], nil
	}
	if len(rest) > 0 {
		return "", fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}
	return dir, nil
}

func runSample(args []string, cfg core.Config) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	dir, err := parseDirArgs(fs, args, cfg.Content.RootDir)
	if err != nil {
		return err
	}
	written, err := testbed.WriteSamples(dir, cfg.Content.Extension, loaders.NewDefaultRegistry())
	if err != nil {
		return err
	}
	core.LogInfo("wrote %d sample assets to %s", len(written), dir)
	return nil
}

// parseWatchArgs returns the content configuration to watch and the assets
// to load up front.
func parseWatchArgs(args []string, contentCfg core.ContentConfig) (core.ContentConfig, []string, error) {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	preload := fs.String("load", "", "comma separated asset names to load up front")
	dir, err := parseDirArgs(fs, args, contentCfg.RootDir)
	if err != nil {
		return contentCfg, nil, err
	}
	contentCfg.RootDir = dir
	contentCfg.Watch = true

	var names []string
	for _, name := range strings.Split(*preload, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return contentCfg, names, nil
}

func runWatch(args []string, cfg core.Config) error {
	contentCfg, preload, err := parseWatchArgs(args, cfg.Content)
	if err != nil {
		return err
	}

	cm, err := assets.NewContentManager(contentCfg)
	if err != nil {
		return err
	}
	defer cm.Close()

	for _, name := range preload {
		if err := cm.LoadAsync(name, func(res *metadata.Resource, err error) {
			if err != nil {
				core.LogError("failed to load %s: %s", name, err)
				return
			}
			core.LogInfo("loaded %s (%s, %d bytes)", res.Name, res.Type, res.DataSize)
		}); err != nil {
			return err
		}
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	for {
		select {
		case <-sigCh:
			stats := cm.Stats()
			core.LogInfo("shutting down: %d loads, %d failures, %d evictions", stats.Loads, stats.Failures, stats.Evicted)
			return nil
		case name := <-cm.Events():
			core.LogInfo("%s changed on disk, evicted", name)
			if err := cm.LoadAsync(name, func(res *metadata.Resource, err error) {
				if err != nil {
					core.LogWarn("reload of %s failed: %s", name, err)
					return
				}
				core.LogInfo("reloaded %s", res.Name)
			}); err != nil {
				return err
			}
		case err := <-cm.Errors():
			core.LogWarn("watcher: %s", err)
		}
	}
}
