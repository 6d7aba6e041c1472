// Command g3ddemo renders a small scene through the g3d pipeline and
// prints the frame statistics.
//
// Without a GPU device provider the native backend is unavailable and the
// demo runs on the headless backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/backend"
	_ "github.com/gogpu/g3d/backend/native"
	"github.com/gogpu/g3d/config"
	"github.com/gogpu/g3d/profiling"
	"github.com/gogpu/g3d/render"
)

func main() {
	var (
		configPath = flag.String("config", "", "settings file (.yaml, .yml or .toml)")
		backendArg = flag.String("backend", "", "backend name (overrides the settings file)")
		frames     = flag.Int("frames", -1, "number of frames (overrides the settings file)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	s := config.Default()
	if *configPath != "" {
		var err error
		if s, err = config.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	if *backendArg != "" {
		s.Backend = *backendArg
	}
	if *frames >= 0 {
		s.Demo.Frames = *frames
	}
	if *verbose {
		s.LogLevel = "debug"
	}
	if err := s.Validate(); err != nil {
		log.Fatal(err)
	}

	level, _ := s.Level()
	g3d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, s, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run renders s.Demo.Frames frames and writes a report to out.
func run(ctx context.Context, s config.Settings, out io.Writer) error {
	b, err := openBackend(s.Backend)
	if err != nil {
		return err
	}
	defer b.Close()
	g3d.Logger().Info("g3ddemo: backend ready", "backend", b.Name(), "version", g3d.Version)

	var opts []render.Option
	if s.Profiling {
		profiling.Create()
		defer profiling.Destroy()
		opts = append(opts, render.WithCounters(profiling.Default()))
	}
	svc, err := render.New(b, opts...)
	if err != nil {
		return err
	}
	defer svc.Close()

	d, err := newDemo(svc, s)
	if err != nil {
		return err
	}
	defer d.close()

	for i := range s.Demo.Frames {
		if err := d.frame(ctx, i); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}

	st := svc.Stats()
	fmt.Fprintf(out, "backend %s: %d frames, %d meshes staged, %d skipped, %d binds, %d draws, %d dispatch errors\n",
		b.Name(), st.Frames, st.Staged, st.Skipped, st.Binds, st.Draws, st.DispatchErrors)
	if c := profiling.Default(); c != nil {
		for _, name := range c.Names() {
			v, _ := c.Query(name)
			fmt.Fprintf(out, "  %-24s %d\n", name, v)
		}
	}
	return nil
}

func openBackend(name string) (backend.Backend, error) {
	if name == "" {
		return backend.InitDefault()
	}
	b := backend.Get(name)
	if b == nil {
		return nil, fmt.Errorf("g3ddemo: unknown backend %q (available: %v)", name, backend.Available())
	}
	if err := b.Init(); err != nil {
		return nil, fmt.Errorf("g3ddemo: init %s: %w", name, err)
	}
	return b, nil
}
