// Command pegasusdemo runs a bouncing-ball simulation through a pegasus
// pipeline and saves the last presented frame.
package main

import (
	"errors"
	"flag"
	"image/png"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/pegasus"
	"github.com/gogpu/pegasus/backend/native"
	"github.com/gogpu/pegasus/backend/software"
)

func main() {
	var (
		width   = flag.Int("width", 640, "image width")
		height  = flag.Int("height", 480, "image height")
		frames  = flag.Int("frames", 120, "number of frames to simulate")
		workers = flag.Int("workers", 1, "scheduler workers")
		backend = flag.String("backend", "software", "device backend: software or native")
		output  = flag.String("output", "pegasus.png", "output file (software backend)")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		pegasus.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	setup := newInit(*width, *height, *frames)
	opts := []pegasus.Option{
		pegasus.WithWorkers(*workers),
		pegasus.WithDrawReads("ball"),
	}

	switch *backend {
	case "software":
		runSoftware(*width, *height, setup, opts, *output)
	case "native":
		runNative(setup, opts)
	default:
		log.Fatalf("unknown backend %q", *backend)
	}
}

func runSoftware(width, height int, setup pegasus.Init[*world], opts []pegasus.Option, output string) {
	dev, err := software.New(width, height)
	if err != nil {
		log.Fatalf("Failed to create device: %v", err)
	}
	p, err := pegasus.New(dev, setup, paintBall, opts...)
	if err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}

	start := time.Now()
	n := present(p)
	if err := p.Close(); err != nil {
		log.Printf("Close: %v", err)
	}

	f, err := os.Create(output)
	if err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, dev.Frame()); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Presented %d frames in %v, saved %s (%dx%d)\n", n, time.Since(start), output, width, height)
}

func runNative(setup pegasus.Init[*world], opts []pegasus.Option) {
	dev, err := native.Open()
	if err != nil {
		log.Fatalf("Failed to open GPU: %v", err)
	}
	defer func() {
		if err := dev.Close(); err != nil {
			log.Printf("Device close: %v", err)
		}
	}()

	// Nothing is drawn; the encoders are submitted empty to exercise the
	// handoff against a real queue.
	p, err := pegasus.New(dev, setup, func(*world, *native.Encoder) {}, opts...)
	if err != nil {
		log.Printf("Failed to start pipeline: %v", err)
		return
	}

	start := time.Now()
	n := present(p)
	if err := p.Close(); err != nil {
		log.Printf("Close: %v", err)
	}
	log.Printf("Submitted %d frames in %v\n", n, time.Since(start))
}

// present swings until the simulation stops and returns the frame count.
func present[E any, D pegasus.Device[E]](p *pegasus.Pegasus[E, D]) int {
	n := 0
	for {
		sw, err := p.Swing()
		if err != nil {
			if !errors.Is(err, pegasus.ErrStopped) {
				log.Printf("Swing: %v", err)
			}
			return n
		}
		n++
		sw.Release()
	}
}
