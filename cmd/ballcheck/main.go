// Command ballcheck verifies ball candidates in a camera image and prints
// the published percept, optionally with the trace of every check.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/spatial/r3"

	"ball-perceptor/internal/ball"
	"ball-perceptor/internal/config"
	"ball-perceptor/internal/frame"
	"ball-perceptor/internal/frame/cvframe"
	"ball-perceptor/internal/version"
)

type options struct {
	configPath     string
	imagePath      string
	candidatesPath string
	trace          bool
	useOpenCV      bool
	asJSON         bool
	predict        string
}

type report struct {
	Percept ball.Percept      `json:"percept"`
	Search  ball.SearchSpec   `json:"search"`
	Trace   []ball.TraceEntry `json:"trace,omitempty"`
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML configuration file (defaults if empty)")
	flag.StringVar(&opts.imagePath, "image", "", "Camera image (PNG, JPEG, TIFF or BMP)")
	flag.StringVar(&opts.candidatesPath, "candidates", "", "JSON file with ball candidates")
	flag.BoolVar(&opts.trace, "trace", false, "Print every check")
	flag.BoolVar(&opts.useOpenCV, "cv", false, "Decode the image with OpenCV")
	flag.BoolVar(&opts.asJSON, "json", false, "Print the result as JSON")
	flag.StringVar(&opts.predict, "predict", "", "Predicted ball position on the field as x,y (mm)")
	verbose := flag.Bool("v", false, "Debug logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("ballcheck"))
		return
	}
	if opts.imagePath == "" || opts.candidatesPath == "" {
		fmt.Println("Usage: ballcheck -image <path> -candidates <file.json> [-config ball.yaml] [-trace] [-cv] [-json] [-predict x,y]")
		os.Exit(1)
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := run(opts); err != nil {
		log.Error().Err(err).Msg("ballcheck failed")
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	}

	cam, err := cfg.Camera.Pinhole()
	if err != nil {
		return err
	}
	tex, err := cfg.LoadTexture()
	if err != nil {
		return err
	}
	cachePath, err := cfg.CachePath()
	if err != nil {
		log.Warn().Err(err).Msg("pattern cache disabled")
		cachePath = ""
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	perceptor, err := ball.Setup(ctx, cfg.Ball, tex, cachePath, log.Logger)
	if err != nil {
		return err
	}

	img, closeImage, err := loadImage(opts.imagePath, cfg, opts.useOpenCV)
	if err != nil {
		return err
	}
	defer closeImage()
	if img.Width() != cfg.Camera.Width || img.Height() != cfg.Camera.Height {
		log.Warn().
			Int("imageWidth", img.Width()).Int("imageHeight", img.Height()).
			Int("cameraWidth", cfg.Camera.Width).Int("cameraHeight", cfg.Camera.Height).
			Msg("image size differs from camera intrinsics")
	}

	candidates, err := readCandidates(opts.candidatesPath, cam, cfg.Ball.BallRadius)
	if err != nil {
		return err
	}
	log.Debug().Int("candidates", len(candidates)).Msg("candidates loaded")

	var prediction *r3.Vec
	if opts.predict != "" {
		var x, y float64
		if _, err := fmt.Sscanf(opts.predict, "%g,%g", &x, &y); err != nil {
			return fmt.Errorf("invalid -predict %q: %w", opts.predict, err)
		}
		prediction = &r3.Vec{X: x, Y: y}
	}

	var trace *ball.Trace
	if opts.trace {
		trace = ball.NewTrace()
	}
	rep := report{
		Search:  perceptor.UpdateSearchSpace(cam, prediction),
		Percept: perceptor.Perceive(img, cam, candidates, trace),
	}
	if trace != nil {
		rep.Trace = trace.Entries
	}

	if opts.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	printReport(rep)
	return nil
}

// loadImage returns the image accessor and a function releasing it.
func loadImage(path string, cfg config.File, useOpenCV bool) (ball.Image, func(), error) {
	if useOpenCV {
		f, err := cvframe.Load(path, cfg.Colors)
		if err != nil {
			return nil, nil, err
		}
		return f, func() {
			if err := f.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to release image")
			}
		}, nil
	}
	if !frame.IsSupportedFormat(path) {
		return nil, nil, fmt.Errorf("unsupported image format: %s (supported: %v)", path, frame.SupportedFormats())
	}
	f, err := frame.Load(path, cfg.Colors)
	if err != nil {
		return nil, nil, err
	}
	return f, func() {}, nil
}

func printReport(rep report) {
	s := rep.Search
	fmt.Printf("Search: valid=%v camera height=%.0f mm, max distance=%.0f mm, min radius=%.1f px\n",
		s.Valid, s.CameraHeight, s.MaxDistance, s.MinRadius)
	if s.Start != nil {
		fmt.Printf("  start: (%.0f, %.0f, %.0f) mm\n", s.Start.X, s.Start.Y, s.Start.Z)
	}

	if len(rep.Trace) > 0 {
		fmt.Printf("\nChecks:\n")
		for _, e := range rep.Trace {
			fmt.Printf("  %s\n", e)
		}
	}

	p := rep.Percept
	fmt.Printf("\nBall: %s\n", p.Status)
	if p.Status == ball.StatusNotSeen {
		return
	}
	fmt.Printf("  response:  %.3f\n", p.Candidate.Response)
	fmt.Printf("  image:     (%.1f, %.1f) radius %.1f px\n", p.PositionInImage.X, p.PositionInImage.Y, p.RadiusInImage)
	fmt.Printf("  field:     (%.0f, %.0f, %.0f) mm\n", p.PositionOnField.X, p.PositionOnField.Y, p.PositionOnField.Z)
	fmt.Printf("  distance:  %.0f mm\n", p.Distance)
}
