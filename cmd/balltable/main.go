// Command balltable builds the ball pattern table and writes it to the cache
// used by ballcheck and the perceptor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ball-perceptor/internal/config"
	"ball-perceptor/internal/pattern"
	"ball-perceptor/internal/version"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file (defaults if empty)")
	out := flag.String("out", "", "Cache file to write (overrides pattern_cache)")
	force := flag.Bool("force", false, "Rebuild even if the cache is current")
	check := flag.Bool("check", false, "Only check whether the cache is current; exit 1 if not")
	writeConfig := flag.String("write-config", "", "Write the effective configuration to this file and exit")
	verbose := flag.Bool("v", false, "Debug logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("balltable"))
		return
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if *writeConfig != "" {
		if err := dumpConfig(*configPath, *writeConfig); err != nil {
			log.Error().Err(err).Msg("balltable failed")
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath, *out, *force, *check); err != nil {
		log.Error().Err(err).Msg("balltable failed")
		os.Exit(1)
	}
}

func loadConfig(path string) (config.File, error) {
	if path == "" {
		return config.Default(), nil
	}
	loaded, err := config.Load(path)
	if err != nil {
		return config.File{}, err
	}
	return *loaded, nil
}

// dumpConfig writes the defaults merged with the given file, as a starting
// point for a robot-specific configuration.
func dumpConfig(configPath, path string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("configuration written")
	return nil
}

func run(configPath, out string, force, check bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if out != "" {
		cfg.PatternCache = out
	}

	path, err := cfg.CachePath()
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New("pattern cache is disabled; pass -out")
	}

	tex, err := cfg.LoadTexture()
	if err != nil {
		return err
	}
	spec := cfg.Ball.Pattern
	key := spec.Key(tex)

	if !force {
		table, err := pattern.Load(path, key)
		switch {
		case err == nil:
			log.Info().Str("path", path).Int("patterns", table.Len()).Msg("pattern cache is current")
			return nil
		case check:
			return fmt.Errorf("pattern cache %s is not current: %w", path, err)
		default:
			log.Info().Err(err).Str("path", path).Msg("pattern cache needs rebuilding")
		}
	} else if check {
		return errors.New("-check and -force are mutually exclusive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	table, err := pattern.Build(ctx, tex, spec, log.Logger)
	if err != nil {
		return err
	}
	if err := table.Save(path); err != nil {
		return err
	}
	log.Info().
		Str("path", path).
		Int("patterns", table.Len()).
		Int("samplePoints", len(table.Points())).
		Dur("elapsed", time.Since(start)).
		Msg("pattern table written")
	return nil
}
