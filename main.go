package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"pomcp/config"
	"pomcp/experiments"
	"pomcp/experiments/metrics"

	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("experiment failed")
		os.Exit(1)
	}
}

func run() error {
	path := flag.String("config", "", "YAML config file")
	simulations := flag.Int("simulations", 0, "Number of simulations per decision")
	depth := flag.Int("depth", -1, "Maximum search depth")
	exploration := flag.Float64("exploration", -1, "UCB exploration constant")
	goroutines := flag.Int("goroutines", 0, "Number of goroutines for parallel simulations")
	episodes := flag.Int("episodes", 0, "Number of episodes per agent config")
	maxSteps := flag.Int("max-steps", 0, "Step limit of an episode")
	seed := flag.Uint64("seed", 0, "Random seed, 0 for a random one")
	output := flag.String("output", "", "Directory for experiment records")
	sweep := flag.String("sweep", "", "Sweep \"simulations\" or \"goroutines\" instead of running a single config")
	level := flag.String("log-level", "", "Log level")
	metricsAddr := flag.String("metrics-addr", "", "Address serving Prometheus metrics")
	flag.Parse()

	cfg := config.Default()
	if *path != "" {
		loaded, err := config.Load(*path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Flags take precedence over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "simulations":
			cfg.Simulations = *simulations
		case "depth":
			cfg.Depth = *depth
		case "exploration":
			cfg.Exploration = *exploration
		case "goroutines":
			cfg.Goroutines = *goroutines
		case "episodes":
			cfg.Episodes = *episodes
		case "max-steps":
			cfg.MaxSteps = *maxSteps
		case "seed":
			cfg.Seed = *seed
		case "output":
			cfg.OutputDir = *output
		case "log-level":
			cfg.LogLevel = *level
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	lvl, _ := cfg.Level()
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var reg prometheus.Registerer
	if cfg.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		reg = registry
		serveMetrics(ctx, cfg.MetricsAddr, registry)
	}

	configs := []metrics.AgentConfig{{
		ID:          1,
		Goroutines:  cfg.Goroutines,
		Simulations: cfg.Simulations,
		Depth:       cfg.Depth,
		Exploration: cfg.Exploration,
	}}
	switch *sweep {
	case "":
	case "simulations":
		configs = experiments.SimulationConfigs(cfg.Goroutines, cfg.Depth, cfg.Exploration)
	case "goroutines":
		configs = experiments.ParallelConfigs(cfg.Simulations, cfg.Depth, cfg.Exploration)
	default:
		return fmt.Errorf("unknown sweep %q", *sweep)
	}

	result, err := experiments.Run(ctx, experiments.Settings{
		Name:       "tiger",
		OutputDir:  cfg.OutputDir,
		Configs:    configs,
		Episodes:   cfg.Episodes,
		MaxSteps:   cfg.MaxSteps,
		Seed:       cfg.Seed,
		Registerer: reg,
	})
	if err != nil {
		return err
	}

	printSummary(result)
	return nil
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Msgf("serving metrics on %s/metrics", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(shutdown)
	}()
}

func printSummary(result experiments.Result) {
	out := termenv.NewOutput(os.Stdout)
	header := out.String("agent  simulations  depth  exploration  goroutines  mean return  std dev  steps     sims/s").Bold()
	fmt.Println(header)

	throughputs := experiments.Throughputs(result)
	for i, s := range result.Summaries {
		mean := out.String(fmt.Sprintf("%11.2f", s.Mean))
		if s.Mean >= 0 {
			mean = mean.Foreground(out.Color("2"))
		} else {
			mean = mean.Foreground(out.Color("1"))
		}
		fmt.Printf("%5d  %11d  %5d  %11g  %10d  %s  %7.2f  %5.1f  %9.0f\n",
			s.Agent.ID, s.Agent.Simulations, s.Agent.Depth, s.Agent.Exploration, s.Agent.Goroutines, mean, s.StdDev, s.Steps,
			throughputs[i].SimulationsPerSecond)
	}

	fmt.Println(out.String(fmt.Sprintf("seed %d", result.Seed)).Faint())
	if result.Dir != "" {
		fmt.Println(out.String("records written to " + result.Dir).Faint())
	}
}
