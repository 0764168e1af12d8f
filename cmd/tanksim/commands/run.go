package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/comalice/behaviortreex/internal/config"
	"github.com/comalice/behaviortreex/internal/printer"
	"github.com/comalice/behaviortreex/internal/production"
	"github.com/comalice/behaviortreex/internal/sim"
	"github.com/comalice/behaviortreex/tank"
)

var (
	runConfigPath  string
	runSteps       int
	runDT          time.Duration
	runSeed        uint64
	runProfiles    string
	runDriver      string
	runRedisAddr   string
	runSnapshotDir string
	runEvents      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a headless match",
	Long: `Run a match between the configured agents and print a summary.

The match ends after --steps steps or once a single tank is left. Agents are
ticked in name order, then the arena is stepped.

Drivers:
  native   - step as fast as possible on the calling goroutine
  realtime - tick at wall-clock rate (one step every --dt)
  gobt     - tick through a go-behaviortree Ticker

Examples:
  # Default duel: tracker vs defensive
  tanksim run

  # Override profiles in agent-name order and mirror blackboards to Redis
  tanksim run --config arena.yml --profile frantic,erratic --redis-addr localhost:6379`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "Path to the match configuration (default: built-in duel)")
	runCmd.Flags().IntVar(&runSteps, "steps", 0, "Maximum number of steps (overrides config)")
	runCmd.Flags().DurationVar(&runDT, "dt", 0, "Step duration (overrides config)")
	runCmd.Flags().Uint64Var(&runSeed, "seed", 0, "Random seed (overrides config)")
	runCmd.Flags().StringVar(&runProfiles, "profile", "", "Comma-separated profiles assigned to agents in name order")
	runCmd.Flags().StringVar(&runDriver, "driver", string(sim.DriverNative), "Tick driver: native, realtime or gobt")
	runCmd.Flags().StringVar(&runRedisAddr, "redis-addr", "", "Mirror agent blackboards to this Redis server (overrides config)")
	runCmd.Flags().StringVar(&runSnapshotDir, "snapshot-dir", "", "Write a YAML snapshot of every tree when the match ends")
	runCmd.Flags().BoolVar(&runEvents, "events", false, "Print shots, hits and kills")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	p := printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(cmd.ErrOrStderr())

	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return p.Error("invalid configuration", err.Error(), []string{
			"Check the file against the documented format",
			"Run without --config to use the built-in duel",
		})
	}
	driver, err := sim.ParseDriver(runDriver)
	if err != nil {
		return p.Error("invalid driver", err.Error(), []string{"Valid drivers: native, realtime, gobt"})
	}
	opts := sim.Options{Logger: logger}
	if runProfiles != "" {
		selector, err := profileSelector(runProfiles, cfg.AgentNames())
		if err != nil {
			return p.Error("invalid --profile", err.Error(), []string{"List the catalog:\n  tanksim profiles"})
		}
		opts.Selector = selector
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	redisAddr := runRedisAddr
	if redisAddr == "" && cfg.Observability != nil {
		redisAddr = cfg.Observability.RedisAddr
	}
	var mirror *production.RedisMirror
	if redisAddr != "" {
		mirror = production.NewRedisMirror(&redis.Options{Addr: redisAddr})
		defer mirror.Close()
		if err := mirror.Ping(ctx); err != nil {
			return p.Error("redis unreachable", err.Error(), []string{"Start Redis or drop --redis-addr"})
		}
		opts.OnStep = func(step uint64) {
			if err := mirror.Flush(ctx); err != nil {
				logger.Warn("blackboard mirror flush failed", "step", step, "error", err)
			}
		}
	}
	var saveErr error
	if runSnapshotDir != "" {
		persister, err := production.NewYAMLPersister(runSnapshotDir)
		if err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		opts.OnFinish = func(m *sim.Match) {
			for _, r := range m.Roots() {
				saveErr = errors.Join(saveErr, persister.Save(ctx, production.Capture(r)))
			}
		}
	}

	if mirror != nil {
		// Survivors keep their last mirrored state; only trees stopped
		// during the match are cleared from Redis.
		saveSnapshots := opts.OnFinish
		opts.OnFinish = func(m *sim.Match) {
			if saveSnapshots != nil {
				saveSnapshots(m)
			}
			mirror.Detach()
		}
	}

	m, err := sim.NewMatch(cfg, opts)
	if err != nil {
		return fmt.Errorf("failed to build match: %w", err)
	}
	if mirror != nil {
		for _, r := range m.Roots() {
			mirror.Attach(r.ID(), r.Blackboard())
		}
	}

	p.Step("running %d agents for up to %d steps of %s (%s driver)\n",
		len(m.Agents()), cfg.Simulation.Steps, cfg.Simulation.DT.Duration, driver)
	res, err := sim.Run(ctx, m, driver, cfg.Simulation.Steps, cfg.Simulation.DT.Duration)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("match failed: %w", err)
	}
	if mirror != nil {
		if err := mirror.Flush(context.Background()); err != nil {
			p.Warning("final blackboard flush failed: %v\n", err)
		}
	}

	if runEvents {
		printEvents(cmd, m.World().Events())
	}
	printResult(cmd, p, res)
	if errors.Is(err, context.Canceled) {
		p.Warning("interrupted after %d steps\n", res.Steps)
	}
	if saveErr != nil {
		return fmt.Errorf("failed to save snapshots: %w", saveErr)
	}
	return nil
}

func loadRunConfig(cmd *cobra.Command) (*config.SimConfig, error) {
	cfg := config.Default()
	if runConfigPath != "" {
		var err error
		if cfg, err = config.Load(runConfigPath); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Simulation.Steps = runSteps
	}
	if flags.Changed("dt") {
		cfg.Simulation.DT = config.Duration{Duration: runDT}
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = runSeed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// profileSelector assigns a comma-separated profile list to agents in name
// order. Agents past the end of the list keep the default tree.
func profileSelector(list string, agents []string) (tank.StaticSelector, error) {
	names := strings.Split(list, ",")
	if len(names) > len(agents) {
		return tank.StaticSelector{}, fmt.Errorf("%d profiles given for %d agents", len(names), len(agents))
	}
	s := tank.StaticSelector{Agents: make(map[string]tank.Profile, len(names)), Fallback: tank.Default}
	for i, name := range names {
		profile, err := tank.ParseProfile(strings.TrimSpace(name))
		if err != nil {
			return tank.StaticSelector{}, err
		}
		s.Agents[agents[i]] = profile
	}
	return s, nil
}

func printEvents(cmd *cobra.Command, events []sim.Event) {
	out := cmd.OutOrStdout()
	for _, e := range events {
		switch e.Kind {
		case sim.EventShot:
			fmt.Fprintf(out, "%10s  %-5s %s power=%.2f\n", e.At, e.Kind, e.Tank, e.Power)
		default:
			fmt.Fprintf(out, "%10s  %-5s %s -> %s\n", e.At, e.Kind, e.Tank, e.Target)
		}
	}
}

func printResult(cmd *cobra.Command, p *printer.Printer, res sim.Result) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AGENT\tPROFILE\tHEALTH\tSHOTS\tHITS\tTICKS\tSTATUS")
	for _, a := range res.Agents {
		health := fmt.Sprintf("%.0f", a.Health)
		if !a.Alive {
			health = "destroyed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n", a.Name, a.Profile, health, a.Shots, a.Hits, a.Ticks, p.Status(a.Status))
	}
	w.Flush()

	if res.Winner != "" {
		p.Success("%s wins after %s (%d steps)\n", res.Winner, res.Elapsed, res.Steps)
	} else {
		p.Info("no winner after %s (%d steps)\n", res.Elapsed, res.Steps)
	}
}
