// Command animbench is a headless benchmark and demo harness for the
// animation core: it spawns a population of creatures across five rig
// categories, drives them with randomized triggers, and reports perf and
// telemetry stats, mirroring the -headless/-perf flags of the teacher's
// own main simulation loop.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/wrenfield/menagerie/activity"
	"github.com/wrenfield/menagerie/core"
	"github.com/wrenfield/menagerie/rig"
	"github.com/wrenfield/menagerie/telemetry"
)

var (
	population  = flag.Int("n", 200, "number of creatures to spawn")
	maxTicks    = flag.Int("max-ticks", 1800, "stop after N ticks (0 = run forever)")
	dt          = flag.Float64("dt", 1.0/60.0, "seconds per tick")
	perfLog     = flag.Bool("perf", false, "log performance stats every window")
	outputDir   = flag.String("output", "", "directory for telemetry/perf/trace CSV output (disabled if empty)")
	configPath  = flag.String("config", "", "path to a YAML config override (embedded defaults if empty)")
	hud         = flag.Bool("hud", false, "show an on-screen raygui debug HUD instead of running headless")
	seed        = flag.Int64("seed", 1, "seed for the trigger-noise RNG")
)

func main() {
	flag.Parse()

	c, err := core.New(*configPath)
	if err != nil {
		slog.Error("animbench: failed to initialize core", "err", err)
		os.Exit(1)
	}

	handles := spawnPopulation(c, *population)
	slog.Info("animbench: population spawned", "requested", *population, "spawned", len(handles))

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("animbench: failed to create output manager", "err", err)
		os.Exit(1)
	}
	defer om.Close()
	if err := om.WriteConfig(c.Config()); err != nil {
		slog.Warn("animbench: failed to write config snapshot", "err", err)
	}

	collector := telemetry.NewCollector(c.Config().Telemetry.StatsWindowSec, float32(*dt))
	perf := telemetry.NewPerfCollector(120)

	c.RegisterEventCallback(func(h core.Handle, ev activity.Event) {
		collector.RecordEvent(ev)
	})
	c.RegisterWarningCallback(func(h core.Handle, err error) {
		slog.Warn("animbench: degenerate IK", "err", err)
	})

	rng := rand.New(rand.NewSource(*seed))

	if *hud {
		runWithHUD(c, handles, rng, collector, perf, om)
		return
	}

	tick := int32(0)
	for *maxTicks == 0 || int(tick) < *maxTicks {
		tick++
		perf.StartTick()

		driveRandomTriggers(c, handles, rng)
		perf.StartPhase(telemetry.PhaseTriggerEval)

		c.UpdateAll(*dt)
		perf.StartPhase(telemetry.PhaseApply)

		perf.EndTick()

		if collector.ShouldFlush(tick) {
			stats := collector.Flush(tick, len(handles))
			stats.LogStats()
			if err := om.WriteTelemetry(stats); err != nil {
				slog.Warn("animbench: failed to write telemetry", "err", err)
			}
			if *perfLog {
				ps := perf.Stats()
				ps.LogStats()
				if err := om.WritePerf(ps, tick); err != nil {
					slog.Warn("animbench: failed to write perf", "err", err)
				}
			}
		}
	}

	slog.Info("animbench: run complete", "ticks", tick)
}

// spawnPopulation creates creatures spanning five rig categories
// (Quadruped, Avian, Serpentine, Cephalopod, Biped), grounded on the rig
// classifier's own category boundaries (rig.Classify). Hexapod, Fish and
// Custom rigs are not spawned.
func spawnPopulation(c *core.Core, n int) []core.Handle {
	templates := []rig.MorphologyGenes{
		{BodyLength: 1.2, BodyHeight: 0.6, SpineSegments: 5, LegPairs: 2, TailLength: 0.4, TailSegments: 6, HeadSize: 0.15, CanWalk: true, UprightPosture: false},
		{BodyLength: 0.4, BodyHeight: 0.2, SpineSegments: 4, LegPairs: 1, HasWings: true, TailLength: 0.1, TailSegments: 3, HeadSize: 0.08, Flying: true},
		{BodyLength: 1.6, BodyHeight: 0.3, SpineSegments: 12, LegPairs: 0, TailLength: 0.2, TailSegments: 2, HeadSize: 0.1, FinCount: 2, Aquatic: true},
		{BodyLength: 2.0, BodyHeight: 0.5, SpineSegments: 6, LegPairs: 0, TentacleCount: 6, TailSegments: 0, HeadSize: 0.3, Aquatic: true},
		{BodyLength: 0.9, BodyHeight: 0.9, SpineSegments: 5, LegPairs: 1, TailLength: 0.3, TailSegments: 4, HeadSize: 0.2, UprightPosture: true, CanWalk: true},
	}

	handles := make([]core.Handle, 0, n)
	for i := 0; i < n; i++ {
		genes := templates[i%len(templates)]
		h, err := c.CreateCreatureAnimation(genes)
		if err != nil {
			slog.Warn("animbench: failed to spawn creature", "index", i, "err", err)
			continue
		}
		handles = append(handles, h)
	}
	return handles
}

// driveRandomTriggers assigns each creature a randomized drive/environment
// snapshot, standing in for the behavior collaborator the animation core
// expects to own trigger input.
func driveRandomTriggers(c *core.Core, handles []core.Handle, rng *rand.Rand) {
	for _, h := range handles {
		tr := activity.Triggers{
			Hunger:       rng.Float64(),
			Thirst:       rng.Float64(),
			Fatigue:      rng.Float64(),
			Stress:       rng.Float64() * 0.3,
			Social:       rng.Float64() * 0.4,
			FoodNearby:   rng.Float64() < 0.3,
			ThreatLevel:  rng.Float64() * 0.2,
			ThreatPresent: rng.Float64() < 0.05,
		}
		if err := c.SetTriggers(h, tr); err != nil {
			slog.Warn("animbench: failed to set triggers", "err", err)
		}
	}
}

// runWithHUD runs the same simulation loop but opens a raylib window and
// renders a raygui debug panel summarizing one creature's state every
// frame, matching the optional graphics mode the teacher's own main loop
// falls back to when headless is not requested.
func runWithHUD(c *core.Core, handles []core.Handle, rng *rand.Rand, collector *telemetry.Collector, perf *telemetry.PerfCollector, om *telemetry.OutputManager) {
	rl.InitWindow(640, 360, "animbench")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	focus := 0

	var tick int32
	for !rl.WindowShouldClose() {
		tick++
		perf.StartTick()
		driveRandomTriggers(c, handles, rng)
		perf.StartPhase(telemetry.PhaseTriggerEval)
		c.UpdateAll(1.0 / 60.0)
		perf.StartPhase(telemetry.PhaseApply)
		perf.EndTick()

		if collector.ShouldFlush(tick) {
			stats := collector.Flush(tick, len(handles))
			if err := om.WriteTelemetry(stats); err != nil {
				slog.Warn("animbench: failed to write telemetry", "err", err)
			}
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		gui.Panel(rl.Rectangle{X: 10, Y: 10, Width: 460, Height: 90}, "creature inspector")
		gui.Label(rl.Rectangle{X: 20, Y: 40, Width: 440, Height: 20}, fmt.Sprintf("tick %d  population %d", tick, len(handles)))
		if len(handles) > 0 {
			gui.Label(rl.Rectangle{X: 20, Y: 65, Width: 440, Height: 20}, fmt.Sprintf("creature[%d]: %s", focus, c.DebugInfo(handles[focus])))
		}
		if gui.Button(rl.Rectangle{X: 480, Y: 40, Width: 140, Height: 30}, "next creature") && len(handles) > 0 {
			focus = (focus + 1) % len(handles)
		}

		rl.EndDrawing()
	}
}
