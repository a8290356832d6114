// Package core is the top-level orchestrator for the animation system: it
// owns the ark ECS world, spawns and despawns per-creature animation
// state, and exposes the external API the behavior/rendering collaborators
// call every tick (spec.md §6).
package core

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/wrenfield/menagerie/activity"
	"github.com/wrenfield/menagerie/anim"
	"github.com/wrenfield/menagerie/components"
	"github.com/wrenfield/menagerie/config"
	"github.com/wrenfield/menagerie/pose"
	"github.com/wrenfield/menagerie/rig"
	"github.com/wrenfield/menagerie/systems"
)

// Handle identifies one creature's animation state to external callers. It
// is opaque; callers must not construct one directly.
type Handle struct {
	entity ecs.Entity
	valid  bool
}

// Core owns the ECS world and the per-creature component maps backing the
// spec.md §6 external API.
type Core struct {
	world    *ecs.World
	pipeline *systems.Pipeline
	cfg      *config.Config

	mapper *ecs.Map7[
		components.Skeleton,
		components.Triggers,
		components.ActivityState,
		components.Driver,
		components.Secondary,
		components.Pose,
		components.MotionState,
	]
	skeletonMap *ecs.Map1[components.Skeleton]
	triggersMap *ecs.Map1[components.Triggers]
	actStateMap *ecs.Map1[components.ActivityState]
	driverMap   *ecs.Map1[components.Driver]
	secondaryMap *ecs.Map1[components.Secondary]
	poseMap     *ecs.Map1[components.Pose]
	motionMap   *ecs.Map1[components.MotionState]

	nextCreatureID int64

	eventCB   func(Handle, activity.Event)
	warningCB func(Handle, error)
}

// New creates a Core with configuration loaded from configPath (embedded
// defaults if empty).
func New(configPath string) (*Core, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("core: loading config: %w", err)
	}

	world := ecs.NewWorld()
	c := &Core{
		world: world,
		cfg:   cfg,
		mapper: ecs.NewMap7[
			components.Skeleton,
			components.Triggers,
			components.ActivityState,
			components.Driver,
			components.Secondary,
			components.Pose,
			components.MotionState,
		](world),
		skeletonMap:  ecs.NewMap1[components.Skeleton](world),
		triggersMap:  ecs.NewMap1[components.Triggers](world),
		actStateMap:  ecs.NewMap1[components.ActivityState](world),
		driverMap:    ecs.NewMap1[components.Driver](world),
		secondaryMap: ecs.NewMap1[components.Secondary](world),
		poseMap:      ecs.NewMap1[components.Pose](world),
		motionMap:    ecs.NewMap1[components.MotionState](world),
	}
	c.pipeline = systems.NewPipeline(world, cfg)
	c.pipeline.OnWarning(func(e ecs.Entity, err error) {
		if c.warningCB != nil {
			c.warningCB(Handle{entity: e, valid: true}, err)
		}
	})
	c.pipeline.OnEvent(func(e ecs.Entity, ev activity.Event) {
		if c.eventCB != nil {
			c.eventCB(Handle{entity: e, valid: true}, ev)
		}
	})
	return c, nil
}

// Config returns the core's configuration, for callers that need to read
// tuning values directly (e.g. telemetry).
func (c *Core) Config() *config.Config {
	return c.cfg
}

// CreateCreatureAnimation builds a rig from genes and spawns the
// animation-core entity for it (spec.md §6 createCreatureAnimation,
// composing C1+C2). Returns ErrInvalidMorphology or ErrRigTooLarge from
// the rig package on failure; no entity is created in that case.
func (c *Core) CreateCreatureAnimation(genes rig.MorphologyGenes) (Handle, error) {
	category, rc, err := rig.Classify(genes)
	if err != nil {
		return Handle{}, err
	}
	skel, err := rig.Build(genes, category, rc)
	if err != nil {
		return Handle{}, err
	}

	c.nextCreatureID++
	id := c.nextCreatureID

	skelComp := components.Skeleton{Rig: skel}
	triggersComp := components.Triggers{}
	actComp := components.ActivityState{Machine: activity.NewStateMachine(id, c.cfg)}
	driverComp := components.Driver{D: anim.NewDriver(skel, c.cfg)}
	secondaryComp := components.Secondary{Motion: pose.NewSecondaryMotion(skel)}
	poseComp := components.Pose{}
	motionComp := components.MotionState{GaitName: defaultGait(skel.Category)}

	entity := c.mapper.NewEntity(&skelComp, &triggersComp, &actComp, &driverComp, &secondaryComp, &poseComp, &motionComp)
	slog.Info("creature animation spawned", "creatureID", id, "category", category.String(), "bones", skel.BoneCount())
	return Handle{entity: entity, valid: true}, nil
}

func defaultGait(cat rig.Category) string {
	switch cat {
	case rig.Avian:
		return "flap"
	case rig.Fish, rig.Serpentine:
		return "swim-undulation"
	default:
		return "walk"
	}
}

// DestroyCreatureAnimation removes a creature's animation state entirely
// (spec.md §6 destroyCreatureAnimation).
func (c *Core) DestroyCreatureAnimation(h Handle) {
	if !h.valid {
		return
	}
	c.mapper.Remove(h.entity)
}

// UpdateAll advances every creature's animation state by dt seconds
// (spec.md §6 updateAll), dispatching across workers internally.
func (c *Core) UpdateAll(dt float64) {
	c.pipeline.Update(dt)
}

// Update advances a single creature's animation state by dt seconds
// (spec.md §6 update), bypassing the parallel dispatch for out-of-band
// ticking (e.g. a creature simulated at a different rate).
func (c *Core) Update(h Handle, dt float64) error {
	if !h.valid {
		return errInvalidHandle
	}
	return c.pipeline.UpdateOne(h.entity, dt)
}

// ReadPose returns the most recently composed pose for a creature
// (spec.md §6 readPose).
func (c *Core) ReadPose(h Handle) (pose.SkeletonPose, error) {
	if !h.valid {
		return pose.SkeletonPose{}, errInvalidHandle
	}
	p := c.poseMap.Get(h.entity)
	return p.Value, nil
}

// SetActivityConfig overrides a row of the shared activity tuning table
// (spec.md §6 setActivityConfig). The change applies to every creature,
// matching the tuning table's global-by-default semantics.
func (c *Core) SetActivityConfig(activityName string, tuning config.ActivityTuning) {
	c.cfg.SetActivityTuning(activityName, tuning)
}

// SetTriggers overwrites the per-tick drive/environment input for a
// creature (spec.md §6 setTriggers), read by the Trigger Evaluator on the
// next UpdateAll/Update call.
func (c *Core) SetTriggers(h Handle, tr activity.Triggers) error {
	if !h.valid {
		return errInvalidHandle
	}
	t := c.triggersMap.Get(h.entity)
	t.Value = tr
	return nil
}

// RequestActivity asks a creature's state machine to transition to t
// (spec.md §6 requestActivity(type, force)). force bypasses the
// interruption-priority rules but still goes through the normal blend
// machinery; it returns ErrUnknownActivity if t has no registered tuning
// row for this rig.
func (c *Core) RequestActivity(h Handle, t activity.Type, force bool) error {
	if !h.valid {
		return errInvalidHandle
	}
	a := c.actStateMap.Get(h.entity)
	return a.Machine.RequestActivity(t, force)
}

// SetTerrainSampler registers the ground-height collaborator a creature's
// Animation Driver consults for locomotion foot IK targets (spec.md §6
// TerrainSampler). Passing nil falls back to bind-pose-only placement.
func (c *Core) SetTerrainSampler(h Handle, sampler anim.TerrainSampler) error {
	if !h.valid {
		return errInvalidHandle
	}
	d := c.driverMap.Get(h.entity)
	d.D.SetTerrainSampler(sampler)
	return nil
}

// CancelActivity aborts a creature's current activity (spec.md §6
// cancelActivity).
func (c *Core) CancelActivity(h Handle) error {
	if !h.valid {
		return errInvalidHandle
	}
	a := c.actStateMap.Get(h.entity)
	a.Machine.CancelActivity()
	return nil
}

// RegisterEventCallback registers the callback invoked for every activity
// transition event across every creature (spec.md §6
// registerEventCallback). Only one callback is held; passing nil clears it.
func (c *Core) RegisterEventCallback(cb func(Handle, activity.Event)) {
	c.eventCB = cb
}

// RegisterWarningCallback registers the callback invoked for every
// non-fatal IK/compose warning (spec.md §7 degenerate IK handling).
func (c *Core) RegisterWarningCallback(cb func(Handle, error)) {
	c.warningCB = cb
}

// SetMotionState updates the external-collaborator-owned root motion for
// a creature, consulted by the gait cycle and secondary-motion impulse.
func (c *Core) SetMotionState(h Handle, ms components.MotionState) error {
	if !h.valid {
		return errInvalidHandle
	}
	*c.motionMap.Get(h.entity) = ms
	return nil
}

// DebugInfo returns a human-readable snapshot of a creature's animation
// state for inspection tooling (spec.md §6 debugInfo).
func (c *Core) DebugInfo(h Handle) string {
	if !h.valid {
		return "<invalid handle>"
	}
	skel := c.skeletonMap.Get(h.entity)
	act := c.actStateMap.Get(h.entity)
	st := act.Machine.State()
	return fmt.Sprintf(
		"category=%s bones=%d activity=%s phase=%s blend=%.2f",
		skel.Rig.Category, skel.Rig.BoneCount(), st.Current, st.Phase, act.Machine.BlendWeight(),
	)
}

var errInvalidHandle = fmt.Errorf("core: invalid or destroyed handle")
