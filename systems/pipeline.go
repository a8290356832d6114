// Package systems wires the rig, activity, animation, IK, and secondary
// motion packages into the mlange-42/ark ECS world, running the per-tick
// pipeline across every creature (spec.md §5): read triggers, advance the
// activity state machine, emit the animation overlay, advance secondary
// motion, then solve IK and compose the pose (which applies the
// secondary-motion offsets after IK).
package systems

import (
	"errors"
	"runtime"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/wrenfield/menagerie/activity"
	"github.com/wrenfield/menagerie/anim"
	"github.com/wrenfield/menagerie/components"
	"github.com/wrenfield/menagerie/config"
	"github.com/wrenfield/menagerie/pose"
)

// creatureSnapshot captures the read-only per-entity state needed for one
// tick's compute phase, following the snapshot/compute/apply split used
// throughout the corpus to keep parallel work data-race free.
type creatureSnapshot struct {
	Entity   ecs.Entity
	Skeleton components.Skeleton
	Triggers activity.Triggers
	Machine  *activity.StateMachine
	Driver   *anim.Driver
	Motion   components.MotionState
	Secondary *pose.SecondaryMotion
}

// creatureResult captures one tick's computed output for a single
// creature, applied back to the ECS world single-threaded.
type creatureResult struct {
	Pose     pose.SkeletonPose
	Warnings []error
	Events   []activity.Event
}

// Pipeline owns the ark world accessors and per-tick scratch buffers for
// the animation core (spec.md §5, §6).
type Pipeline struct {
	world  *ecs.World
	filter *ecs.Filter7[
		components.Skeleton,
		components.Triggers,
		components.ActivityState,
		components.Driver,
		components.Secondary,
		components.Pose,
		components.MotionState,
	]

	skeletonMap  *ecs.Map1[components.Skeleton]
	triggersMap  *ecs.Map1[components.Triggers]
	actStateMap  *ecs.Map1[components.ActivityState]
	driverMap    *ecs.Map1[components.Driver]
	secondaryMap *ecs.Map1[components.Secondary]
	poseMap      *ecs.Map1[components.Pose]
	motionMap    *ecs.Map1[components.MotionState]

	cfg *config.Config

	numWorkers int
	snapshots  []creatureSnapshot
	results    []creatureResult

	onWarning func(ecs.Entity, error)
	onEvent   func(ecs.Entity, activity.Event)
}

// NewPipeline builds a Pipeline bound to world, registering the Map7/Filter7
// accessors over the seven animation-core components.
func NewPipeline(world *ecs.World, cfg *config.Config) *Pipeline {
	return &Pipeline{
		world: world,
		filter: ecs.NewFilter7[
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
		cfg:          cfg,
		numWorkers:   runtime.GOMAXPROCS(0),
	}
}

// OnWarning registers a callback invoked for every IK/compose warning
// produced this tick (spec.md §7 non-fatal degenerate IK handling).
func (p *Pipeline) OnWarning(cb func(ecs.Entity, error)) {
	p.onWarning = cb
}

// OnEvent registers a callback invoked for every activity-state-machine
// event emitted this tick (spec.md §6 registerEventCallback).
func (p *Pipeline) OnEvent(cb func(ecs.Entity, activity.Event)) {
	p.onEvent = cb
}

// Update runs one tick of the animation pipeline across every matching
// entity (spec.md §5, §6 updateAll).
func (p *Pipeline) Update(dt float64) {
	p.snapshots = p.snapshots[:0]

	query := p.filter.Query()
	for query.Next() {
		entity := query.Entity()
		skel, triggers, actState, driver, secondary, _, motion := query.Get()

		p.snapshots = append(p.snapshots, creatureSnapshot{
			Entity:    entity,
			Skeleton:  *skel,
			Triggers:  triggers.Value,
			Machine:   actState.Machine,
			Driver:    driver.D,
			Motion:    *motion,
			Secondary: secondary.Motion,
		})
	}

	n := len(p.snapshots)
	if n == 0 {
		return
	}
	if cap(p.results) < n {
		p.results = make([]creatureResult, n)
	}
	p.results = p.results[:n]

	numWorkers := p.numWorkers
	if numWorkers < 1 {
		numWorkers = 1
	}
	chunkSize := (n + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(i0, i1 int) {
			defer wg.Done()
			p.computeChunk(i0, i1, dt)
		}(start, end)
	}
	wg.Wait()

	for i := range p.snapshots {
		entity := p.snapshots[i].Entity
		result := &p.results[i]

		p.writePose(entity, result.Pose)

		for _, warn := range result.Warnings {
			if p.onWarning != nil {
				p.onWarning(entity, warn)
			}
		}
		for _, ev := range result.Events {
			if p.onEvent != nil {
				p.onEvent(entity, ev)
			}
		}
	}
}

// computeChunk runs the activity/animation/IK/secondary-motion pipeline
// for snapshot indices [i0,i1), writing results into p.results. Each
// snapshot's StateMachine/Driver/SecondaryMotion pointers are exclusively
// owned by one entity, so concurrent chunks never touch the same pointer.
func (p *Pipeline) computeChunk(i0, i1 int, dt float64) {
	for i := i0; i < i1; i++ {
		p.results[i] = computeOne(&p.snapshots[i], dt, p.cfg)
	}
}

// computeOne runs the activity/animation/IK/secondary-motion pipeline for
// a single snapshot. Factored out so UpdateOne (out-of-band single-entity
// ticking) and the parallel chunked path share identical semantics.
func computeOne(snap *creatureSnapshot, dt float64, cfg *config.Config) creatureResult {
	var events []activity.Event
	snap.Machine.OnEvent(func(e activity.Event) {
		events = append(events, e)
	})

	desired := activity.Evaluate(snap.Triggers, cfg)
	snap.Machine.Update(dt, desired)
	blendWeight := snap.Machine.BlendWeight()

	speed := float64(rl.Vector3Length(snap.Motion.WorldVelocity))
	overlay := snap.Driver.Emit(snap.Machine.State().Current, blendWeight, dt, snap.Triggers, snap.Motion.GaitName, speed)

	if snap.Secondary != nil {
		snap.Secondary.Advance(dt, snap.Motion.WorldPosition, snap.Motion.WorldVelocity, float64(overlay.SecondaryMotionGain), cfg)
	}

	composed, warnings := pose.Compose(snap.Skeleton.Rig, overlay, snap.Secondary, cfg)
	snap.Machine.OnEvent(nil)

	return creatureResult{Pose: composed, Warnings: warnings, Events: events}
}

// UpdateOne advances a single entity's animation state by dt seconds,
// bypassing the parallel dispatch entirely (spec.md §6 update).
func (p *Pipeline) UpdateOne(entity ecs.Entity, dt float64) error {
	skel := p.skeletonMap.Get(entity)
	if skel == nil {
		return errNoSuchEntity
	}
	triggers := p.triggersMap.Get(entity)
	actState := p.actStateMap.Get(entity)
	driver := p.driverMap.Get(entity)
	secondary := p.secondaryMap.Get(entity)
	motion := p.motionMap.Get(entity)

	snap := creatureSnapshot{
		Entity:    entity,
		Skeleton:  *skel,
		Triggers:  triggers.Value,
		Machine:   actState.Machine,
		Driver:    driver.D,
		Motion:    *motion,
		Secondary: secondary.Motion,
	}
	result := computeOne(&snap, dt, p.cfg)

	p.writePose(entity, result.Pose)
	for _, warn := range result.Warnings {
		if p.onWarning != nil {
			p.onWarning(entity, warn)
		}
	}
	for _, ev := range result.Events {
		if p.onEvent != nil {
			p.onEvent(entity, ev)
		}
	}
	return nil
}

func (p *Pipeline) writePose(entity ecs.Entity, value pose.SkeletonPose) {
	poseRef := p.poseMap.Get(entity)
	poseRef.Value = value
}

var errNoSuchEntity = errors.New("systems: entity has no animation-core components")
