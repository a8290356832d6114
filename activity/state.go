package activity

import (
	"fmt"
	"math/rand"

	"github.com/wrenfield/menagerie/config"
)

// Event is one observable transition the state machine can emit (spec.md
// §4.4). Consumers register a callback via (*StateMachine).OnEvent. To is
// only meaningful for EventActivityInterrupted: the activity being
// transitioned into (spec.md §4.4 onActivityInterrupted(fromType, toType)).
type Event struct {
	Kind     EventKind
	Activity Type
	To       Type
	Phase    Phase
}

// ErrUnknownActivity is returned by RequestActivity when t has no entry in
// the rig's activity tuning table (spec.md §7 UnknownActivity): the
// request is rejected and the state machine is left unchanged.
type ErrUnknownActivity struct {
	Type Type
}

func (e *ErrUnknownActivity) Error() string {
	return fmt.Sprintf("activity: %s is not a registered activity for this rig", e.Type)
}

// EventKind enumerates the transition events the state machine fires.
type EventKind uint8

const (
	EventActivityStarted EventKind = iota
	EventActivityCompleted
	EventActivityInterrupted
	EventTransitionStarted
	EventTransitionCompleted
)

// State is the current activity state for one creature (spec.md §4.4
// ActivityState). It is opaque to callers other than through the
// StateMachine methods.
type State struct {
	Current      Type
	Phase        Phase
	phaseElapsed float64
	plannedHold  float64
	blendWeight  float64 // 0..1, how much of Current's overlay to apply

	pending    Type
	hasPending bool
}

// StateMachine arbitrates transitions for a single creature (spec.md §4.4).
// It owns a private RNG seeded from the creature id so that planned-hold
// durations are reproducible across replays of the same simulation.
type StateMachine struct {
	state State
	cfg   *config.Config
	rng   *rand.Rand

	onEvent func(Event)
}

// NewStateMachine creates a state machine starting in Idle, seeded from
// creatureID for deterministic duration sampling.
func NewStateMachine(creatureID int64, cfg *config.Config) *StateMachine {
	return &StateMachine{
		state: State{Current: Idle, Phase: PhaseIdle, blendWeight: 0},
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(creatureID)),
	}
}

// OnEvent registers the callback invoked for every emitted Event. Only one
// callback is held at a time; passing nil clears it.
func (m *StateMachine) OnEvent(cb func(Event)) {
	m.onEvent = cb
}

// State returns a copy of the current activity state.
func (m *StateMachine) State() State {
	return m.state
}

func (m *StateMachine) emit(kind EventKind) {
	if m.onEvent == nil {
		return
	}
	m.onEvent(Event{Kind: kind, Activity: m.state.Current, Phase: m.state.Phase})
}

// emitInterrupted fires EventActivityInterrupted naming both the activity
// being abandoned (Activity) and the one taking over (To).
func (m *StateMachine) emitInterrupted(to Type) {
	if m.onEvent == nil {
		return
	}
	m.onEvent(Event{Kind: EventActivityInterrupted, Activity: m.state.Current, To: to, Phase: m.state.Phase})
}

func (m *StateMachine) plannedDuration(t Type) float64 {
	tuning := m.cfg.ActivityTuningFor(t.String())
	if tuning.MaxDuration <= tuning.MinDuration {
		return tuning.MinDuration
	}
	return tuning.MinDuration + m.rng.Float64()*(tuning.MaxDuration-tuning.MinDuration)
}

// RequestActivity asks the state machine to transition to t (spec.md §6
// requestActivity(type, force)). Rejects t outright with ErrUnknownActivity
// if it has no registered tuning row. If t is already Current and the
// machine is not idle, this is a no-op. If the state machine is idle, the request begins
// immediately. Otherwise: force bypasses the interruption rules entirely
// and interrupts whatever is running; without force, a busy current
// activity is only interrupted if it CanBeInterrupted and t's priority is
// at least its own, and otherwise the request is queued as pending and
// honored once the current activity completes or becomes interruptible.
func (m *StateMachine) RequestActivity(t Type, force bool) error {
	if !m.cfg.IsRegistered(t.String()) {
		return &ErrUnknownActivity{Type: t}
	}
	if m.state.Current == t && m.state.Phase != PhaseIdle {
		return nil
	}
	if m.state.Phase == PhaseIdle {
		m.startActivity(t)
		return nil
	}

	if force {
		m.emitInterrupted(t)
		m.beginBlendOut(t)
		return nil
	}

	curTuning := m.cfg.ActivityTuningFor(m.state.Current.String())
	newTuning := m.cfg.ActivityTuningFor(t.String())
	if curTuning.CanBeInterrupted && newTuning.Priority >= curTuning.Priority {
		m.emitInterrupted(t)
		m.beginBlendOut(t)
		return nil
	}

	m.state.pending = t
	m.state.hasPending = true
	return nil
}

// CancelActivity aborts the current activity, transitioning through
// BlendOut back to Idle (spec.md §6 cancelActivity).
func (m *StateMachine) CancelActivity() {
	if m.state.Phase == PhaseIdle {
		return
	}
	m.emitInterrupted(Idle)
	m.beginBlendOut(Idle)
}

func (m *StateMachine) startActivity(t Type) {
	m.state.Current = t
	m.state.Phase = PhaseBlendIn
	m.state.phaseElapsed = 0
	m.state.plannedHold = m.plannedDuration(t)
	m.emit(EventTransitionStarted)
	m.emit(EventActivityStarted)
}

// beginBlendOut starts blending out of the current activity; next is the
// activity to adopt once the blend-out completes (Idle if none queued).
func (m *StateMachine) beginBlendOut(next Type) {
	m.state.Phase = PhaseBlendOut
	m.state.phaseElapsed = 0
	m.state.pending = next
	m.state.hasPending = true
	m.emit(EventTransitionStarted)
}

// tryPriorityInterrupt checks desired against the currently running
// activity and, if it strictly outranks it and the current activity
// CanBeInterrupted, begins blending out to desired immediately (spec.md
// §4.4: "if desired != current and current.canBeInterrupted and
// desired.priority > current.priority, transition immediately"). Reports
// whether it fired.
func (m *StateMachine) tryPriorityInterrupt(desired Type) bool {
	if desired == m.state.Current || desired == Idle {
		return false
	}
	curTuning := m.cfg.ActivityTuningFor(m.state.Current.String())
	if !curTuning.CanBeInterrupted {
		return false
	}
	desiredTuning := m.cfg.ActivityTuningFor(desired.String())
	if desiredTuning.Priority <= curTuning.Priority {
		return false
	}
	m.emitInterrupted(desired)
	m.beginBlendOut(desired)
	return true
}

// Update advances the state machine by dt seconds (spec.md §4.4). desired
// is the output of Evaluate for this tick. Every tick in BlendIn or Hold,
// desired is checked against the priority-interrupt rule so a
// higher-priority activity preempts immediately rather than waiting for
// the current activity's planned hold to elapse; otherwise it is only
// consulted once the current activity reaches a natural decision point
// (Hold expiring, or Idle with no pending request).
func (m *StateMachine) Update(dt float64, desired Type) {
	m.state.phaseElapsed += dt
	tuning := m.cfg.ActivityTuningFor(m.state.Current.String())

	switch m.state.Phase {
	case PhaseBlendIn:
		if m.tryPriorityInterrupt(desired) {
			return
		}
		if tuning.BlendInTime <= 0 {
			m.state.blendWeight = 1
		} else {
			m.state.blendWeight = clamp01(m.state.phaseElapsed / tuning.BlendInTime)
		}
		if m.state.blendWeight >= 1 {
			m.state.Phase = PhaseHold
			m.state.phaseElapsed = 0
			m.emit(EventTransitionCompleted)
		}

	case PhaseHold:
		m.state.blendWeight = 1
		if m.tryPriorityInterrupt(desired) {
			return
		}
		if m.state.phaseElapsed >= m.state.plannedHold {
			next := desired
			if m.state.hasPending {
				next = m.state.pending
			}
			m.beginBlendOut(next)
		}

	case PhaseBlendOut:
		if tuning.BlendOutTime <= 0 {
			m.state.blendWeight = 0
		} else {
			m.state.blendWeight = 1 - clamp01(m.state.phaseElapsed/tuning.BlendOutTime)
		}
		if m.state.blendWeight <= 0 {
			completed := m.state.Current
			next := m.state.pending
			m.state.hasPending = false
			m.emit(EventTransitionCompleted)
			_ = completed
			if next == Idle {
				m.state.Current = Idle
				m.state.Phase = PhaseIdle
				m.state.blendWeight = 0
				m.emit(EventActivityCompleted)
				return
			}
			m.emit(EventActivityCompleted)
			m.startActivity(next)
		}

	case PhaseIdle:
		m.state.blendWeight = 0
		if desired != Idle {
			m.startActivity(desired)
		}
	}
}

// BlendWeight returns the current overlay blend weight in [0,1], used by
// the Animation Driver to scale the activity overlay against the base
// locomotion pose (spec.md §4.5).
func (m *StateMachine) BlendWeight() float64 {
	return m.state.blendWeight
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
