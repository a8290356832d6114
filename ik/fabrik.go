package ik

import rl "github.com/gen2brain/raylib-go/raylib"

// FABRIKResult is the solved joint chain for an N-bone IK pass (spec.md
// §4.6 FABRIK solver), used for tentacle and tail chains where a two-bone
// analytic solve doesn't apply.
type FABRIKResult struct {
	Positions []rl.Vector3
	Iterations int
	Converged  bool
}

// SolveFABRIK runs forward-and-backward reaching inverse kinematics
// (Aristidou & Lazarus) over a chain of joint positions with fixed segment
// lengths. joints[0] is the root (pinned in the backward pass) and
// joints[len-1] is the end effector. maxIterations and epsilon bound the
// iteration count and convergence tolerance (spec.md §4.6, config.IKConfig).
//
// If the chain has fewer than 2 joints, or any segment length is smaller
// than ikLengthEpsilon (1e-6, independent of epsilon), the solve is
// degenerate.
func SolveFABRIK(joints []rl.Vector3, target rl.Vector3, maxIterations int, epsilon float64) (FABRIKResult, error) {
	n := len(joints)
	if n < 2 {
		return FABRIKResult{}, degenerate("chain needs at least two joints")
	}

	lengths := make([]float64, n-1)
	totalLength := 0.0
	for i := 0; i < n-1; i++ {
		l := float64(rl.Vector3Distance(joints[i], joints[i+1]))
		if l < ikLengthEpsilon {
			return FABRIKResult{}, degenerate("zero-length segment in chain")
		}
		lengths[i] = l
		totalLength += l
	}

	root := joints[0]
	positions := make([]rl.Vector3, n)
	copy(positions, joints)

	distToTarget := float64(rl.Vector3Distance(root, target))
	if distToTarget > totalLength {
		// Unreachable: stretch the chain in a straight line toward target.
		for i := 0; i < n-1; i++ {
			dir := rl.Vector3Normalize(rl.Vector3Subtract(target, positions[i]))
			positions[i+1] = rl.Vector3Add(positions[i], rl.Vector3Scale(dir, float32(lengths[i])))
		}
		return FABRIKResult{Positions: positions, Iterations: 0, Converged: false}, nil
	}

	converged := false
	iter := 0
	for ; iter < maxIterations; iter++ {
		if float64(rl.Vector3Distance(positions[n-1], target)) < epsilon {
			converged = true
			break
		}

		// Forward pass: pull end effector to target, then walk toward root.
		positions[n-1] = target
		for i := n - 2; i >= 0; i-- {
			dir := rl.Vector3Normalize(rl.Vector3Subtract(positions[i], positions[i+1]))
			positions[i] = rl.Vector3Add(positions[i+1], rl.Vector3Scale(dir, float32(lengths[i])))
		}

		// Backward pass: re-pin root, then walk toward the effector.
		positions[0] = root
		for i := 0; i < n-1; i++ {
			dir := rl.Vector3Normalize(rl.Vector3Subtract(positions[i+1], positions[i]))
			positions[i+1] = rl.Vector3Add(positions[i], rl.Vector3Scale(dir, float32(lengths[i])))
		}
	}
	if !converged && float64(rl.Vector3Distance(positions[n-1], target)) < epsilon {
		converged = true
	}

	return FABRIKResult{Positions: positions, Iterations: iter, Converged: converged}, nil
}
