// Package dynamo implements the kinematic stepper for a one-dimensional
// takeoff roll and initial climb.
//
// A single primitive, [Advance], computes drag, net force, acceleration,
// velocity, lift and a simplified altitude increment for one time step.
// Two driving policies are built on it:
//
//   - [Session]: interactive mode, one [Session.Step] per external trigger,
//     with [Session.Reset] to return to rest.
//   - [Runner] and [Climb]: batch mode, stepping from rest until the target
//     velocity is reached or a step/time cap is exceeded.
//
// # Example
//
//	r := dynamo.NewRunner(dynamo.DefaultConfig())
//	result, err := r.Run(ctx, aero.DefaultParams())
//
// # Thread Safety
//
// Session and State values are NOT thread-safe. Each concurrent run must
// own its own Session or Runner.
package dynamo
