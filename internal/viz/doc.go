// Package viz renders takeoff runs in the terminal.
//
// [Model] is a Bubble Tea program driving a [dynamo.Session] in
// interactive mode: every press of the accelerate key is one stepper
// trigger. [PlotSamples] renders a finished run as ASCII charts.
//
// # Key Bindings
//
//	Space/Enter - Accelerate (one step)
//	A           - Toggle auto-accelerate (one step per tick)
//	R           - Reset to rest
//	Tab         - Cycle parameters
//	Up/Down     - Adjust selected parameter (+/-5%)
//	Q           - Quit
package viz
