// Package startup implements the interactive startup gate: a throttled
// check that offers to install missing tools or apply a toolset update
// before the first real command runs. It never interrupts non-interactive
// invocations.
package startup
