// Package mediacmd builds and runs the external tool invocations for
// subtitle muxing, extraction, burn-in, and conversion. The argv builders
// are pure so they can be tested without the tools installed.
package mediacmd
