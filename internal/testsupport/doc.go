// Package testsupport provides shared helpers for building temporary
// configurations, fake executables, and archive fixtures in tests.
package testsupport
