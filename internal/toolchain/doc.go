// Package toolchain locates, downloads, verifies, and caches the external
// executables submux shells out to.
//
// A declarative manifest describes, per platform, where each tool family's
// archive lives, how to verify it, and which files to extract. The bundle
// manager provisions a versioned cache directory under a cross-process file
// lock (download to a private temp dir, SHA-256 verify, extract the declared
// files, then record a hash sidecar), and the resolver answers "what path,
// from what source" per tool using a fixed priority: explicit override,
// bundled toolset, provisioned cache, bare PATH lookup.
//
// Cache validity is decided solely by the hash sidecar: the sidecar is
// written only after a fully successful provision, so a crash mid-provision
// leaves the directory invalid and the next attempt re-provisions from
// scratch.
package toolchain
