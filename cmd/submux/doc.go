// Command submux muxes, extracts, burns, and converts subtitles by
// orchestrating ffmpeg and MKVToolNix, provisioning the external tools on
// demand into a versioned per-user cache.
package main
