// Package language normalizes subtitle language codes.
//
// mkvmerge and ffmpeg accept ISO 639-2 three-letter codes on their track
// flags while users habitually pass two-letter codes or full names; this
// package maps whatever BCP 47 can parse onto the three-letter form and
// provides display names for status output.
package language
