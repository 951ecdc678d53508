// Package ocr adapts the external Tesseract recognition engine (via
// gosseract/v2) to the extraction pipeline.
//
// The Engine interface is the whole contract: a conditioned image goes
// in, the engine's raw text lines come out. Everything downstream of
// recognition (classification, fuzzy parsing, binding) lives elsewhere
// and treats the engine as a black box; everything upstream
// (conditioning) only exists to make this call more accurate.
//
// Tesseract requires cgo and the tesseract/leptonica native libraries
// at build time, plus the language traineddata at run time. Tests use a
// fake Engine and never touch the native library.
package ocr
