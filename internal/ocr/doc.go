// Package ocr reads text back out of images using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). Its main use
// is checking composited labels: ReadLabel crops the label rectangle, upscales
// it when small, runs single-line recognition and compares the result with
// the text that was drawn.
//
// # Prerequisites
//
// Tesseract and its development headers must be installed on the system:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Functions
//
//   - ExtractTextFromRegion: single-line OCR on a rectangle of an ImageBuffer
//   - ReadLabel: ExtractTextFromRegion plus a comparison with the expected text
//
// Word bounding boxes are always reported in the coordinates of the source
// image, whatever cropping or scaling was applied.
package ocr
