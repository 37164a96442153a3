// Package tts synthesizes voiceover audio through a configurable
// speech-synthesis binary.
package tts
