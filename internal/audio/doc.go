// Package audio plays the sound that accompanies a notification.
// It uses the beep library to decode WAV, OGG and MP3 files.
package audio
