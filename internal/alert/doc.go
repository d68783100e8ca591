// Package alert shows one notification: it reserves a stack slot, maps a
// layer-shell popup, and keeps it placed until it times out, is dismissed,
// or the process is told to stop.
package alert
