// Package timealign computes canonical acquisition indexes from wall-clock time.
//
// Upstream providers publish imagery on a fixed interval (for example every
// 15 minutes). Given the current time and that interval, Align returns the
// index of the most recently published artifact:
//
//	idx := timealign.Align(time.Now(), 15*time.Minute)
//	url := locator.URL(idx) // .../202406011000.png
//
// Alignment floors across the full epoch, not just the minute-of-hour, so
// intervals that do not divide the hour evenly (or exceed it) still align
// correctly.
package timealign
