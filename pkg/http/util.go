package http

import (
	"time"

	xutil "EnergyPulse/pkg/util"
)

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time { return xutil.ParseTimeDefault(s, def) }

// ParseList splits a comma separated query value.
func ParseList(s string) []string { return xutil.SplitList(s) }
