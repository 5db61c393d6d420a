package utils

import (
	"time"
)

// TerminalTimeLayout is the MetaTrader TimeToString layout terminals send
const TerminalTimeLayout = "2006.01.02 15:04:05"

// FormatTerminalTime renders t in the terminal layout, in UTC
func FormatTerminalTime(t time.Time) string {
	return t.UTC().Format(TerminalTimeLayout)
}

// ParseTerminalTime parses a terminal timestamp as UTC
func ParseTerminalTime(s string) (time.Time, error) {
	return time.ParseInLocation(TerminalTimeLayout, s, time.UTC)
}
