package main

import "strings"

func debugLog(format string, a ...any) {
	if Debug {
		logger.Debugf(strings.TrimRight(format, "\n"), a...)
	}
}
