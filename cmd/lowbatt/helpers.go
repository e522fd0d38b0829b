package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

func withoutBackground(args []string) []string {
	ret := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--background" || strings.HasPrefix(a, "--background=") {
			continue
		}
		ret = append(ret, a)
	}
	return ret
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

func percentage(p int) string {
	if p < 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d%%", p)
}
