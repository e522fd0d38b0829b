//go:build !unix

package main

import "errors"

func startBackground(_ []string) (int, error) {
	return 0, errors.New("--background is not supported on this platform")
}
