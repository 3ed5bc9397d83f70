package main

import (
	"fmt"
	"time"
)

func parseTimeout(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q", raw)
	}
	return d, nil
}
