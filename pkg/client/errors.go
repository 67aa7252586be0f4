package client

import (
	"fmt"
	"strings"
)

// ExecutionError is returned when the automation engine reports a failed run
type ExecutionError struct {
	Hosts      []string
	Kind       string
	Diagnostic string
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("%s failed on %s", e.Kind, strings.Join(e.Hosts, ","))
	if e.Diagnostic != "" {
		msg += ": " + e.Diagnostic
	}
	return msg
}
