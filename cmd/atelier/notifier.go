package main

import (
	"fmt"
	"io"

	"github.com/bobinette/atelier"
)

// printer writes notifications on the output of the command.
type printer struct {
	out io.Writer
}

func (p printer) Notify(n atelier.Notification) {
	switch n.Severity {
	case atelier.Destructive:
		fmt.Fprintf(p.out, "%s: %s\n", n.Title, n.Description)
		logger.Debugf("notified failure: %s", n.Description)
	default:
		fmt.Fprintln(p.out, n.Description)
	}
}
