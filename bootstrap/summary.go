package bootstrap

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/kbukum/asrgate/component"
)

// writeSummary prints what started, the routes served and the current health
// of each component. A nil w disables it.
func writeSummary(w io.Writer, name, version string, took time.Duration, reg *component.Registry) {
	if w == nil {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "\n%s %s ready in %s\n", name, version, took.Round(time.Millisecond))

	var routes []component.Route
	fmt.Fprintln(tw, "\ncomponents")
	for _, c := range reg.All() {
		kind, details := "-", ""
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			kind, details = desc.Type, desc.Details
			if desc.Port > 0 {
				details = fmt.Sprintf("%s :%d", details, desc.Port)
			}
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", c.Name(), kind, details)
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}

	if len(routes) > 0 {
		fmt.Fprintln(tw, "\nroutes")
		for _, r := range routes {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", r.Method, r.Path, r.Handler)
		}
	}

	fmt.Fprintln(tw, "\nhealth")
	for _, h := range reg.HealthAll(context.Background()) {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", h.Name, h.Status, h.Message)
	}
	fmt.Fprintln(tw)
	_ = tw.Flush()
}
