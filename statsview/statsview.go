//go:build statsview

package statsview

import (
	"context"
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// DefaultAddress is used when Launch gets an empty address.
const DefaultAddress = "localhost:12600"

const chartsPath = "/debug/statsview"

// Launch serves the charts on addr in the background until ctx is done
// and prints where to find them.
func Launch(ctx context.Context, addr string, out io.Writer) {
	if addr == "" {
		addr = DefaultAddress
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go mgr.Start()
	go func() {
		<-ctx.Done()
		mgr.Stop()
	}()
	fmt.Fprintf(out, "statsview: http://%s%s\n", addr, chartsPath)
}

// Available reports whether the viewer was compiled in.
func Available() bool {
	return true
}
