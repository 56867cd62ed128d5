//go:build !statsview

package statsview

import (
	"context"
	"fmt"
	"io"
)

const DefaultAddress = ""

func Launch(_ context.Context, _ string, out io.Writer) {
	fmt.Fprintln(out, "statsview: not available in this build (rebuild with -tags statsview)")
}

func Available() bool {
	return false
}
