package http

import (
	"time"

	xutil "FxPull/pkg/util"
)

// ParseTime parses a query timestamp in any layout pkg/util accepts.
func ParseTime(s string) (time.Time, bool) { return xutil.ParseTime(s) }
