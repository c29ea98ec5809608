package audit

import "github.com/kallysto/kallysto/pkg/clock"

func clockUID(n int64) clock.UID {
	return clock.UID(n)
}
