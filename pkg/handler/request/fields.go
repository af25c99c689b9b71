package request

import (
	"strings"

	"github.com/yumyai/mutlookup/pkg/model"
)

// Display settings never fail to parse: anything unknown falls back to the
// default so a stale bookmark still renders.

func NewBinning(field string) model.Binning {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "daily", "day", "d":
		return model.BinDaily
	case "weekly", "week", "w":
		return model.BinWeekly
	case "monthly", "month", "m":
		return model.BinMonthly
	default:
		return model.BinWeekly
	}
}

func NewScale(field string) model.Scale {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "log", "logarithmic":
		return model.ScaleLog
	default:
		return model.ScaleLinear
	}
}

func NewCountMode(field string) model.CountMode {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "absolute", "abs", "count":
		return model.ModeAbsolute
	default:
		return model.ModeRelative
	}
}
