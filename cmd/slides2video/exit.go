package main

import (
	"github.com/ivlev/slides2video/internal/errs"
)

// exitCode maps an error kind to a process exit status.
func exitCode(err error) int {
	kind, ok := errs.KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case errs.KindConfig:
		return 2
	case errs.KindAsset:
		return 3
	case errs.KindTimeline, errs.KindSync:
		return 4
	case errs.KindEncode:
		return 5
	case errs.KindTimeout:
		return 6
	default:
		return 1
	}
}
