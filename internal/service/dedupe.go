package service

import (
	"context"
	"strings"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

// neverDedupe holds references whose repeated identical rows are genuine,
// such as regular contributions of the same amount on the same day.
var neverDedupe = map[string]struct{}{
	"fpc":                  {},
	"opening subscription": {},
	"sipp contribution":    {},
	"topup subscription":   {},
}

// SkipsDedupe reports whether rows with this reference bypass the duplicate check.
func SkipsDedupe(reference string) bool {
	_, ok := neverDedupe[strings.ToLower(strings.TrimSpace(reference))]
	return ok
}

type duplicateFinder interface {
	IsDuplicate(ctx context.Context, t *model.Transaction) (bool, error)
}

// isDuplicate applies the dedupe gate to one candidate row.
func isDuplicate(ctx context.Context, finder duplicateFinder, t *model.Transaction) (bool, error) {
	if SkipsDedupe(t.Reference) {
		return false, nil
	}
	return finder.IsDuplicate(ctx, t)
}
