package fix

import (
	"fmt"
	"sort"
)

// ConflictError reports two different Replace fixes on one anchor. The first
// one wins; the other is returned as a ConflictError and not applied.
type ConflictError struct {
	AnchorID uint64
	Kept     LintFix
	Dropped  LintFix
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting replace fixes on anchor %d (%s): kept %q, dropped %q",
		e.AnchorID, e.Kept.Anchor.Kind(), rawOf(e.Kept), rawOf(e.Dropped))
}

func rawOf(f LintFix) string {
	var s string
	for _, e := range f.Edit {
		s += e.Raw()
	}
	return s
}

// AnchorEditInfo aggregates every fix aimed at one anchor in a single pass.
type AnchorEditInfo struct {
	Delete       int
	Replace      int
	CreateBefore int
	CreateAfter  int
	Fixes        []LintFix
	// FirstReplace is the Replace fix that will be applied, if any.
	FirstReplace *LintFix
	Conflicts    []*ConflictError
}

// Add records f. Identical fixes are counted once.
func (a *AnchorEditInfo) Add(f LintFix) {
	for _, existing := range a.Fixes {
		if existing.Equal(f) {
			return
		}
	}
	if f.Type == EditReplace && a.FirstReplace != nil {
		a.Conflicts = append(a.Conflicts, &ConflictError{AnchorID: f.Anchor.ID(), Kept: *a.FirstReplace, Dropped: f})
		return
	}

	a.Fixes = append(a.Fixes, f)
	switch f.Type {
	case EditDelete:
		a.Delete++
	case EditReplace:
		a.Replace++
		first := f
		a.FirstReplace = &first
	case EditCreateBefore:
		a.CreateBefore++
	case EditCreateAfter:
		a.CreateAfter++
	}
}

// Total is the number of distinct fixes on the anchor.
func (a *AnchorEditInfo) Total() int {
	return a.Delete + a.Replace + a.CreateBefore + a.CreateAfter
}

// IsValid reports whether the fixes can be applied together: a single fix,
// or one insertion on each side of the anchor.
func (a *AnchorEditInfo) IsValid() bool {
	switch total := a.Total(); {
	case total <= 1:
		return true
	case total == 2:
		return a.CreateBefore == 1 && a.CreateAfter == 1
	default:
		return false
	}
}

// ComputeAnchorEditInfo groups fixes by anchor identity. Conflicting Replace
// fixes are returned in anchor order.
func ComputeAnchorEditInfo(fixes []LintFix) (map[uint64]*AnchorEditInfo, []error) {
	infos := make(map[uint64]*AnchorEditInfo)
	for _, f := range fixes {
		id := f.Anchor.ID()
		info, ok := infos[id]
		if !ok {
			info = &AnchorEditInfo{}
			infos[id] = info
		}
		info.Add(f)
	}

	ids := make([]uint64, 0, len(infos))
	for id := range infos {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var errs []error
	for _, id := range ids {
		for _, c := range infos[id].Conflicts {
			errs = append(errs, c)
		}
	}
	return infos, errs
}
