package intervals

import "sort"

// FoldOrigin distinguishes provider-computed folds from user-created ones.
type FoldOrigin uint8

const (
	// OriginDerived folds come from processors and are replaced wholesale.
	OriginDerived FoldOrigin = iota
	// OriginUser folds are created by view commands and survive derived
	// replacements.
	OriginUser
)

// FoldRegion is a line-based foldable span. EndLine is inclusive; when
// collapsed, lines (StartLine+1 .. EndLine] are hidden and the start line
// carries the placeholder.
type FoldRegion struct {
	StartLine   int
	EndLine     int
	Collapsed   bool
	Placeholder string
	Origin      FoldOrigin
}

// NewFoldRegion creates an expanded derived fold region.
func NewFoldRegion(startLine, endLine int) FoldRegion {
	return FoldRegion{StartLine: startLine, EndLine: endLine}
}

// ContainsLine reports whether the region covers the given line.
func (fr FoldRegion) ContainsLine(line int) bool {
	return line >= fr.StartLine && line <= fr.EndLine
}

// HiddenLineCount returns the number of lines hidden when collapsed.
func (fr FoldRegion) HiddenLineCount() int {
	return fr.EndLine - fr.StartLine
}

// Folding manages the fold regions of a buffer. User and derived regions
// are kept separately; reads see a merged, sorted, disjoint view.
type Folding struct {
	derived []FoldRegion
	user    []FoldRegion

	merged      []FoldRegion
	mergedStale bool
}

// NewFolding creates an empty folding manager.
func NewFolding() *Folding {
	return &Folding{}
}

// normalizeRegions sorts regions by start line and drops inverted or
// duplicate spans, keeping regions disjoint (earliest wins).
func normalizeRegions(regions []FoldRegion) []FoldRegion {
	out := regions[:0]
	for _, r := range regions {
		if r.StartLine <= r.EndLine && r.StartLine >= 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartLine < out[j].StartLine })
	kept := out[:0]
	lastEnd := -1
	for _, r := range out {
		if r.StartLine <= lastEnd {
			continue
		}
		kept = append(kept, r)
		lastEnd = r.EndLine
	}
	return kept
}

func (f *Folding) invalidate() {
	f.mergedStale = true
}

// Regions returns all fold regions, sorted by start line and disjoint.
// The slice is shared; callers must not modify it.
func (f *Folding) Regions() []FoldRegion {
	if f.mergedStale || f.merged == nil {
		merged := make([]FoldRegion, 0, len(f.derived)+len(f.user))
		merged = append(merged, f.derived...)
		merged = append(merged, f.user...)
		f.merged = normalizeRegions(merged)
		f.mergedStale = false
	}
	return f.merged
}

// UserRegions returns the user-created regions.
func (f *Folding) UserRegions() []FoldRegion {
	return f.user
}

// DerivedRegions returns the provider-computed regions.
func (f *Folding) DerivedRegions() []FoldRegion {
	return f.derived
}

// AddUserRegion adds a user fold region.
func (f *Folding) AddUserRegion(r FoldRegion) {
	r.Origin = OriginUser
	f.user = append(f.user, r)
	f.user = normalizeRegions(f.user)
	f.invalidate()
}

// RemoveUserRegion removes the user region starting at the given line.
// Returns true if a region was removed.
func (f *Folding) RemoveUserRegion(startLine int) bool {
	for i, r := range f.user {
		if r.StartLine == startLine {
			f.user = append(f.user[:i], f.user[i+1:]...)
			f.invalidate()
			return true
		}
	}
	return false
}

// ReplaceDerived replaces the derived fold set wholesale, leaving user
// folds intact. When preserveCollapsed is true, new regions matching a
// currently collapsed region's span remain collapsed.
func (f *Folding) ReplaceDerived(regions []FoldRegion, preserveCollapsed bool) {
	collapsed := make(map[[2]int]bool)
	if preserveCollapsed {
		for _, r := range f.derived {
			if r.Collapsed {
				collapsed[[2]int{r.StartLine, r.EndLine}] = true
			}
		}
	}
	f.derived = f.derived[:0]
	for _, r := range regions {
		r.Origin = OriginDerived
		if collapsed[[2]int{r.StartLine, r.EndLine}] {
			r.Collapsed = true
		}
		f.derived = append(f.derived, r)
	}
	f.derived = normalizeRegions(f.derived)
	f.invalidate()
}

// ClearDerived removes all derived regions. Clearing twice equals once.
func (f *Folding) ClearDerived() {
	f.derived = f.derived[:0]
	f.invalidate()
}

// regionAt finds the merged region whose span contains the line.
func (f *Folding) regionAt(line int) (FoldRegion, bool) {
	for _, r := range f.Regions() {
		if r.StartLine > line {
			break
		}
		if r.ContainsLine(line) {
			return r, true
		}
	}
	return FoldRegion{}, false
}

// setCollapsedAt flips the collapsed state of the region containing line in
// whichever backing set owns it.
func (f *Folding) setCollapsedAt(line int, collapsed bool) bool {
	for _, set := range [][]FoldRegion{f.user, f.derived} {
		for i := range set {
			if set[i].ContainsLine(line) {
				if set[i].Collapsed == collapsed {
					return false
				}
				set[i].Collapsed = collapsed
				f.invalidate()
				return true
			}
		}
	}
	return false
}

// CollapseAt collapses the region containing the line.
func (f *Folding) CollapseAt(line int) bool {
	return f.setCollapsedAt(line, true)
}

// ExpandAt expands the region containing the line.
func (f *Folding) ExpandAt(line int) bool {
	return f.setCollapsedAt(line, false)
}

// ToggleAt toggles the collapsed state of the region containing the line.
// Returns true if a region was found.
func (f *Folding) ToggleAt(line int) bool {
	r, ok := f.regionAt(line)
	if !ok {
		return false
	}
	return f.setCollapsedAt(line, !r.Collapsed)
}

// ExpandAll expands every region.
func (f *Folding) ExpandAll() {
	for i := range f.user {
		f.user[i].Collapsed = false
	}
	for i := range f.derived {
		f.derived[i].Collapsed = false
	}
	f.invalidate()
}

// CollapsedRegionContaining returns the collapsed region hiding the given
// line, if any. The start line of a collapsed region is itself visible.
func (f *Folding) CollapsedRegionContaining(line int) (FoldRegion, bool) {
	for _, r := range f.Regions() {
		if r.StartLine >= line {
			break
		}
		if r.Collapsed && line > r.StartLine && line <= r.EndLine {
			return r, true
		}
	}
	return FoldRegion{}, false
}

// IsLineVisible reports whether the line is outside every collapsed span.
func (f *Folding) IsLineVisible(line int) bool {
	_, hidden := f.CollapsedRegionContaining(line)
	return !hidden
}

// HiddenLinesBefore returns how many lines above the given line are hidden
// by collapsed regions.
func (f *Folding) HiddenLinesBefore(line int) int {
	hidden := 0
	for _, r := range f.Regions() {
		if !r.Collapsed || r.StartLine >= line {
			continue
		}
		end := r.EndLine
		if end >= line {
			end = line - 1
		}
		hidden += end - r.StartLine
	}
	return hidden
}

// ApplyLineDelta shifts user fold regions for an edit that changed the
// newline count by lineDelta at editLine. Derived folds are not shifted;
// providers recompute them.
//
// Regions entirely below the edit shift whole; regions whose interior
// contains the edit grow or shrink at the end; regions that no longer span
// any lines are dropped.
func (f *Folding) ApplyLineDelta(editLine, lineDelta int) {
	if lineDelta == 0 {
		return
	}
	out := f.user[:0]
	for _, r := range f.user {
		if editLine <= r.StartLine {
			r.StartLine += lineDelta
			r.EndLine += lineDelta
			if r.StartLine < editLine {
				// Deletion consumed the region start: clip to the
				// surviving span.
				r.StartLine = editLine
			}
		} else if editLine <= r.EndLine {
			r.EndLine += lineDelta
			if r.EndLine < editLine {
				// A deletion straddled the region end: clip to the
				// surviving span ending at the edit line.
				r.EndLine = editLine
			}
		}
		if r.EndLine <= r.StartLine || r.EndLine < 0 {
			continue
		}
		if r.StartLine < 0 {
			r.StartLine = 0
		}
		out = append(out, r)
	}
	f.user = out
	f.invalidate()
}

// ClampToLineCount drops or clips regions that fell off the end of the
// document after an edit.
func (f *Folding) ClampToLineCount(lineCount int) {
	maxLine := lineCount - 1
	clamp := func(set []FoldRegion) []FoldRegion {
		out := set[:0]
		for _, r := range set {
			if r.StartLine > maxLine {
				continue
			}
			if r.EndLine > maxLine {
				r.EndLine = maxLine
			}
			if r.EndLine > r.StartLine {
				out = append(out, r)
			}
		}
		return out
	}
	f.user = clamp(f.user)
	f.derived = clamp(f.derived)
	f.invalidate()
}
