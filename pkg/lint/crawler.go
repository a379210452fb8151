package lint

import (
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// Crawler expands the root context into the contexts a rule evaluates.
type Crawler interface {
	Crawl(ctx RuleContext) []RuleContext
}

// RootOnlyCrawler hands the rule the whole file once.
type RootOnlyCrawler struct{}

// Crawl implements Crawler.
func (RootOnlyCrawler) Crawl(ctx RuleContext) []RuleContext {
	return []RuleContext{ctx}
}

// SegmentSeekerCrawler visits every segment of the given types.
type SegmentSeekerCrawler struct {
	Types syntax.Set
	// AllowRecurse keeps searching inside a matched segment.
	AllowRecurse bool
	// ProvideRawStack fills RuleContext.RawStack with the leaves before the segment.
	ProvideRawStack bool
	// IncludeUnparsable descends into unparsable sections.
	IncludeUnparsable bool
}

// SeekSegments returns a recursing crawler over kinds.
func SeekSegments(kinds ...syntax.Kind) *SegmentSeekerCrawler {
	return &SegmentSeekerCrawler{Types: syntax.NewSet(kinds...), AllowRecurse: true}
}

// NoRecurse stops the search at the first match on each path.
func (c *SegmentSeekerCrawler) NoRecurse() *SegmentSeekerCrawler {
	c.AllowRecurse = false
	return c
}

// WithRawStack asks for RuleContext.RawStack.
func (c *SegmentSeekerCrawler) WithRawStack() *SegmentSeekerCrawler {
	c.ProvideRawStack = true
	return c
}

// Crawl implements Crawler.
func (c *SegmentSeekerCrawler) Crawl(ctx RuleContext) []RuleContext {
	var out []RuleContext
	c.crawl(ctx, &out)
	return out
}

// crawl returns the raw stack after ctx.Segment.
func (c *SegmentSeekerCrawler) crawl(ctx RuleContext, out *[]RuleContext) []*segment.Segment {
	seg := ctx.Segment
	matched := seg.ClassTypes().Intersects(c.Types)
	if matched {
		*out = append(*out, ctx)
	}

	skip := (matched && !c.AllowRecurse) ||
		!seg.DescendantTypeSet().Intersects(c.Types) ||
		(seg.Kind() == syntax.Unparsable && !c.IncludeUnparsable)
	if skip || seg.IsToken() {
		if c.ProvideRawStack {
			return append(ctx.RawStack, seg.RawSegments()...)
		}
		return ctx.RawStack
	}

	parents := make([]*segment.Segment, len(ctx.ParentStack), len(ctx.ParentStack)+1)
	copy(parents, ctx.ParentStack)
	parents = append(parents, seg)

	raw := ctx.RawStack
	for _, child := range seg.Segments() {
		sub := ctx
		sub.Segment = child
		sub.ParentStack = parents
		// Full slice expression: appends must not alias an earlier context's stack.
		sub.RawStack = raw[:len(raw):len(raw)]
		raw = c.crawl(sub, out)
	}
	return raw
}
