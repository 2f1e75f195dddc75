package differ

import (
	"fmt"
	"sort"
	"strings"
)

// Plan is the differ's output: the ordered DDL statements that transform
// source into target, plus the bookkeeping needed to wrap them with the
// workaround procedure if one was used. Plan.Statements is a pure
// function of (source, target, options) except for the workaround
// procedure's name inside CALL statements, which is chosen at random per
// run; Banner (added by WithBanner) may carry a caller-supplied run
// timestamp and is never part of that guarantee.
type Plan struct {
	Statements     []ChangeRecord
	WorkaroundUsed bool
	ProcedureName  string
	Banner         string

	createStmt string
	dropStmt   string
}

// assemble stable-sorts recs by descending priority (ties keep emission
// order) and wraps them with the workaround procedure's CREATE/DROP if it
// was used.
func assemble(recs []ChangeRecord, wa *IndexWorkaroundFacility, opts Options) *Plan {
	sorted := make([]ChangeRecord, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	p := &Plan{Statements: sorted}
	if wa != nil && wa.Used() {
		p.WorkaroundUsed = true
		p.ProcedureName = wa.Name()
		p.createStmt = wa.CreateStmt()
		p.dropStmt = wa.DropStmt()
	}
	return p
}

// WithBanner prepends the "## mysqldiff <version>" banner used in normal
// (non-list-tables, non-refs) mode; it is a no-op otherwise, per §4.9.
func (p *Plan) WithBanner(version, runTime string, opts Options, sourceSummary, targetSummary string) *Plan {
	if opts.ListTables || opts.Refs {
		return p
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## mysqldiff %s\n", version)
	fmt.Fprintf(&b, "## run: %s\n", runTime)
	fmt.Fprintf(&b, "## options: tolerant=%v refs=%v only-both=%v keep-old-tables=%v list-tables=%v no-old-defs=%v\n",
		opts.Tolerant, opts.Refs, opts.OnlyBoth, opts.KeepOldTables, opts.ListTables, opts.NoOldDefs)
	fmt.Fprintf(&b, "--- %s\n", sourceSummary)
	fmt.Fprintf(&b, "+++ %s\n", targetSummary)
	p.Banner = b.String()
	return p
}

// String renders the full plan text: banner (if any), the workaround
// procedure's CREATE (if used), every statement in order, and finally the
// workaround procedure's DROP (if used).
func (p *Plan) String() string {
	var b strings.Builder
	if p.Banner != "" {
		b.WriteString(p.Banner)
		b.WriteString("\n")
	}
	if p.WorkaroundUsed {
		b.WriteString(p.createStmt)
		b.WriteString("\n\n")
	}
	for _, r := range p.Statements {
		b.WriteString(r.SQL)
		b.WriteString("\n\n")
	}
	if p.WorkaroundUsed {
		b.WriteString(p.dropStmt)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// IsEmpty reports whether the plan carries no statements — the universal
// invariant that diffing a schema against itself yields an empty body.
func (p *Plan) IsEmpty() bool { return len(p.Statements) == 0 }
