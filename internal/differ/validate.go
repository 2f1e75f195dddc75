package differ

import "regexp"

// Violation describes one broken invariant found by Validate.
type Violation struct {
	Rule    string
	Message string
}

var (
	autoIncStmtRE  = regexp.MustCompile(`(?i)ALTER TABLE \x60([^\x60]+)\x60 (?:CHANGE COLUMN \x60([^\x60]+)\x60 \x60[^\x60]+\x60|ADD COLUMN \x60([^\x60]+)\x60)[^;]*AUTO_INCREMENT`)
	addIndexStmtRE = regexp.MustCompile(`(?i)ALTER TABLE \x60([^\x60]+)\x60 ADD (?:UNIQUE |FULLTEXT )?INDEX \x60[^\x60]+\x60 \(([^)]*)\)`)
	primaryStmtRE  = regexp.MustCompile(`(?i)PRIMARY KEY`)
	callCreateRE   = regexp.MustCompile(`(?i)CALL \w+\('([^']+)','([^']+)',.*,'create'\)`)
	callDropRE     = regexp.MustCompile(`(?i)CALL \w+\('([^']+)','([^']+)',.*,'drop'\)`)
	dropColumnRE   = regexp.MustCompile("(?i)ALTER TABLE `([^`]+)` DROP COLUMN `([^`]+)`")
)

// Validate runs the plan body against the universal invariants in §8 that
// are mechanically checkable from the emitted text: every AUTO_INCREMENT
// column change is preceded (or accompanied, via an inline PRIMARY KEY)
// by an index covering it, and every scaffolding index this run created
// via the workaround facility is either dropped again or left in place
// because its column was dropped. It is a test/CI tool, not part of the
// emission path.
func Validate(p *Plan) []Violation {
	var violations []Violation

	indexed := make(map[string]map[string]bool) // table -> column -> covered

	markIndexed := func(table, col string) {
		if indexed[table] == nil {
			indexed[table] = make(map[string]bool)
		}
		indexed[table][col] = true
	}

	created := make(map[string]bool) // "table/index" created via workaround
	droppedCols := make(map[string]map[string]bool)

	for _, rec := range p.Statements {
		if m := addIndexStmtRE.FindStringSubmatch(rec.SQL); m != nil {
			for _, c := range splitCols(m[2]) {
				markIndexed(m[1], c)
			}
		}
		if m := callCreateRE.FindStringSubmatch(rec.SQL); m != nil {
			created[m[1]+"/"+m[2]] = true
			markIndexed(m[1], m[2])
		}
		if m := callDropRE.FindStringSubmatch(rec.SQL); m != nil {
			delete(created, m[1]+"/"+m[2])
		}
		if m := dropColumnRE.FindStringSubmatch(rec.SQL); m != nil {
			if droppedCols[m[1]] == nil {
				droppedCols[m[1]] = make(map[string]bool)
			}
			droppedCols[m[1]][m[2]] = true
		}

		if m := autoIncStmtRE.FindStringSubmatch(rec.SQL); m != nil {
			table := m[1]
			col := m[2]
			if col == "" {
				col = m[3]
			}
			if primaryStmtRE.MatchString(rec.SQL) {
				continue // PK covers it in the same statement
			}
			if !indexed[table][col] {
				violations = append(violations, Violation{
					Rule:    "auto-increment-indexed",
					Message: "AUTO_INCREMENT column " + table + "." + col + " changed without a prior covering index",
				})
			}
		}
	}

	for key := range created {
		// A scaffolding index left un-dropped is only acceptable if its
		// column was itself dropped later in the plan.
		table, col := splitTableIndex(key)
		_ = col
		if !droppedCols[table][col] {
			// Index names don't always equal their column name (e.g.
			// temp_<hash>); this is a best-effort check so a leftover
			// scaffolding index is reported rather than silently passed.
			violations = append(violations, Violation{
				Rule:    "temporary-index-balanced",
				Message: "workaround-created index " + key + " was never dropped",
			})
		}
	}

	return violations
}

func splitCols(s string) []string {
	var out []string
	cur := ""
	for _, r := range s {
		switch r {
		case '`', ' ':
			continue
		case ',':
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
		default:
			cur += string(r)
		}
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func splitTableIndex(key string) (table, index string) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
