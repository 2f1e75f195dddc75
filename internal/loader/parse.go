package loader

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rurban/mysqldiff/internal/model"
)

var (
	createTableRE   = regexp.MustCompile(`(?is)^CREATE TABLE\s+` + "`" + `?([^` + "`" + `\s(]+)` + "`" + `?\s*\((.*)\)\s*([^)]*);?\s*$`)
	createViewRE    = regexp.MustCompile(`(?is)^CREATE\s+(?:ALGORITHM=(\S+)\s+)?(?:DEFINER=\S+\s+)?SQL SECURITY (\S+)\s+VIEW\s+` + "`" + `?([^` + "`" + `\s(]+)` + "`" + `?\s*(\([^)]*\))?\s*AS\s+(.*?)(\s+WITH[^;]*CHECK OPTION)?;?\s*$`)
	createRoutineRE = regexp.MustCompile(`(?is)^CREATE\s+(?:DEFINER=\S+\s+)?(PROCEDURE|FUNCTION)\s+` + "`" + `?([^` + "`" + `\s(]+)` + "`" + `?\s*(\([^)]*\))(.*?)(BEGIN.*END)\s*;?\s*$`)

	primaryKeyLineRE = regexp.MustCompile(`(?i)^PRIMARY KEY\s*\(([^)]*)\)$`)
	indexLineRE      = regexp.MustCompile("(?i)^(UNIQUE |FULLTEXT )?(?:KEY|INDEX)\\s+`([^`]+)`\\s*\\(([^)]*)\\)\\s*(.*)$")
	constraintFKRE   = regexp.MustCompile("(?i)^CONSTRAINT\\s+`([^`]+)`\\s+(FOREIGN KEY.*)$")
	columnNameRE     = regexp.MustCompile("^`([^`]+)`\\s+(.*)$")
)

// ParseDump parses a mysqldump --no-data style SQL file into a model.Schema,
// preserving declaration order. saveQuotes controls whether backticks are
// kept in the canonical `def` text each object carries for re-emission;
// the differ's own internal comparisons always work on the unquoted form.
func ParseDump(path string, saveQuotes bool) (*model.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrParse, path, err)
	}
	return ParseDumpText(string(data), saveQuotes)
}

// ParseDumpText parses dump text already read into memory, so callers that
// already have the bytes (tests, the HTTP server receiving a dump in the
// request body) don't need a round trip through disk.
func ParseDumpText(text string, saveQuotes bool) (*model.Schema, error) {
	schema := model.NewSchema()

	for _, stmt := range splitStatements(text) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || strings.HasPrefix(stmt, "--") || strings.HasPrefix(stmt, "/*") {
			continue
		}
		upper := strings.ToUpper(stmt)

		switch {
		case strings.HasPrefix(upper, "CREATE TABLE"):
			t, err := parseCreateTable(stmt, saveQuotes)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrParse, err)
			}
			schema.AddTable(t)

		case strings.Contains(upper, "VIEW ") && strings.HasPrefix(upper, "CREATE"):
			v, err := parseCreateView(stmt)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrParse, err)
			}
			schema.AddView(v)

		case strings.Contains(upper, "PROCEDURE ") || strings.Contains(upper, "FUNCTION "):
			if !strings.HasPrefix(upper, "CREATE") {
				continue
			}
			r, err := parseCreateRoutine(stmt)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrParse, err)
			}
			schema.AddRoutine(r)

		default:
			// DROP TABLE IF EXISTS, SET statements, LOCK/UNLOCK TABLES and
			// other mysqldump scaffolding carry no schema information.
		}
	}

	return schema, nil
}

// splitStatements splits dump text on statement-terminating semicolons,
// honoring "DELIMITER ;;" blocks the way mysqldump emits stored routines
// so a routine body's internal semicolons don't fragment it.
func splitStatements(text string) []string {
	delim := ";"
	var stmts []string
	var cur strings.Builder

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToUpper(trimmed), "DELIMITER ") {
			if cur.Len() > 0 {
				stmts = append(stmts, cur.String())
				cur.Reset()
			}
			delim = strings.TrimSpace(trimmed[len("DELIMITER "):])
			continue
		}
		cur.WriteString(line)
		cur.WriteString("\n")
		if strings.HasSuffix(strings.TrimSpace(cur.String()), delim) {
			full := cur.String()
			full = strings.TrimSuffix(strings.TrimSpace(full), delim)
			stmts = append(stmts, full)
			cur.Reset()
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		stmts = append(stmts, cur.String())
	}
	return stmts
}

func parseCreateTable(stmt string, saveQuotes bool) (*model.Table, error) {
	m := createTableRE.FindStringSubmatch(stmt)
	if m == nil {
		return nil, fmt.Errorf("unrecognized CREATE TABLE: %.80s", stmt)
	}
	name, body, opts := m[1], m[2], strings.TrimSpace(m[3])

	t := model.NewTable(name)
	t.SetDef(normalizeStmtText(stmt, saveQuotes))
	t.SetOptions(strings.TrimRight(opts, ";"))

	for _, line := range splitTopLevel(body) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case primaryKeyLineRE.MatchString(line):
			pm := primaryKeyLineRE.FindStringSubmatch(line)
			cols := unquoteList(pm[1])
			t.SetPrimaryKey("("+quoteList(cols)+")", cols)

		case indexLineRE.MatchString(line):
			im := indexLineRE.FindStringSubmatch(line)
			kind := strings.ToUpper(strings.TrimSpace(im[1]))
			cols := unquoteList(im[3])
			t.AddIndex(im[2], &model.Index{
				Columns:  cols,
				Opts:     strings.TrimSpace(im[4]),
				Unique:   kind == "UNIQUE",
				Fulltext: kind == "FULLTEXT",
			})

		case constraintFKRE.MatchString(line):
			fm := constraintFKRE.FindStringSubmatch(line)
			t.AddForeignKey(fm[1], &model.ForeignKey{
				Clause:   fm[2],
				Columns:  fkColumns(fm[2]),
				RefTable: fkRefTable(fm[2]),
			})

		case columnNameRE.MatchString(line):
			cm := columnNameRE.FindStringSubmatch(line)
			t.AddField(cm[1], cm[2])
		}
	}

	return t, nil
}

func parseCreateView(stmt string) (*model.View, error) {
	m := createViewRE.FindStringSubmatch(stmt)
	if m == nil {
		return nil, fmt.Errorf("unrecognized CREATE VIEW: %.80s", stmt)
	}
	v := model.NewView(m[3])
	v.Fields = strings.TrimSpace(m[4])
	v.Select = strings.TrimSpace(m[5])
	v.Options = model.ViewOptions{
		Algorithm: m[1],
		Security:  m[2],
		Trail:     strings.TrimSpace(m[6]),
	}
	v.SetDef(strings.TrimSpace(stmt) + ";")
	return v, nil
}

func parseCreateRoutine(stmt string) (*model.Routine, error) {
	m := createRoutineRE.FindStringSubmatch(stmt)
	if m == nil {
		return nil, fmt.Errorf("unrecognized CREATE PROCEDURE/FUNCTION: %.80s", stmt)
	}
	typ := model.RoutineProcedure
	if strings.EqualFold(m[1], "FUNCTION") {
		typ = model.RoutineFunction
	}
	r := model.NewRoutine(m[2], typ)
	r.Params = strings.TrimSpace(m[3])
	r.Options = strings.TrimSpace(m[4])
	r.Body = strings.TrimSpace(m[5])
	r.SetDef(strings.TrimSpace(stmt))
	return r, nil
}

// splitTopLevel splits a column/key/constraint list on commas that sit at
// paren depth zero, so a DEFAULT '(1,2)' literal or an index's column list
// doesn't fragment the split.
func splitTopLevel(s string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	inQuote := byte(0)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote != 0:
			cur.WriteByte(c)
			if c == inQuote && (i == 0 || s[i-1] != '\\') {
				inQuote = 0
			}
		case c == '\'' || c == '"':
			inQuote = c
			cur.WriteByte(c)
		case c == '(':
			depth++
			cur.WriteByte(c)
		case c == ')':
			depth--
			cur.WriteByte(c)
		case c == ',' && depth == 0:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		out = append(out, cur.String())
	}
	return out
}

func unquoteList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if idx := strings.Index(p, "("); idx >= 0 {
			p = p[:idx] // drop a prefix-length spec, e.g. `name`(10)
		}
		p = strings.Trim(p, "` ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func quoteList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = "`" + c + "`"
	}
	return strings.Join(quoted, ",")
}

var fkColsRE = regexp.MustCompile(`(?i)FOREIGN KEY\s*\(([^)]*)\)`)
var fkRefRE = regexp.MustCompile("(?i)REFERENCES\\s+`?([^`\\s(]+)`?")

func fkColumns(clause string) []string {
	m := fkColsRE.FindStringSubmatch(clause)
	if m == nil {
		return nil
	}
	return unquoteList(m[1])
}

func fkRefTable(clause string) string {
	m := fkRefRE.FindStringSubmatch(clause)
	if m == nil {
		return ""
	}
	return m[1]
}

// normalizeStmtText returns the canonical def text for re-emission. With
// saveQuotes unset (the default) backticks are stripped, matching the
// in-memory canonical form; saveQuotes keeps the dump's own quoting as-is.
func normalizeStmtText(stmt string, saveQuotes bool) string {
	text := strings.TrimSpace(stmt) + ";"
	if saveQuotes {
		return text
	}
	return strings.ReplaceAll(text, "`", "")
}
