// Package formatter re-indents SQL text for display. It only changes
// whitespace and keyword case; literals, quoted identifiers and comments are
// copied through untouched.
//
// Keyword matching is lexical, so unquoted identifiers that share a name
// with a keyword (a column called key or count) are uppercased too. MySQL
// column names are case-insensitive, so the output still means the same
// thing; backtick-quoted names keep their case.
package formatter

import "strings"

const (
	subqueryIndent  = 4
	conditionIndent = 2
)

// Keywords that start a clause on a new line.
var clauseKeywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "HAVING": true, "LIMIT": true,
	"OFFSET": true, "UNION": true, "EXCEPT": true, "INTERSECT": true, "SET": true,
	"VALUES": true, "INSERT": true, "UPDATE": true, "DELETE": true, "REPLACE": true,
	"WITH": true, "RETURNING": true, "WINDOW": true, "GROUP": true, "ORDER": true,
}

var joinModifiers = map[string]bool{
	"LEFT": true, "RIGHT": true, "INNER": true, "OUTER": true, "CROSS": true,
	"FULL": true, "NATURAL": true,
}

// Keywords written directly against their opening parenthesis.
var functionKeywords = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
	"REPLACE": true, "LEFT": true, "RIGHT": true,
}

type level struct {
	base    int
	clause  string
	parens  int
	between bool
}

type printer struct {
	b      strings.Builder
	levels []*level
	prev   *token
	fresh  bool
}

// Format uppercases keywords and puts each clause on its own line.
func Format(sql string) string {
	tokens := tokenize(sql)
	if len(tokens) == 0 {
		return ""
	}

	p := &printer{levels: []*level{{}}, fresh: true}
	for i := range tokens {
		var next *token
		if i+1 < len(tokens) {
			next = &tokens[i+1]
		}
		p.write(&tokens[i], next)
	}

	return strings.TrimSpace(p.b.String())
}

func (p *printer) cur() *level {
	return p.levels[len(p.levels)-1]
}

func (p *printer) write(t, next *token) {
	lvl := p.cur()

	switch t.kind {
	case tokenKeyword:
		p.writeKeyword(t, next, lvl)
		return

	case tokenLineComment:
		p.emit(t, true)
		p.newline(lvl.base)
		return

	case tokenPunct:
		switch t.value {
		case "(":
			p.emit(t, p.spaceBeforeParen())
			if next != nil && next.kind == tokenKeyword && (next.value == "SELECT" || next.value == "WITH") {
				p.levels = append(p.levels, &level{base: lvl.base + subqueryIndent})
				return
			}
			lvl.parens++
		case ")":
			if lvl.parens > 0 {
				lvl.parens--
			} else if len(p.levels) > 1 {
				p.levels = p.levels[:len(p.levels)-1]
			}
			p.emit(t, false)
		case ",":
			p.emit(t, false)
			if lvl.parens == 0 && lvl.clause == "SELECT" {
				p.newline(lvl.base + len("SELECT "))
			}
		case ";":
			p.emit(t, false)
			p.levels = []*level{{}}
			p.newline(0)
		default:
			p.emit(t, false)
		}
		return

	case tokenOperator:
		if t.value == "::" {
			p.emit(t, false)
			return
		}
	}

	p.emit(t, p.spaceAfterPrev())
}

func (p *printer) writeKeyword(t, next *token, lvl *level) {
	prev := ""
	if p.prev != nil && p.prev.kind == tokenKeyword {
		prev = p.prev.value
	}
	call := next != nil && next.kind == tokenPunct && next.value == "(" && functionKeywords[t.value]

	if lvl.parens == 0 && !call {
		switch {
		case clauseKeywords[t.value]:
			// ON DUPLICATE KEY UPDATE stays on its line
			if !(t.value == "UPDATE" && prev == "KEY") {
				lvl.clause = t.value
				lvl.between = false
				p.newline(lvl.base)
			}
		case t.value == "JOIN" && !joinModifiers[prev],
			joinModifiers[t.value] && !joinModifiers[prev]:
			lvl.clause = "JOIN"
			p.newline(lvl.base)
		case t.value == "BETWEEN":
			lvl.between = true
		case t.value == "AND" && lvl.between:
			lvl.between = false
		case (t.value == "AND" || t.value == "OR") && (lvl.clause == "WHERE" || lvl.clause == "HAVING" || lvl.clause == "JOIN"):
			p.newline(lvl.base + conditionIndent)
		}
	}

	p.emit(t, p.spaceAfterPrev())
}

func (p *printer) spaceAfterPrev() bool {
	if p.prev == nil {
		return false
	}
	switch p.prev.value {
	case "(", ".", "::":
		return false
	}
	return true
}

func (p *printer) spaceBeforeParen() bool {
	if p.prev == nil {
		return false
	}
	switch p.prev.kind {
	case tokenWord, tokenQuotedIdent:
		return false
	case tokenKeyword:
		return !functionKeywords[p.prev.value]
	case tokenPunct:
		return p.prev.value == ","
	}
	return true
}

func (p *printer) emit(t *token, space bool) {
	if t.kind == tokenPunct && t.value != "(" {
		space = false
	}
	if space && !p.fresh {
		p.b.WriteByte(' ')
	}
	p.b.WriteString(t.value)
	p.prev = t
	p.fresh = false
}

func (p *printer) newline(indent int) {
	if p.b.Len() == 0 {
		p.fresh = true
		return
	}
	if p.fresh {
		// already at the start of a line, only fix the indent
		s := strings.TrimRight(p.b.String(), " ")
		p.b.Reset()
		p.b.WriteString(s)
		p.b.WriteString(strings.Repeat(" ", indent))
		return
	}
	s := strings.TrimRight(p.b.String(), " ")
	p.b.Reset()
	p.b.WriteString(s)
	p.b.WriteByte('\n')
	p.b.WriteString(strings.Repeat(" ", indent))
	p.fresh = true
}
