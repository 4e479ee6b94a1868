package expr_test

import (
	. "gopkg.in/check.v1"

	"github.com/canonical/sqlmagic/internal/expr"
)

var splitTests = []struct {
	summary  string
	batch    string
	delim    rune
	expected []string
}{{
	summary:  "empty batch",
	batch:    "",
	delim:    ';',
	expected: nil,
}, {
	summary:  "single statement",
	batch:    "SELECT 1",
	delim:    ';',
	expected: []string{"SELECT 1"},
}, {
	summary:  "two statements",
	batch:    "SELECT 1; SELECT 2",
	delim:    ';',
	expected: []string{"SELECT 1", " SELECT 2"},
}, {
	summary:  "trailing delimiter",
	batch:    "A;B;",
	delim:    ';',
	expected: []string{"A", "B"},
}, {
	summary:  "empty statement between delimiters",
	batch:    "A;;B",
	delim:    ';',
	expected: []string{"A", "", "B"},
}, {
	summary:  "only a delimiter",
	batch:    ";",
	delim:    ';',
	expected: []string{""},
}, {
	summary:  "delimiter inside quotes",
	batch:    `A;'x;y';"p;q";[r;s];B`,
	delim:    ';',
	expected: []string{"A", "'x;y'", `"p;q"`, "[r;s]", "B"},
}, {
	summary:  "unterminated quote swallows the rest",
	batch:    "A; 'open;B",
	delim:    ';',
	expected: []string{"A", " 'open;B"},
}, {
	summary:  "alternative delimiter",
	batch:    "CREATE PROCEDURE P() BEGIN SELECT 1; END@CALL P()@",
	delim:    '@',
	expected: []string{"CREATE PROCEDURE P() BEGIN SELECT 1; END", "CALL P()"},
}}

func (s *ExprSuite) TestSplit(c *C) {
	for i, test := range splitTests {
		got := expr.Split(test.batch, test.delim)
		c.Check(got, DeepEquals, test.expected,
			Commentf("test %d failed (Split):\nsummary: %s\nbatch: %s", i, test.summary, test.batch))
	}
}

var stripTests = []struct {
	summary  string
	input    string
	expected string
}{{
	summary:  "no comments",
	input:    "SELECT a - b / c FROM t",
	expected: "SELECT a - b / c FROM t",
}, {
	summary:  "line comment",
	input:    "SELECT 1 -- one\nFROM t",
	expected: "SELECT 1 \nFROM t",
}, {
	summary:  "line comment at end",
	input:    "SELECT 1--",
	expected: "SELECT 1",
}, {
	summary:  "block comment",
	input:    "SELECT /* x */1",
	expected: "SELECT  1",
}, {
	summary:  "multi line block comment",
	input:    "SELECT /* a\nb */ 1",
	expected: "SELECT   1",
}, {
	summary:  "unterminated block comment",
	input:    "SELECT 1 /* open",
	expected: "SELECT 1  ",
}, {
	summary:  "comment markers inside quotes",
	input:    "SELECT '--x', '/* y */' FROM t",
	expected: "SELECT '--x', '/* y */' FROM t",
}}

func (s *ExprSuite) TestStripComments(c *C) {
	for i, test := range stripTests {
		got := expr.StripComments(test.input)
		c.Check(got, Equals, test.expected,
			Commentf("test %d failed (StripComments):\nsummary: %s\ninput: %q", i, test.summary, test.input))
	}
}
