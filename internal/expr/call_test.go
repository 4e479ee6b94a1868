package expr_test

import (
	"fmt"

	. "gopkg.in/check.v1"

	"github.com/canonical/sqlmagic/internal/expr"
)

var callTests = []struct {
	summary      string
	input        string
	expectedName string
	expectedArgs string
}{{
	summary:      "no parentheses",
	input:        "MYPROC",
	expectedName: "MYPROC",
	expectedArgs: "<nil>",
}, {
	summary:      "no arguments",
	input:        "MYPROC()",
	expectedName: "MYPROC",
	expectedArgs: "[]",
}, {
	summary:      "mixed arguments",
	input:        "MYPROC(:a, 'x', , 5)",
	expectedName: "MYPROC",
	expectedArgs: "[Var[a] Quoted[x] Null Literal[5]]",
}, {
	summary:      "schema qualified name with blanks",
	input:        "  DB2INST1.P ( 'a,b' )",
	expectedName: "DB2INST1.P",
	expectedArgs: "[Quoted[a,b]]",
}, {
	summary:      "null words",
	input:        "P(NULL, null, 'NULL')",
	expectedName: "P",
	expectedArgs: "[Null Null Quoted[NULL]]",
}, {
	summary:      "trailing empty slot is dropped",
	input:        "P(1,)",
	expectedName: "P",
	expectedArgs: "[Literal[1]]",
}, {
	summary:      "trailing empty slot after a variable",
	input:        "P(:a, )",
	expectedName: "P",
	expectedArgs: "[Var[a]]",
}, {
	summary:      "trailing empty quoted slot is kept",
	input:        "P(1,'')",
	expectedName: "P",
	expectedArgs: "[Literal[1] Quoted[]]",
}, {
	summary:      "only a comma",
	input:        "P(,)",
	expectedName: "P",
	expectedArgs: "[Null]",
}, {
	summary:      "parenthesis inside quotes",
	input:        "P('a)b', [c)d])",
	expectedName: "P",
	expectedArgs: "[Quoted[a)b] Quoted[c)d]]",
}, {
	summary:      "missing closing parenthesis",
	input:        "P(:x, 2",
	expectedName: "P",
	expectedArgs: "[Var[x] Literal[2]]",
}, {
	summary:      "unterminated quote",
	input:        "P('open",
	expectedName: "P",
	expectedArgs: "[Quoted[open]]",
}, {
	summary:      "text after closing parenthesis is ignored",
	input:        "P(1) extra",
	expectedName: "P",
	expectedArgs: "[Literal[1]]",
}, {
	summary:      "lone colon is a literal",
	input:        "P(:)",
	expectedName: "P",
	expectedArgs: "[Literal[:]]",
}}

func (s *ExprSuite) TestParseCall(c *C) {
	for i, test := range callTests {
		name, args := expr.ParseCall(test.input)
		comment := Commentf("test %d failed (ParseCall):\nsummary: %s\ninput: %s", i, test.summary, test.input)
		c.Check(name, Equals, test.expectedName, comment)
		if args == nil {
			c.Check("<nil>", Equals, test.expectedArgs, comment)
		} else {
			c.Check(fmt.Sprint(args), Equals, test.expectedArgs, comment)
		}
	}
}

func (s *ExprSuite) TestCallArgVariable(c *C) {
	_, args := expr.ParseCall("P(:emp, ':emp', x)")
	c.Assert(args, HasLen, 3)

	name, ok := args[0].Variable()
	c.Check(ok, Equals, true)
	c.Check(name, Equals, "emp")

	_, ok = args[1].Variable()
	c.Check(ok, Equals, false)
	_, ok = args[2].Variable()
	c.Check(ok, Equals, false)
}
