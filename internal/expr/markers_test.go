package expr_test

import (
	. "gopkg.in/check.v1"

	"github.com/canonical/sqlmagic/internal/expr"
)

var markerTests = []struct {
	summary  string
	input    string
	expected string
}{{
	"no shorthand",
	"INSERT INTO t VALUES(?, ?)",
	"INSERT INTO t VALUES(?, ?)",
}, {
	"three markers",
	"INSERT INTO t VALUES(?*3)",
	"INSERT INTO t VALUES(?,?,?)",
}, {
	"one marker",
	"VALUES(?*1)",
	"VALUES(?)",
}, {
	"two shorthands",
	"VALUES(?*2), (?*2)",
	"VALUES(?,?), (?,?)",
}, {
	"zero is left alone",
	"VALUES(?*0)",
	"VALUES(?*0)",
}, {
	"missing count",
	"VALUES(?*)",
	"VALUES(?*)",
}, {
	"not a number",
	"VALUES(?*x)",
	"VALUES(?*x)",
}, {
	"count too large",
	"VALUES(?*32768)",
	"VALUES(?*32768)",
}, {
	"inside quotes",
	"SELECT '?*3', ?*2",
	"SELECT '?*3', ?,?",
}}

func (s *ExprSuite) TestExpandMarkers(c *C) {
	for i, test := range markerTests {
		got := expr.ExpandMarkers(test.input)
		c.Check(got, Equals, test.expected,
			Commentf("test %d failed (ExpandMarkers):\nsummary: %s\ninput: %s", i, test.summary, test.input))
		c.Check(expr.ExpandMarkers(got), Equals, got,
			Commentf("test %d not idempotent:\nsummary: %s", i, test.summary))
	}
}

func (s *ExprSuite) TestExpandMarkersMax(c *C) {
	got := expr.ExpandMarkers("?*32767")
	c.Assert(len(got), Equals, 2*expr.MaxMarkers-1)
}
