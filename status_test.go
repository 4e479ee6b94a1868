package sqlmagic_test

import (
	"errors"
	"fmt"

	. "gopkg.in/check.v1"

	"github.com/canonical/sqlmagic"
)

type StatusSuite struct{}

var _ = Suite(&StatusSuite{})

var driverStatusTests = []struct {
	summary string
	message string
	status  sqlmagic.Status
}{{
	summary: "db2 message",
	message: `[IBM][CLI Driver][DB2/LINUXX8664] SQL0204N  "DB2INST1.NOPE" is an undefined name.  SQLSTATE=42704 SQLCODE=-204`,
	status: sqlmagic.Status{
		Code:    -204,
		State:   "42704",
		Message: `SQL0204N  "DB2INST1.NOPE" is an undefined name.  SQLSTATE=42704 SQLCODE=-204`,
	},
}, {
	summary: "punctuation after codes",
	message: "SQL0104N  An unexpected token was found.  SQLSTATE=42601, SQLCODE=-104.",
	status: sqlmagic.Status{
		Code:    -104,
		State:   "42601",
		Message: "SQL0104N  An unexpected token was found.  SQLSTATE=42601, SQLCODE=-104.",
	},
}, {
	summary: "carriage returns",
	message: "[x] bad\rthing SQLCODE=-1",
	status:  sqlmagic.Status{Code: -1, State: "-99999", Message: "bad thing SQLCODE=-1"},
}, {
	summary: "no codes",
	message: `near "SELEC": syntax error`,
	status:  sqlmagic.Status{Code: -99999, State: "-99999", Message: `near "SELEC": syntax error`},
}, {
	summary: "bad code",
	message: "SQLSTATE=HY000 SQLCODE=abc",
	status:  sqlmagic.Status{Code: -99999, State: "HY000", Message: "SQLSTATE=HY000 SQLCODE=abc"},
}, {
	summary: "empty text",
	message: "[IBM][CLI Driver] ",
	status:  sqlmagic.Status{Code: -99999, State: "-99999", Message: "No error text available"},
}}

func (s *StatusSuite) TestDriverStatus(c *C) {
	for i, test := range driverStatusTests {
		c.Check(sqlmagic.DriverStatus(errors.New(test.message)), Equals, test.status,
			Commentf("test %d failed:\nsummary: %s\nmessage: %s", i, test.summary, test.message))
	}
}

func (s *StatusSuite) TestStatusOf(c *C) {
	err := sqlmagic.DriverError(sqlmagic.ErrExecute, errors.New("SQLSTATE=23505 SQLCODE=-803"))
	wrapped := fmt.Errorf("while loading: %w", err)
	c.Assert(sqlmagic.StatusOf(wrapped).Code, Equals, -803)
	c.Assert(errors.Is(wrapped, sqlmagic.ErrExecute), Equals, true)

	c.Assert(sqlmagic.StatusOf(errors.New("boom")), Equals, sqlmagic.Status{Code: -99999, State: "-99999", Message: "boom"})
}

func (s *StatusSuite) TestString(c *C) {
	c.Assert(sqlmagic.StatusOK.String(), Equals, "SQLCODE=0 SQLSTATE=00000")
	c.Assert(sqlmagic.StatusNoRows.String(), Equals, "No rows found SQLCODE=100 SQLSTATE=02000")
	c.Assert(sqlmagic.StatusOK.Failed(), Equals, false)
	c.Assert(sqlmagic.StatusNoRows.Failed(), Equals, false)
	c.Assert(sqlmagic.MessageStatus("x").Failed(), Equals, true)
}
