package expr_test

import (
	. "gopkg.in/check.v1"

	"github.com/canonical/sqlmagic/internal/expr"
)

func (s *ExprSuite) TestCacheHit(c *C) {
	cache, err := expr.NewCache(2)
	c.Assert(err, IsNil)

	pe1 := cache.Parse("SELECT :x")
	pe2 := cache.Parse("SELECT :x")
	c.Assert(pe1, Equals, pe2)
	c.Assert(cache.Len(), Equals, 1)
	c.Assert(pe1.String(), Equals, "ParsedExpr[bypassPart[SELECT ] placeholderPart[x]]")
}

func (s *ExprSuite) TestCacheEviction(c *C) {
	cache, err := expr.NewCache(2)
	c.Assert(err, IsNil)

	first := cache.Parse("SELECT 1")
	cache.Parse("SELECT 2")
	cache.Parse("SELECT 3")
	c.Assert(cache.Len(), Equals, 2)

	// The least recently used template was dropped and is parsed again.
	c.Assert(cache.Parse("SELECT 1") == first, Equals, false)

	cache.Purge()
	c.Assert(cache.Len(), Equals, 0)
}

func (s *ExprSuite) TestCacheDefaultSize(c *C) {
	cache, err := expr.NewCache(0)
	c.Assert(err, IsNil)
	for i := 0; i < expr.DefaultCacheSize+10; i++ {
		cache.Parse(string(rune('a'+i%26)) + string(rune('0'+i/26)))
	}
	c.Assert(cache.Len(), Equals, expr.DefaultCacheSize)
}
