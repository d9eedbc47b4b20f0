package bitecs

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds process wide defaults. Worlds read it when they are created
// or initialized, so changes only affect Worlds created afterwards.
var Config config = config{
	logger:      log.Logger,
	maskKind:    MaskAuto,
	maxEntities: 1 << 18,
	queryLimit:  1024,
}

type config struct {
	logger      zerolog.Logger
	maskKind    MaskKind
	maxEntities int
	queryLimit  int
	strict      bool
}

// SetLogger sets the base logger every World derives its own logger from.
func (c *config) SetLogger(l zerolog.Logger) {
	c.logger = l
}

// SetMaskKind selects the Mask backing used by Worlds initialized afterwards.
func (c *config) SetMaskKind(kind MaskKind) {
	c.maskKind = kind
}

// SetMaxEntities sets the default bound of the entity and mask recycle pools.
func (c *config) SetMaxEntities(n int) {
	if n > 0 {
		c.maxEntities = n
	}
}

// SetQueryLimit bounds how many distinct queries one World may cache.
func (c *config) SetQueryLimit(n int) {
	if n > 0 {
		c.queryLimit = n
	}
}

// SetStrict makes structural corruption panic instead of being logged and
// skipped. Tests and debug builds should turn it on.
func (c *config) SetStrict(strict bool) {
	c.strict = strict
}

func (c *config) Strict() bool {
	return c.strict
}
