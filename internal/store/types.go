package store

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/alive-runtime/internal/dialogue"
)

// #region errors
// ErrAppendOnly is returned when a write would rewrite an existing experience event.
var ErrAppendOnly = errors.New("experience log is append-only")
// #endregion errors

// #region pattern-record
// PatternRecord is a pattern candidate as persisted after a deliberation.
type PatternRecord struct {
	DeliberationID string
	dialogue.PatternCandidate
	CreatedAt time.Time
}
// #endregion pattern-record
