package quorum

import "errors"

// errEmptyResult is the internal sentinel RunWithRetry feeds to its
// xretry.Retryer to signal "this attempt produced an empty/invalid result,
// try again" — it never escapes this package.
var errEmptyResult = errors.New("quorum: attempt produced no quorum-valid result")
