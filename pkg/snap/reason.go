package snap

import (
	"github.com/matzehuels/sectorlock/pkg/errors"
)

// Reason explains why a candidate was rejected.
type Reason string

// Rejection reasons.
const (
	ReasonNone        Reason = ""
	ReasonOversized   Reason = "OVERSIZED"
	ReasonNoValidBand Reason = "NO_VALID_BAND"
)

// User-facing notices.
const (
	NoticeAdjusted    = "Position adjusted to Sector 1."
	NoticeOversized   = "Selection is too large to fit in Sector 1."
	NoticeNoValidBand = "Only Sector 1 (outer ring) is available."
)

// Message returns the notice shown to the user for the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonOversized:
		return NoticeOversized
	case ReasonNoValidBand:
		return NoticeNoValidBand
	}
	return ""
}

// Code returns the error code matching the reason.
func (r Reason) Code() errors.Code {
	switch r {
	case ReasonOversized:
		return errors.ErrCodeOversized
	case ReasonNoValidBand:
		return errors.ErrCodeNoValidBand
	}
	return ""
}

// Band identifies which side of the ring a snapped rectangle landed on.
type Band int

// Bands in generation order.
const (
	BandNone Band = iota
	BandTop
	BandBottom
	BandLeft
	BandRight
)

var bandNames = [...]string{"none", "top", "bottom", "left", "right"}

func (b Band) String() string {
	if b < 0 || int(b) >= len(bandNames) {
		return "unknown"
	}
	return bandNames[b]
}
