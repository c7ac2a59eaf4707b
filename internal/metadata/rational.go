package metadata

// Rational is an unsigned EXIF rational value: an integer numerator and
// denominator pair as stored in the container, before any division.
type Rational struct {
	Num uint32
	Den uint32
}

// Float converts the rational to a float64. A zero denominator is corrupted
// metadata, never a division.
func (r Rational) Float() (float64, error) {
	if r.Den == 0 {
		return 0, newCorrupted("zero denominator in rational value")
	}
	return float64(r.Num) / float64(r.Den), nil
}
