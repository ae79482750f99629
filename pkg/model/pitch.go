package model

// Pitch is a pitch sample: either Voiced with a semicent value or Silent.
// Building pitch points through Pitch makes it impossible for a real value to
// be written as PitchSentinel.
type Pitch struct {
	semicent int
	voiced   bool
}

// Voiced returns a voiced pitch. A value equal to PitchSentinel is moved one
// semicent up.
func Voiced(semicent int) Pitch {
	if semicent == PitchSentinel {
		semicent++
	}
	return Pitch{semicent: semicent, voiced: true}
}

// Silent returns the "no pitch" sample.
func Silent() Pitch {
	return Pitch{}
}

// PitchOf interprets a raw pitch curve value.
func PitchOf(y int) Pitch {
	if y == PitchSentinel {
		return Silent()
	}
	return Pitch{semicent: y, voiced: true}
}

// Unpack returns the semicent value and whether the sample is voiced.
func (p Pitch) Unpack() (int, bool) {
	return p.semicent, p.voiced
}

// IsVoiced reports whether the sample carries a pitch.
func (p Pitch) IsVoiced() bool {
	return p.voiced
}

// Y returns the raw curve value.
func (p Pitch) Y() int {
	if !p.voiced {
		return PitchSentinel
	}
	return p.semicent
}

// PitchPoint builds a pitch curve point.
func PitchPoint(x int, p Pitch) Point {
	return Point{X: x, Y: p.Y()}
}
