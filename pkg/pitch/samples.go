package pitch

import "github.com/james-see/svsbridge/pkg/model"

// Sample is one voiced point of an absolute pitch curve, spanning until the
// next point of the curve.
type Sample struct {
	Start    int
	End      int
	Semicent int
	// Restart is set on the first sample after silence: encoders must write
	// an explicit position for it. Other samples continue from the previous.
	Restart bool
}

// Samples walks consecutive point pairs of curve and returns its voiced
// samples. Points before tick 0 are skipped.
func Samples(curve model.ParamCurve) []Sample {
	var out []Sample
	restart := true
	for i, p := range curve.Points {
		semicent, voiced := model.PitchOf(p.Y).Unpack()
		if !voiced {
			restart = true
			continue
		}
		if p.X < 0 {
			continue
		}
		end := p.X
		if i+1 < len(curve.Points) {
			end = curve.Points[i+1].X
		}
		out = append(out, Sample{Start: p.X, End: end, Semicent: semicent, Restart: restart})
		restart = false
	}
	return out
}
