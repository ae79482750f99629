// Package model provides the canonical, format-agnostic project representation
// every adapter loads into and dumps out of.
package model

const (
	// TicksPerBeat is the canonical resolution: ticks per quarter note.
	TicksPerBeat = 480
	// DefaultBPM is substituted when a file supplies no tempo at all.
	DefaultBPM = 120.0
	// DefaultBarTicks is one 4/4 bar at TicksPerBeat.
	DefaultBarTicks = 4 * TicksPerBeat
)

// Project is the canonical in-memory project: tempo map, meters and tracks.
type Project struct {
	SongTempoList     []SongTempo     `yaml:"tempos" json:"tempos"`
	TimeSignatureList []TimeSignature `yaml:"time_signatures" json:"time_signatures"`
	TrackList         []Track         `yaml:"tracks" json:"tracks"`
}

// SongTempo is a tempo change at a canonical tick position.
type SongTempo struct {
	Position int     `yaml:"position" json:"position"`
	BPM      float64 `yaml:"bpm" json:"bpm"`
}

// TimeSignature is a meter change at the start of a bar.
type TimeSignature struct {
	BarIndex    int `yaml:"bar" json:"bar"`
	Numerator   int `yaml:"numerator" json:"numerator"`
	Denominator int `yaml:"denominator" json:"denominator"`
}

// TrackKind distinguishes the two track variants.
type TrackKind string

const (
	TrackSinging      TrackKind = "singing"
	TrackInstrumental TrackKind = "instrumental"
)

// Track is either a singing track (notes + parameter curves) or an
// instrumental track (a reference to an audio file placed at Offset).
type Track struct {
	Kind   TrackKind `yaml:"kind" json:"kind"`
	Title  string    `yaml:"title" json:"title"`
	Mute   bool      `yaml:"mute,omitempty" json:"mute,omitempty"`
	Solo   bool      `yaml:"solo,omitempty" json:"solo,omitempty"`
	Volume float64   `yaml:"volume" json:"volume"`
	Pan    float64   `yaml:"pan" json:"pan"`

	// Singing
	SingerName   string `yaml:"singer,omitempty" json:"singer,omitempty"`
	NoteList     []Note `yaml:"notes,omitempty" json:"notes,omitempty"`
	EditedParams Params `yaml:"params,omitempty" json:"params,omitempty"`

	// Instrumental
	AudioFilePath string `yaml:"audio,omitempty" json:"audio,omitempty"`
	Offset        int    `yaml:"offset,omitempty" json:"offset,omitempty"`
}

// NewSingingTrack returns an empty singing track.
func NewSingingTrack(title string) Track {
	return Track{Kind: TrackSinging, Title: title}
}

// NewInstrumentalTrack returns an instrumental track referencing audioPath.
func NewInstrumentalTrack(title, audioPath string, offset int) Track {
	return Track{Kind: TrackInstrumental, Title: title, AudioFilePath: audioPath, Offset: offset}
}

// IsSinging reports whether the track carries notes.
func (t *Track) IsSinging() bool {
	return t.Kind == TrackSinging
}

// Note is a single sung note in canonical ticks.
type Note struct {
	StartPos      int           `yaml:"start" json:"start"`
	Length        int           `yaml:"length" json:"length"`
	KeyNumber     int           `yaml:"key" json:"key"`
	Lyric         string        `yaml:"lyric" json:"lyric"`
	Pronunciation string        `yaml:"pronunciation,omitempty" json:"pronunciation,omitempty"`
	EditedPhones  *Phones       `yaml:"phones,omitempty" json:"phones,omitempty"`
	Vibrato       *VibratoParam `yaml:"vibrato,omitempty" json:"vibrato,omitempty"`
}

// EndPos returns StartPos+Length.
func (n Note) EndPos() int {
	return n.StartPos + n.Length
}

// Phones holds consonant timing edits.
type Phones struct {
	HeadLengthInSecs float64 `yaml:"head_length" json:"head_length"`
	MidRatioOverTail float64 `yaml:"mid_ratio_over_tail" json:"mid_ratio_over_tail"`
}

// VibratoParam describes a per-note vibrato. Start and End are ratios of the
// note length.
type VibratoParam struct {
	StartPercent float64 `yaml:"start" json:"start"`
	EndPercent   float64 `yaml:"end" json:"end"`
	Frequency    float64 `yaml:"frequency" json:"frequency"`
	Amplitude    float64 `yaml:"amplitude" json:"amplitude"`
	Phase        float64 `yaml:"phase" json:"phase"`
}
