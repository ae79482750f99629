// Package report renders human-readable project summaries.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/james-see/svsbridge/pkg/model"
	"github.com/james-see/svsbridge/pkg/timing"
)

// TrackSummary describes one track
type TrackSummary struct {
	Index        int
	Title        string
	Kind         string
	Notes        int
	StartTick    int
	EndTick      int
	StartSeconds float64
	EndSeconds   float64
	LowestKey    int
	HighestKey   int
	PitchPoints  int
	Lyrics       string
	AudioFile    string
}

// Summary describes a loaded project
type Summary struct {
	Source          string
	Tempos          []model.SongTempo
	TimeSignatures  []model.TimeSignature
	Tracks          []TrackSummary
	EndTick         int
	DurationSeconds float64
	Warnings        []model.Warning
}

// Summarize collects the figures shown by reports. Positions in seconds
// follow the project's tempo map.
func Summarize(source string, p *model.Project, warnings []model.Warning) Summary {
	sync := timing.NewSynchronizer(p.SongTempoList, model.TicksPerBeat)
	s := Summary{
		Source:         source,
		Tempos:         sync.Tempos(),
		TimeSignatures: model.NormalizeTimeSignatures(p.TimeSignatureList),
		Warnings:       warnings,
	}

	for i := range p.TrackList {
		t := &p.TrackList[i]
		ts := TrackSummary{
			Index:       i + 1,
			Title:       t.Title,
			Kind:        string(t.Kind),
			Notes:       len(t.NoteList),
			PitchPoints: len(t.EditedParams.Pitch.Inner()),
			AudioFile:   t.AudioFilePath,
		}
		if len(t.NoteList) > 0 {
			ts.StartTick = t.NoteList[0].StartPos
			ts.LowestKey, ts.HighestKey = t.NoteList[0].KeyNumber, t.NoteList[0].KeyNumber
			lyrics := make([]string, 0, len(t.NoteList))
			for _, n := range t.NoteList {
				ts.StartTick = min(ts.StartTick, n.StartPos)
				ts.EndTick = max(ts.EndTick, n.EndPos())
				ts.LowestKey = min(ts.LowestKey, n.KeyNumber)
				ts.HighestKey = max(ts.HighestKey, n.KeyNumber)
				lyrics = append(lyrics, n.Lyric)
			}
			ts.Lyrics = strings.Join(lyrics, " ")
			ts.StartSeconds = sync.TicksToSeconds(float64(ts.StartTick))
			ts.EndSeconds = sync.TicksToSeconds(float64(ts.EndTick))
		}
		s.EndTick = max(s.EndTick, ts.EndTick)
		s.Tracks = append(s.Tracks, ts)
	}
	s.DurationSeconds = sync.TicksToSeconds(float64(s.EndTick))
	return s
}

// DefaultTemplate is the report printed by the info command
const DefaultTemplate = `{{ .Source | base }}
  length   {{ printf "%.2f" .DurationSeconds }}s ({{ .EndTick }} ticks)
  tempo    {{ range $i, $t := .Tempos }}{{ if $i }}, {{ end }}{{ $t.BPM | printf "%g" }}@{{ $t.Position }}{{ end }}
  meter    {{ range $i, $m := .TimeSignatures }}{{ if $i }}, {{ end }}{{ $m.Numerator }}/{{ $m.Denominator }}@bar{{ $m.BarIndex }}{{ end }}
  tracks   {{ len .Tracks }}
{{- range .Tracks }}
  [{{ .Index }}] {{ default "untitled" .Title | quote }} {{ .Kind | upper }}
{{- if eq .Kind "singing" }} {{ .Notes }} notes, keys {{ .LowestKey }}-{{ .HighestKey }}, {{ printf "%.2f" .StartSeconds }}s-{{ printf "%.2f" .EndSeconds }}s, {{ .PitchPoints }} pitch points
      {{ .Lyrics | trunc 60 }}
{{- else }} {{ .AudioFile }}{{ end }}
{{- end }}
{{- if .Warnings }}
  warnings {{ len .Warnings }}
{{- range .Warnings }}
    - {{ . }}
{{- end }}
{{- end }}
`

// Render executes tmpl with the sprig function set
func Render(w io.Writer, tmpl string, s Summary) error {
	t, err := template.New("report").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}
	if err := t.Execute(w, s); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
