package snapshot

import (
	"time"

	"github.com/TissotPA/Match/internal/domain/roster"
	"github.com/TissotPA/Match/internal/domain/stats"
)

// UnnamedPlayer replaces empty names in exports and recaps.
const UnnamedPlayer = "Sans nom"

// isoMillis matches the JavaScript toISOString layout.
const isoMillis = "2006-01-02T15:04:05.000Z"

// ExportDocument is the downloadable file. Derived values are output only.
type ExportDocument struct {
	Date    string         `json:"date"`
	Count   int            `json:"nombreJoueuses"`
	Players []ExportPlayer `json:"joueuses"`
}

// ExportPlayer carries raw counters plus derived scores.
type ExportPlayer struct {
	Name       string           `json:"nom"`
	Number     string           `json:"numero,omitempty"`
	Statistics ExportStatistics `json:"statistiques"`
}

// ExportStatistics mirrors Statistics with points, percentages and evaluation.
type ExportStatistics struct {
	Shots      ExportShots `json:"tirs"`
	Points     int         `json:"points"`
	Rebounds   int         `json:"rebonds"`
	Assists    int         `json:"passes_decisives"`
	Steals     int         `json:"interceptions"`
	Blocks     int         `json:"contres"`
	Turnovers  int         `json:"ballons_perdus"`
	Fouls      int         `json:"fautes"`
	Evaluation int         `json:"evaluation"`
}

// ExportShots groups the exported shot lines.
type ExportShots struct {
	Interior  ExportShotLine `json:"interieurs"`
	Exterior  ExportShotLine `json:"exterieurs"`
	Three     ExportShotLine `json:"trois_points"`
	FreeThrow ExportShotLine `json:"lancers_francs"`
}

// ExportShotLine adds the integer success percent.
type ExportShotLine struct {
	Attempted  int `json:"tentes"`
	Made       int `json:"reussis"`
	Percentage int `json:"pourcentage"`
}

// Export builds the export file for entries at time now.
func Export(entries []roster.Entry, now time.Time) ExportDocument {
	doc := ExportDocument{
		Date:    now.UTC().Format(isoMillis),
		Count:   len(entries),
		Players: make([]ExportPlayer, 0, len(entries)),
	}
	for _, e := range entries {
		s := e.Stats
		doc.Players = append(doc.Players, ExportPlayer{
			Name:   displayName(e.Name),
			Number: e.Number,
			Statistics: ExportStatistics{
				Shots: ExportShots{
					Interior:  exportShot(s, stats.Interior),
					Exterior:  exportShot(s, stats.Exterior),
					Three:     exportShot(s, stats.Three),
					FreeThrow: exportShot(s, stats.FreeThrow),
				},
				Points:     s.TotalPoints(),
				Rebounds:   s.Rebounds,
				Assists:    s.Assists,
				Steals:     s.Steals,
				Blocks:     s.Blocks,
				Turnovers:  s.Turnovers,
				Fouls:      s.Fouls,
				Evaluation: s.Evaluation(),
			},
		})
	}
	return doc
}

// ExportFilename names the download for day now.
func ExportFilename(now time.Time) string {
	return "stats_basket_" + now.UTC().Format(time.DateOnly) + ".json"
}

func exportShot(s stats.StatLine, c stats.Category) ExportShotLine {
	made, attempted := s.Shots(c)
	return ExportShotLine{Attempted: attempted, Made: made, Percentage: stats.Percentage(made, attempted)}
}

func displayName(name string) string {
	if name == "" {
		return UnnamedPlayer
	}
	return name
}
