// Command recap prints the box score summary of a saved roster, an export
// or a recap file.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/TissotPA/Match/internal/domain/roster"
	"github.com/TissotPA/Match/internal/domain/snapshot"
	"github.com/TissotPA/Match/internal/domain/stats"
)

// Exit codes.
const (
	exitOK        = 0
	exitMalformed = 1
	exitUsage     = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("recap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		in     = fs.String("in", "-", "Snapshot, export or recap JSON file (- for stdin)")
		search = fs.String("search", "", "Only show players whose name or number contains this term")
		asJSON = fs.Bool("json", false, "Print the summary as JSON")
	)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	data, err := readInput(*in, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "recap: %v\n", err)
		return exitUsage
	}
	rec, err := snapshot.DecodeRecap(data)
	if err != nil {
		fmt.Fprintf(stderr, "recap: %v\n", err)
		if errors.Is(err, snapshot.ErrMalformedSnapshot) {
			return exitMalformed
		}
		return exitUsage
	}
	rec.Players = filter(rec.Players, *search)
	sum := rec.Summary()

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sum); err != nil {
			fmt.Fprintf(stderr, "recap: %v\n", err)
			return exitUsage
		}
		return exitOK
	}
	printSummary(stdout, sum)
	return exitOK
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" || path == "" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// filter keeps the players matched by the roster search, by name or number.
func filter(players []snapshot.RecapPlayer, term string) []snapshot.RecapPlayer {
	if strings.TrimSpace(term) == "" {
		return players
	}
	entries := make([]roster.Entry, len(players))
	for i, p := range players {
		entries[i] = roster.Entry{Name: p.Name, Number: p.Number, Stats: p.Stats}
	}
	r := roster.New()
	r.Replace(entries)
	out := players[:0:0]
	for e := range r.Search(term) {
		out = append(out, snapshot.RecapPlayer{Name: e.Name, Number: e.Number, Stats: e.Stats})
	}
	return out
}

func printSummary(w io.Writer, sum snapshot.Summary) {
	if sum.Date != "" {
		fmt.Fprintf(w, "Match du %s\n\n", sum.Date)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "Joueuse\tPts\tEval\tReb\tPass\tInt\tCtr\tBP\tF")
	for _, c := range stats.Categories() {
		fmt.Fprintf(tw, "\t%s", c.Name)
	}
	fmt.Fprintln(tw, "\t")
	for _, l := range sum.Players {
		name := l.Name
		if name == "" {
			name = snapshot.UnnamedPlayer
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s", name, l.Points, l.Evaluation, counters(l.Stats))
		for _, c := range stats.Categories() {
			fmt.Fprintf(tw, "\t%d%%", l.Percentages[c.Name])
		}
		fmt.Fprintln(tw, "\t")
	}
	t := sum.Totals
	fmt.Fprintf(tw, "Équipe (%d)\t%d\t%d\t%s", t.Players, t.Points, t.Evaluation(), counters(t.StatLine))
	for _, c := range stats.Categories() {
		fmt.Fprintf(tw, "\t%d%%", sum.TotalPercentages[c.Name])
	}
	fmt.Fprintln(tw, "\t")
	_ = tw.Flush()
}

func counters(s stats.StatLine) string {
	return fmt.Sprintf("%d\t%d\t%d\t%d\t%d\t%d", s.Rebounds, s.Assists, s.Steals, s.Blocks, s.Turnovers, s.Fouls)
}
