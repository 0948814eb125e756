package sweep

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Candidate is a season slated for deletion.
type Candidate struct {
	SeriesID     int64
	SeriesTitle  string
	SeasonNumber int
	Files        []FileRef
	TotalSize    int64
}

// Line describes the candidate in a single report line.
func (c Candidate) Line() string {
	return fmt.Sprintf("delete %d files: %s S%02d: %s",
		len(c.Files), c.SeriesTitle, c.SeasonNumber, humanize.IBytes(uint64(c.TotalSize)))
}

// Plan is the ordered set of deletions a sweep would perform.
type Plan struct {
	Candidates []Candidate
	TotalSize  int64
}

// BuildPlan collects the eligible evaluations into a deterministic plan.
// Seasons whose episodes carry no file references are skipped; there is
// nothing to delete for them.
func BuildPlan(evals []Evaluation) Plan {
	var plan Plan
	for _, ev := range evals {
		if !ev.Eligible {
			continue
		}
		c := Candidate{
			SeriesID:     ev.Series.ID,
			SeriesTitle:  ev.Series.Title,
			SeasonNumber: ev.Season.Number,
		}
		seen := make(map[int64]struct{})
		for _, ep := range ev.Season.Episodes {
			if ep.File == (FileRef{}) {
				continue
			}
			if _, ok := seen[ep.File.ID]; ok {
				continue
			}
			seen[ep.File.ID] = struct{}{}
			c.Files = append(c.Files, ep.File)
			c.TotalSize += ep.Size
		}
		if len(c.Files) == 0 {
			continue
		}
		plan.Candidates = append(plan.Candidates, c)
		plan.TotalSize += c.TotalSize
	}
	sort.Slice(plan.Candidates, func(i, j int) bool {
		a, b := plan.Candidates[i], plan.Candidates[j]
		if a.SeriesTitle != b.SeriesTitle {
			return a.SeriesTitle < b.SeriesTitle
		}
		return a.SeasonNumber < b.SeasonNumber
	})
	return plan
}

// Lines renders one report line per candidate, in plan order.
func (p Plan) Lines() []string {
	lines := make([]string, 0, len(p.Candidates))
	for _, c := range p.Candidates {
		lines = append(lines, c.Line())
	}
	return lines
}

// Table renders the plan as a summary table with a size total.
func (p Plan) Table() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Series", "Season", "Files", "Size"})
	for _, c := range p.Candidates {
		tw.AppendRow(table.Row{
			c.SeriesTitle,
			fmt.Sprintf("S%02d", c.SeasonNumber),
			len(c.Files),
			humanize.IBytes(uint64(c.TotalSize)),
		})
	}
	tw.AppendFooter(table.Row{"Total", "", len(p.Candidates), humanize.IBytes(uint64(p.TotalSize))})
	return strings.TrimRight(tw.Render(), "\n")
}
