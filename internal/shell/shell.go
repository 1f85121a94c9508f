// Package shell provides an interactive SQL prompt over an exported
// partition file. The file is attached as a view named "bricks"; everything
// typed at the prompt runs through the DuckDB-backed query service.
package shell

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/c-bata/go-prompt"
	"golang.org/x/term"

	"github.com/xtxerr/amrcarve/internal/storage/query"
)

// Shell is an interactive session bound to one exported file.
type Shell struct {
	svc      *query.Service
	path     string
	rowLimit int
}

// New creates a shell over the file at path.
func New(svc *query.Service, path string, rowLimit int) *Shell {
	return &Shell{svc: svc, path: path, rowLimit: rowLimit}
}

// Run attaches the file and enters the prompt loop. It returns when the
// user types exit or quit, or on EOF.
func (s *Shell) Run(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("interactive shell requires a terminal")
	}

	if err := s.svc.AttachView(ctx, "bricks", s.path); err != nil {
		return err
	}

	fmt.Printf("attached %s as view 'bricks'; type SQL, 'summary', or 'exit'\n", s.path)

	p := prompt.New(
		func(in string) { s.execute(ctx, in) },
		s.complete,
		prompt.OptionTitle("amrcarve"),
		prompt.OptionPrefix("amrcarve> "),
	)
	p.Run()
	return nil
}

func (s *Shell) execute(ctx context.Context, in string) {
	in = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(in), ";"))
	if in == "" {
		return
	}

	switch strings.ToLower(in) {
	case "exit", "quit":
		os.Exit(0)
	case "summary":
		sum, err := s.svc.Summarize(ctx, s.path)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Printf("bricks=%d samples=%d left=%v right=%v\n",
			sum.Bricks, sum.Samples, sum.LeftEdge, sum.RightEdge)
		return
	}

	columns, rows, err := s.svc.ExecuteSQL(ctx, in)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	s.printRows(columns, rows)
}

func (s *Shell) printRows(columns []string, rows []map[string]interface{}) {
	fmt.Println(strings.Join(columns, "\t"))
	for i, row := range rows {
		if i >= s.rowLimit {
			fmt.Printf("... (%d rows truncated)\n", len(rows)-s.rowLimit)
			return
		}
		parts := make([]string, len(columns))
		for j, col := range columns {
			parts[j] = fmt.Sprintf("%v", row[col])
		}
		fmt.Println(strings.Join(parts, "\t"))
	}
	fmt.Printf("(%d rows)\n", len(rows))
}

var keywords = []prompt.Suggest{
	{Text: "SELECT", Description: "SQL query"},
	{Text: "FROM", Description: ""},
	{Text: "WHERE", Description: ""},
	{Text: "GROUP BY", Description: ""},
	{Text: "ORDER BY", Description: ""},
	{Text: "LIMIT", Description: ""},
	{Text: "bricks", Description: "exported partition view"},
	{Text: "summary", Description: "collection summary"},
	{Text: "exit", Description: "leave the shell"},
}

var columns = []prompt.Suggest{
	{Text: "left_x"}, {Text: "left_y"}, {Text: "left_z"},
	{Text: "right_x"}, {Text: "right_y"}, {Text: "right_z"},
	{Text: "dims_x"}, {Text: "dims_y"}, {Text: "dims_z"},
	{Text: "data", Description: "flattened vertex samples"},
}

func (s *Shell) complete(d prompt.Document) []prompt.Suggest {
	word := d.GetWordBeforeCursor()
	if word == "" {
		return nil
	}

	all := make([]prompt.Suggest, 0, len(keywords)+len(columns))
	all = append(all, keywords...)
	all = append(all, columns...)
	sort.Slice(all, func(i, j int) bool { return all[i].Text < all[j].Text })

	return prompt.FilterHasPrefix(all, word, true)
}
