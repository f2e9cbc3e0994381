package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/araddon/dateparse"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/meghashyamc/whereis/logger"
	"github.com/meghashyamc/whereis/services/search"
	"github.com/spf13/cobra"
)

type findOptions struct {
	location       string
	more           []string
	ext            string
	depth          int
	limit          int
	strict         bool
	ignoreCase     bool
	hidden         bool
	minSize        string
	maxSize        string
	size           string
	modifiedAfter  string
	modifiedBefore string
	createdAfter   string
	createdBefore  string
	rank           string
	verbose        bool
}

func newFindCmd() *cobra.Command {
	opts := &findOptions{}

	cmd := &cobra.Command{
		Use:   "find [input]",
		Short: "Search for files whose names match input",
		Long: `Search for files whose names match input, a regular expression.

Without input every file matches. Paths are printed as they are found
unless --rank is given, in which case results are collected and sorted by
how similar their file names are to the rank query.

Examples:
  whereis find report --ext txt --strict
  whereis find --ext log --min-size 10M --modified-after "2024-01-01"
  whereis find config -l ~/src --more /etc --depth 3 --rank config`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := opts.query(cmd, args)
			if err != nil {
				return err
			}

			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			log, err := logger.NewWithConfig(logger.Config{Level: level})
			if err != nil {
				return err
			}

			service, err := search.New(log, 0)
			if err != nil {
				return err
			}

			return runFind(cmd, service, query, opts.rank)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.location, "location", "l", "", "Directory to search (default current directory)")
	flags.StringSliceVar(&opts.more, "more", nil, "Additional directories to search")
	flags.StringVarP(&opts.ext, "ext", "e", "", "Only match files with this extension")
	flags.IntVarP(&opts.depth, "depth", "d", -1, "Maximum directory depth; 1 searches only files directly in the location, negative is unlimited")
	flags.IntVarP(&opts.limit, "limit", "n", 0, "Stop after this many results")
	flags.BoolVarP(&opts.strict, "strict", "s", false, "Require the extension to follow the input immediately")
	flags.BoolVarP(&opts.ignoreCase, "ignore-case", "i", false, "Match names case-insensitively")
	flags.BoolVarP(&opts.hidden, "hidden", "H", false, "Include hidden files and directories")
	flags.StringVar(&opts.minSize, "min-size", "", "Only files larger than this size, e.g. 10k or 1.5MB")
	flags.StringVar(&opts.maxSize, "max-size", "", "Only files smaller than this size")
	flags.StringVar(&opts.size, "size", "", "Only files of exactly this size")
	flags.StringVar(&opts.modifiedAfter, "modified-after", "", "Only files modified after this time")
	flags.StringVar(&opts.modifiedBefore, "modified-before", "", "Only files modified before this time")
	flags.StringVar(&opts.createdAfter, "created-after", "", "Only files created after this time")
	flags.StringVar(&opts.createdBefore, "created-before", "", "Only files created before this time")
	flags.StringVar(&opts.rank, "rank", "", "Sort results by similarity of their names to this text")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	return cmd
}

func (o *findOptions) query(cmd *cobra.Command, args []string) (search.Query, error) {
	query := search.Query{
		Location:      o.location,
		MoreLocations: o.more,
		Ext:           o.ext,
		Strict:        o.strict,
		IgnoreCase:    o.ignoreCase,
		Hidden:        o.hidden,
		MinSize:       o.minSize,
		MaxSize:       o.maxSize,
		Size:          o.size,
		Rank:          o.rank,
	}
	if len(args) == 1 {
		query.Input = args[0]
	}
	if cmd.Flags().Changed("depth") {
		depth := o.depth
		query.Depth = &depth
	}
	if cmd.Flags().Changed("limit") {
		if o.limit < 0 {
			return search.Query{}, fmt.Errorf("invalid limit %d", o.limit)
		}
		limit := o.limit
		query.Limit = &limit
	}

	times := []struct {
		flag   string
		text   string
		target **time.Time
	}{
		{"modified-after", o.modifiedAfter, &query.ModifiedAfter},
		{"modified-before", o.modifiedBefore, &query.ModifiedBefore},
		{"created-after", o.createdAfter, &query.CreatedAfter},
		{"created-before", o.createdBefore, &query.CreatedBefore},
	}
	for _, t := range times {
		if t.text == "" {
			continue
		}
		parsed, err := dateparse.ParseLocal(t.text)
		if err != nil {
			return search.Query{}, fmt.Errorf("invalid --%s: %w", t.flag, err)
		}
		*t.target = &parsed
	}

	return query, nil
}

func runFind(cmd *cobra.Command, service *search.Service, query search.Query, rank string) error {
	printer := newPathPrinter(cmd.OutOrStdout())

	if rank == "" {
		err := service.Stream(cmd.Context(), query, printer.print)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	results, err := service.Run(cmd.Context(), query)
	if err != nil {
		return err
	}
	for _, path := range results {
		if !printer.print(path) {
			break
		}
	}

	return nil
}

// pathPrinter writes one path per line, highlighting the file name when
// writing to a terminal.
type pathPrinter struct {
	out  io.Writer
	name *color.Color
}

func newPathPrinter(out io.Writer) *pathPrinter {
	name := color.New(color.FgGreen, color.Bold)
	if !isTerminal(out) {
		name.DisableColor()
	} else {
		name.EnableColor()
	}

	return &pathPrinter{out: out, name: name}
}

func (p *pathPrinter) print(path string) bool {
	dir, file := filepath.Split(path)
	_, err := fmt.Fprintf(p.out, "%s%s\n", dir, p.name.Sprint(file))
	return err == nil
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
