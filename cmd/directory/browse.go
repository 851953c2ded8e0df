package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/gartstein/bawsala/internal/directory/controller"
	"github.com/gartstein/bawsala/internal/directory/filter"
	"github.com/gartstein/bawsala/internal/directory/models"
	"github.com/gartstein/bawsala/internal/directory/sorting"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var browseOpts struct {
	query       string
	tags        []string
	industry    string
	subindustry string
	sort        string
	dir         string
	lang        string
	interactive bool
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the directory from the terminal",
	Long: `Prints the directory view for the given query, filters, sort and locale.

With --interactive, reads commands from stdin; any other line is a search:
  :tag NAME              toggle a tag
  :industry KEY          select an industry (empty clears)
  :sub KEY               select a subindustry
  :sort name|founding_year [asc|desc]
  :lang                  switch between Arabic and English
  :clear                 clear all filters
  :quit`,
	RunE: runBrowse,
}

func init() {
	f := browseCmd.Flags()
	f.StringVarP(&browseOpts.query, "query", "q", "", "free-text search")
	f.StringSliceVar(&browseOpts.tags, "tag", nil, "required tags (repeatable or comma separated)")
	f.StringVar(&browseOpts.industry, "industry", "", "industry key")
	f.StringVar(&browseOpts.subindustry, "subindustry", "", "subindustry key (requires --industry)")
	f.StringVar(&browseOpts.sort, "sort", "name", "sort key: name or founding_year")
	f.StringVar(&browseOpts.dir, "dir", "", "sort direction: asc or desc")
	f.StringVar(&browseOpts.lang, "lang", "ar", "display locale: ar or en")
	f.BoolVarP(&browseOpts.interactive, "interactive", "i", false, "read commands from stdin")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	source, closeSource, err := openSource(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	producer, closeProducer, err := newProducer(&Config{}, logger)
	if err != nil {
		return err
	}
	defer closeProducer()

	svc := controller.NewDirectoryService(source, producer, logger)
	if err := svc.Load(ctx); err != nil {
		logger.Warn("Catalog unavailable", zap.Error(err))
	}

	state, err := browseState()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !browseOpts.interactive {
		printView(out, svc.View(ctx, state))
		return nil
	}
	return interact(ctx, svc, state, cmd.InOrStdin(), out)
}

func browseState() (controller.ViewState, error) {
	locale, err := models.ParseLocale(browseOpts.lang)
	if err != nil {
		return controller.ViewState{}, err
	}
	order, err := sorting.ParseOrder(browseOpts.sort, browseOpts.dir)
	if err != nil {
		return controller.ViewState{}, err
	}
	if browseOpts.subindustry != "" && browseOpts.industry == "" {
		return controller.ViewState{}, fmt.Errorf("--subindustry requires --industry")
	}
	sel := filter.Selection{}.WithTags(browseOpts.tags...).SelectIndustry(browseOpts.industry)
	if browseOpts.subindustry != "" {
		sel = sel.SelectSubindustry(browseOpts.subindustry)
	}
	return controller.ViewState{
		Query:   browseOpts.query,
		Filters: sel,
		Order:   order,
		Locale:  locale,
	}, nil
}

// interact drives a Session from line commands until EOF or :quit.
func interact(ctx context.Context, svc *controller.DirectoryService, state controller.ViewState, in io.Reader, out io.Writer) error {
	session := controller.NewSession(svc, cfg.debounce(), logger)
	defer session.Close()

	var mu sync.Mutex
	session.OnChange(func(v controller.View) {
		mu.Lock()
		defer mu.Unlock()
		printView(out, v)
	})

	session.SetOrder(state.Order)
	if state.Locale != models.DefaultLocale {
		session.ToggleLocale()
	}
	for _, tag := range state.Filters.Tags {
		session.ToggleTag(tag)
	}
	if state.Filters.Industry != "" {
		session.SelectIndustry(state.Filters.Industry)
	}
	if state.Filters.Subindustry != "" {
		session.SelectSubindustry(state.Filters.Subindustry)
	}
	if state.Query != "" {
		session.Type(state.Query)
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if quit := dispatch(session, scanner.Text(), out); quit {
			return nil
		}
	}
	return scanner.Err()
}

// dispatch applies one command line to session and reports whether to quit.
func dispatch(session *controller.Session, line string, out io.Writer) bool {
	if !strings.HasPrefix(line, ":") {
		session.Type(line)
		return false
	}
	fields := strings.Fields(line)
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":tag":
		session.ToggleTag(arg)
	case ":industry":
		session.SelectIndustry(arg)
	case ":sub":
		session.SelectSubindustry(arg)
	case ":clear":
		session.ClearAll()
	case ":lang":
		session.ToggleLocale()
	case ":sort":
		var key, dir string
		if len(fields) > 1 {
			key = fields[1]
		}
		if len(fields) > 2 {
			dir = fields[2]
		}
		order, err := sorting.ParseOrder(key, dir)
		if err != nil {
			fmt.Fprintln(out, err)
			return false
		}
		session.SetOrder(order)
	default:
		fmt.Fprintf(out, "unknown command %s\n", fields[0])
	}
	return false
}

func printView(w io.Writer, v controller.View) {
	switch v.State {
	case controller.StatusError:
		fmt.Fprintf(w, "! %s\n", v.Error)
	case controller.StatusNoData, controller.StatusNoMatches:
		fmt.Fprintln(w, v.Message)
		return
	case controller.StatusSearchFailed:
		fmt.Fprintf(w, "! search failed: %s\n", v.Search.Error)
	}
	fmt.Fprintln(w, v.CountText)
	for i := range v.Companies {
		c := &v.Companies[i]
		year := "-"
		if y, ok := c.Year(); ok {
			year = strconv.Itoa(y)
		}
		fmt.Fprintf(w, "  %-28s %-24s %s  %s\n",
			c.Name(v.Locale), c.Industry.Label(v.Locale), year, c.Website)
	}
	if len(v.TagGroups.Top) > 0 {
		parts := make([]string, 0, len(v.TagGroups.Top)+1)
		for _, t := range v.TagGroups.Top {
			parts = append(parts, fmt.Sprintf("%s(%d)", t.Tag, t.Count))
		}
		if v.TagGroups.OtherCount > 0 {
			parts = append(parts, fmt.Sprintf("+%d", v.TagGroups.OtherCount))
		}
		fmt.Fprintf(w, "  tags: %s\n", strings.Join(parts, " "))
	}
}
