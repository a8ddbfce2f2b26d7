package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mayankbohra/remote-ticktick-mcp/internal/ticktick"
)

// Query filter names.
const (
	filterAll      = "all"
	filterToday    = "today"
	filterTomorrow = "tomorrow"
	filterDays     = "days"
	filterWeek     = "week"
	filterOverdue  = "overdue"
	filterPriority = "priority"
	filterSearch   = "search"
	filterEngaged  = "engaged"
	filterNext     = "next"
)

var filterNames = []string{
	filterAll, filterToday, filterTomorrow, filterDays, filterWeek, filterOverdue,
	filterPriority, filterSearch, filterEngaged, filterNext,
}

type queryOptions struct {
	filter   string
	days     int
	priority int
	search   string
}

// parseFilter maps the query flags to a task filter.
func parseFilter(o queryOptions) (ticktick.Filter, error) {
	switch strings.ToLower(o.filter) {
	case filterAll, "":
		return ticktick.All(), nil
	case filterToday:
		return ticktick.DueToday(), nil
	case filterTomorrow:
		return ticktick.DueInDays(1)
	case filterDays:
		return ticktick.DueInDays(o.days)
	case filterWeek:
		return ticktick.DueThisWeek(), nil
	case filterOverdue:
		return ticktick.Overdue(), nil
	case filterPriority:
		return ticktick.ByPriority(ticktick.Priority(o.priority))
	case filterSearch:
		return ticktick.Search(o.search)
	case filterEngaged:
		return ticktick.Engaged(), nil
	case filterNext:
		return ticktick.Next(), nil
	default:
		return ticktick.Filter{}, fmt.Errorf("unknown filter %q, must be one of: %s", o.filter, strings.Join(filterNames, ", "))
	}
}

func newQueryCmd(opts *globalOptions) *cobra.Command {
	var qo queryOptions
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Find tasks across all open projects",
		Long: `Find tasks across all open projects.

Filters:
  all        every undone task
  today      due today
  tomorrow   due tomorrow
  days       due in exactly --days days
  week       due within the next 7 days
  overdue    due date in the past
  priority   with exactly --priority
  search     --search term in title, content or checklist items
  engaged    high priority, or due today or overdue
  next       medium priority, or due tomorrow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(qo)
			if err != nil {
				writeError(cmd.OutOrStdout(), err)
				return &reportedError{err: err}
			}
			return runCommand(cmd, opts, "tasks.query", func(ctx context.Context, rt *runtime) (interface{}, error) {
				return rt.client.QueryTasks(ctx, filter)
			})
		},
	}
	cmd.Flags().StringVar(&qo.filter, "filter", filterAll, "Filter: "+strings.Join(filterNames, ", "))
	cmd.Flags().IntVar(&qo.days, "days", 0, "Days from today, for --filter days")
	cmd.Flags().IntVar(&qo.priority, "priority", 0, "Priority, for --filter priority")
	cmd.Flags().StringVar(&qo.search, "search", "", "Search term, for --filter search")
	return cmd
}
