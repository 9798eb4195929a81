package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	aggInput   inputFlags
	aggGroupBy []string
	aggValue   string
	aggType    string
	aggStats   bool
	aggEntries bool
	aggOutput  string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <file>",
	Short: "Group rows and reduce a numeric column per group",
	Long: `Group rows by one or more keys and reduce a numeric column per group.

Keys are given as name=column[:bucket] or column[:bucket]; bucket truncates a
date column to year, month, week or day. Supported aggregations: sum, mean,
median, min, max and raw (the grouped values unreduced).`,
	Example: `  plotloom aggregate sales.csv --group-by month=date:month --group-by region --value sales --agg sum
  plotloom aggregate sales.csv --group-by region --value sales --agg median --stats`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := aggInput.load(args[0])
		if err != nil {
			return err
		}
		var keys []analysis.GroupKey
		for _, spec := range splitList(aggGroupBy) {
			k, err := parseGroupKey(res, spec)
			if err != nil {
				return err
			}
			keys = append(keys, k)
		}
		opt := analysis.AggregateOptions{GroupBy: keys, ReturnStats: aggStats}
		if aggValue != "" {
			c, ok := res.Column(aggValue)
			if !ok {
				return fmt.Errorf("unknown --value column: %s", aggValue)
			}
			if !c.Numeric {
				return fmt.Errorf("--value column %s is %s, not numeric", c.Title, c.ColType)
			}
			opt.Value = analysis.ColumnValue(c.DataIndex)
		}
		typ := aggType
		if typ == "" && cfg != nil {
			typ = cfg.DefaultAggregation
		}
		if typ == "" {
			typ = string(analysis.AggSum)
		}
		opt.Type = analysis.ParseAggregationType(typ)

		groups, err := analysis.Aggregate(res.Rows, opt)
		if err != nil {
			return err
		}
		logger.Debug("aggregated", "groups", len(groups), "type", opt.Type, "keys", len(keys))
		if !aggEntries {
			for i := range groups {
				groups[i].Entries = nil
			}
		}
		return writeJSON(cmd, aggOutput, groups)
	},
}

// parseGroupKey reads "name=column[:bucket]" against the reformatted columns.
func parseGroupKey(res *analysis.Result, spec string) (analysis.GroupKey, error) {
	name, col, hasName := strings.Cut(spec, "=")
	if !hasName {
		col = name
	}
	var bucket analysis.TimeBucket
	if i := strings.LastIndex(col, ":"); i >= 0 {
		if b, err := analysis.ParseTimeBucket(col[i+1:]); err == nil && b != analysis.BucketNone {
			bucket, col = b, col[:i]
		}
	}
	c, ok := res.Column(strings.TrimSpace(col))
	if !ok {
		return analysis.GroupKey{}, fmt.Errorf("unknown --group-by column: %s", col)
	}
	if bucket != analysis.BucketNone && !c.IsDate {
		return analysis.GroupKey{}, fmt.Errorf("--group-by %s: %s bucket needs a date column, %s is %s", spec, bucket, c.Title, c.ColType)
	}
	if !hasName {
		name = c.DataIndex
	}
	return analysis.GroupKey{Name: strings.TrimSpace(name), Column: c.DataIndex, Bucket: bucket}, nil
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	aggInput.bind(aggregateCmd)
	aggregateCmd.Flags().StringSliceVar(&aggGroupBy, "group-by", nil, "group key name=column[:bucket] (repeatable)")
	aggregateCmd.Flags().StringVar(&aggValue, "value", "", "numeric column to reduce")
	aggregateCmd.Flags().StringVar(&aggType, "agg", "", "aggregation: sum|mean|median|min|max|raw (default from config)")
	aggregateCmd.Flags().BoolVar(&aggStats, "stats", false, "include descriptive statistics per group")
	aggregateCmd.Flags().BoolVar(&aggEntries, "entries", false, "include the grouped rows in the output")
	aggregateCmd.Flags().StringVarP(&aggOutput, "output", "o", "", "write JSON to this path instead of stdout")
}
