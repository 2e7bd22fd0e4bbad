package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"lass/internal/credits"
	"lass/internal/model"
	"lass/internal/schedule"
	"lass/internal/store"
	"lass/internal/timectx"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show the assembled broadcast schedule",
	}
	scheduleCmd.AddCommand(newScheduleWeekCommand(ctx))
	scheduleCmd.AddCommand(newScheduleDayCommand(ctx))
	scheduleCmd.AddCommand(newScheduleNextCommand(ctx))
	return scheduleCmd
}

func newScheduleWeekCommand(ctx *commandContext) *cobra.Command {
	var dateFlag, isoWeekFlag string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show a week of the schedule as a grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				asm, tc, err := ctx.assembler(st)
				if err != nil {
					return err
				}
				monday, err := weekStart(tc, dateFlag, isoWeekFlag)
				if err != nil {
					return err
				}
				sched := asm.Week(monday)
				rows, err := sched.Table(cmd.Context())
				if err != nil {
					return err
				}
				var days []timectx.Date
				for d := range sched.Days() {
					days = append(days, d)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, weekView(sched, days, rows))
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderGrid(cmd.OutOrStdout(), tc, days, rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Any date in the week to show (YYYY-MM-DD)")
	cmd.Flags().StringVar(&isoWeekFlag, "iso-week", "", "ISO week to show (YYYY-Www)")
	cmd.MarkFlagsMutuallyExclusive("date", "iso-week")
	return cmd
}

func newScheduleDayCommand(ctx *commandContext) *cobra.Command {
	var dateFlag, isoDayFlag string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "List one schedule day's timeslots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				asm, tc, err := ctx.assembler(st)
				if err != nil {
					return err
				}
				date, err := scheduleDay(tc, dateFlag, isoDayFlag)
				if err != nil {
					return err
				}
				slots, err := asm.Day(date).Timeslots(cmd.Context())
				if err != nil {
					return err
				}
				return writeTimeslots(cmd, ctx, tc, slots)
			})
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Schedule date to list (YYYY-MM-DD)")
	cmd.Flags().StringVar(&isoDayFlag, "iso-day", "", "ISO week date to list (YYYY-Www-D)")
	cmd.MarkFlagsMutuallyExclusive("date", "iso-day")
	return cmd
}

func newScheduleNextCommand(ctx *commandContext) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "next",
		Short: "List the timeslot on air now and the ones after it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			return ctx.withStore(func(st *store.Store) error {
				asm, tc, err := ctx.assembler(st)
				if err != nil {
					return err
				}
				slots, err := asm.Next(cmd.Context(), count)
				if err != nil {
					return err
				}
				return writeTimeslots(cmd, ctx, tc, slots)
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 5, "Number of timeslots to list")
	return cmd
}

func weekStart(tc *timectx.Context, dateFlag, isoWeekFlag string) (timectx.Date, error) {
	switch {
	case strings.TrimSpace(isoWeekFlag) != "":
		var year, week int
		if _, err := fmt.Sscanf(strings.TrimSpace(isoWeekFlag), "%d-W%d", &year, &week); err != nil {
			return timectx.Date{}, fmt.Errorf("parse --iso-week %q: want YYYY-Www", isoWeekFlag)
		}
		return timectx.ISOToGregorian(year, week, 1)
	case strings.TrimSpace(dateFlag) != "":
		date, err := timectx.ParseDate(strings.TrimSpace(dateFlag))
		if err != nil {
			return timectx.Date{}, err
		}
		return date.MondayOf(), nil
	default:
		return tc.ScheduleDateOf(tc.Now()).MondayOf(), nil
	}
}

func scheduleDay(tc *timectx.Context, dateFlag, isoDayFlag string) (timectx.Date, error) {
	switch {
	case strings.TrimSpace(isoDayFlag) != "":
		var year, week, day int
		if _, err := fmt.Sscanf(strings.TrimSpace(isoDayFlag), "%d-W%d-%d", &year, &week, &day); err != nil {
			return timectx.Date{}, fmt.Errorf("parse --iso-day %q: want YYYY-Www-D", isoDayFlag)
		}
		return timectx.ISOToGregorian(year, week, day)
	case strings.TrimSpace(dateFlag) != "":
		return timectx.ParseDate(strings.TrimSpace(dateFlag))
	default:
		return tc.ScheduleDateOf(tc.Now()), nil
	}
}

func writeTimeslots(cmd *cobra.Command, ctx *commandContext, tc *timectx.Context, slots []*model.Timeslot) error {
	if ctx.jsonOutput() {
		if slots == nil {
			slots = []*model.Timeslot{}
		}
		return writeJSON(cmd, slots)
	}
	out := cmd.OutOrStdout()
	if len(slots) == 0 {
		fmt.Fprintln(out, "No timeslots")
		return nil
	}
	rows := make([][]string, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, []string{
			tc.Localize(slot.Start).Format("Mon 02 Jan 15:04"),
			tc.Localize(slot.Finish()).Format("15:04"),
			slot.Title(),
			blockName(slot),
			strings.Join(credits.Names(slot.Byline), ", "),
		})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Start", "Finish", "Title", "Block", "With"}, rows, nil))
	return nil
}

func blockName(slot *model.Timeslot) string {
	if slot.Block == nil {
		return ""
	}
	return slot.Block.Name
}

// renderGrid draws the week table. A timeslot's label repeats down every row
// it spans and identical neighbours are merged, which reproduces the spans.
func renderGrid(w io.Writer, tc *timectx.Context, days []timectx.Date, rows []schedule.Row) string {
	tw := table.NewWriter()
	tw.SetStyle(tableStyle(w))

	header := table.Row{"Time"}
	for _, d := range days {
		header = append(header, d.Weekday().String()[:3]+" "+d.String())
	}
	tw.AppendHeader(header)

	columns := len(days)
	current := make([]string, columns)
	remaining := make([]int, columns)
	for _, row := range rows {
		r := table.Row{tc.Localize(row.Start).Format("15:04")}
		for col := 0; col < columns; col++ {
			var cell *schedule.Cell
			if col < len(row.Days) {
				cell = row.Days[col]
			}
			switch {
			case cell != nil:
				current[col] = cellLabel(tc, cell.Slot)
				remaining[col] = cell.Rows - 1
			case remaining[col] > 0:
				remaining[col]--
			default:
				current[col] = ""
			}
			r = append(r, current[col])
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for col := 0; col < columns; col++ {
		configs = append(configs, table.ColumnConfig{Number: col + 2, AutoMerge: true, WidthMax: 24})
	}
	tw.SetColumnConfigs(configs)
	tw.Style().Options.SeparateRows = true
	return tw.Render()
}

func cellLabel(tc *timectx.Context, slot *model.Timeslot) string {
	label := tc.Localize(slot.Start).Format("15:04") + " " + slot.Title()
	if names := credits.Names(slot.Byline); len(names) > 0 {
		label += "\nwith " + strings.Join(names, ", ")
	}
	return label
}

type weekJSON struct {
	Start  time.Time      `json:"start"`
	Finish time.Time      `json:"finish"`
	Days   []string       `json:"days"`
	Rows   []schedule.Row `json:"rows"`
}

func weekView(sched *schedule.Schedule, days []timectx.Date, rows []schedule.Row) weekJSON {
	view := weekJSON{Start: sched.Start(), Finish: sched.Finish(), Rows: rows}
	for _, d := range days {
		view.Days = append(view.Days, d.String())
	}
	return view
}
