package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lass/internal/credits"
	"lass/internal/metadata"
	"lass/internal/model"
	"lass/internal/store"
)

func newMetaCommand(ctx *commandContext) *cobra.Command {
	var strand, atFlag string
	var keys []string

	cmd := &cobra.Command{
		Use:   "meta <kind> <id>...",
		Short: "Resolve the metadata of one or more subjects",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subjects, err := parseSubjects(args)
			if err != nil {
				return err
			}
			at, err := ctx.instant(atFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				resolver := metadata.NewResolver(st, ctx.ensureLogger())
				resolved, err := resolver.Resolve(cmd.Context(), subjects, strand, keys, at)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resolved)
				}
				rows := [][]string{}
				for _, id := range sortedIDs(resolved) {
					values := resolved[id]
					names := make([]string, 0, len(values))
					for key := range values {
						names = append(names, key)
					}
					slices.Sort(names)
					for _, key := range names {
						rows = append(rows, []string{strconv.FormatInt(id, 10), key, strings.Join(values[key], "; ")})
					}
				}
				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintln(out, "No metadata")
					return nil
				}
				fmt.Fprintln(out, renderTable(out, []string{"ID", "Key", "Values"}, rows, []columnAlignment{alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&strand, "strand", model.StrandText, "Metadata strand (text or image)")
	cmd.Flags().StringSliceVarP(&keys, "key", "k", nil, "Metadata keys to resolve (default all)")
	cmd.Flags().StringVar(&atFlag, "at", "", "Resolve as of this RFC 3339 instant")
	return cmd
}

func newCreditsCommand(ctx *commandContext) *cobra.Command {
	var atFlag string
	var types []string

	cmd := &cobra.Command{
		Use:   "credits <kind> <id>...",
		Short: "List the people credited on one or more subjects",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subjects, err := parseSubjects(args)
			if err != nil {
				return err
			}
			at, err := ctx.instant(atFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				resolver := credits.NewResolver(st, ctx.ensureLogger())
				resolved, err := resolver.Resolve(cmd.Context(), subjects, types, at)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resolved)
				}
				rows := [][]string{}
				for _, id := range sortedIDs(resolved) {
					byType := resolved[id]
					names := make([]string, 0, len(byType))
					for name := range byType {
						names = append(names, name)
					}
					slices.Sort(names)
					for _, name := range names {
						for _, credited := range byType[name] {
							rows = append(rows, []string{
								strconv.FormatInt(id, 10), name, credited.Person.FullName(), yesNo(credited.InByline),
							})
						}
					}
				}
				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintln(out, "No credits")
					return nil
				}
				fmt.Fprintln(out, renderTable(out, []string{"ID", "Role", "Person", "Byline"}, rows, []columnAlignment{alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Credit types to list (default all)")
	cmd.Flags().StringVar(&atFlag, "at", "", "Resolve as of this RFC 3339 instant")
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var kindFlag, order, atFlag string
	var keys []string

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Find subjects whose current text metadata contains a term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			at, err := ctx.instant(atFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				searchKeys := keys
				if len(searchKeys) == 0 {
					searchable, err := st.SearchableKeys(cmd.Context())
					if err != nil {
						return err
					}
					for _, key := range searchable {
						searchKeys = append(searchKeys, key.Name)
					}
				}
				hits, err := st.Search(cmd.Context(), kind, args[0], searchKeys, at, order)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					if hits == nil {
						hits = []store.SearchHit{}
					}
					return writeJSON(cmd, hits)
				}
				out := cmd.OutOrStdout()
				if len(hits) == 0 {
					fmt.Fprintln(out, "No matches")
					return nil
				}
				rows := make([][]string, 0, len(hits))
				for _, hit := range hits {
					rows = append(rows, []string{hit.Subject.String(), hit.Key, hit.Value})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Subject", "Key", "Match"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", string(model.KindShow), "Subject kind to search")
	cmd.Flags().StringSliceVarP(&keys, "key", "k", nil, "Keys to search (default every searchable key)")
	cmd.Flags().StringVar(&order, "order", store.OrderAlpha, "Result order: alpha or recent")
	cmd.Flags().StringVar(&atFlag, "at", "", "Search metadata active at this RFC 3339 instant")
	return cmd
}

// instant parses an RFC 3339 flag value, defaulting to the current time.
func (c *commandContext) instant(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		now, err := c.now()
		if err != nil {
			return time.Time{}, err
		}
		return now(), nil
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse instant %q: %w", value, err)
	}
	return at, nil
}

func parseSubjects(args []string) ([]model.Subject, error) {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return nil, err
	}
	subjects := make([]model.Subject, 0, len(args)-1)
	for _, raw := range args[1:] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid %s id %q", kind, raw)
		}
		subjects = append(subjects, model.Ref{Kind: kind, ID: id})
	}
	return subjects, nil
}

func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
