package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lass/internal/service"
	"lass/internal/store"
)

func newServiceCommand(ctx *commandContext) *cobra.Command {
	var atFlag string

	cmd := &cobra.Command{
		Use:   "service",
		Short: "Report the station's service state",
		Long:  "Reports the station's service type. With --at only the term calendar is consulted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			now, err := ctx.now()
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				inspector := service.NewInspector(st, cfg.Service, now, ctx.ensureLogger())

				var status service.Status
				if strings.TrimSpace(atFlag) != "" {
					at, err := ctx.instant(atFlag)
					if err != nil {
						return err
					}
					status, err = inspector.At(cmd.Context(), at)
					if err != nil {
						return err
					}
				} else {
					status, err = inspector.Current(cmd.Context())
					if err != nil {
						return err
					}
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, status)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Service: %s\n", status.Type)
				if status.Overridden {
					fmt.Fprintln(out, "Source: manual override")
				} else if status.Term != nil {
					fmt.Fprintf(out, "Term: %s (%s to %s)\n", status.Term.Name,
						status.Term.Start.Format("2006-01-02"), status.Term.Finish.Format("2006-01-02"))
				} else {
					fmt.Fprintln(out, "Term: none on record")
				}
				fmt.Fprintf(out, "Listening: %s\n", yesNo(status.Type.CanListen()))
				if status.Maintenance != "" {
					fmt.Fprintf(out, "Maintenance: %s\n", status.Maintenance)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&atFlag, "at", "", "Evaluate at this RFC 3339 instant instead of now")
	return cmd
}
