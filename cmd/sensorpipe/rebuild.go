package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"liyu1981.xyz/sensor-pipeline/pkg/iot"
)

func rebuildLatestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-latest [devEui...]",
		Short: "Recompute the latest bay state of sensors from their event log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, core, closeCore, err := openCore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeCore()

			failed := 0
			for _, devEUI := range args {
				state, err := core.Event.RebuildLatest(cmd.Context(), devEUI)
				switch {
				case errors.Is(err, iot.ErrNotFound):
					fmt.Fprintf(cmd.OutOrStdout(), "%s: no events\n", devEUI)
				case err != nil:
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", devEUI, err)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "%s: lastSeen=%s confidence=%.2f\n",
						devEUI, state.LastSeen.Format("2006-01-02T15:04:05Z07:00"), state.Confidence)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d sensors failed", failed, len(args))
			}
			return nil
		},
	}
}
