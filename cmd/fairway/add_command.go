package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fairway/internal/ipc"
	"fairway/internal/pipeline"
	"fairway/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "add <course name>",
		Short: "Queue a golf course for flythrough generation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseName := strings.TrimSpace(strings.Join(args, " "))
			if courseName == "" {
				return fmt.Errorf("course name is required")
			}

			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				if client != nil {
					resp, err := client.QueueAdd(courseName, seed)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Queued %q as item #%d\n", courseName, resp.Item.ID)
					return nil
				}

				itemSeed := seed
				if itemSeed == 0 {
					itemSeed = time.Now().UnixNano()
				}
				request := pipeline.CourseRequest{CourseName: courseName, Seed: itemSeed}
				encoded, err := request.Encode()
				if err != nil {
					return fmt.Errorf("encode course request: %w", err)
				}
				item, err := store.NewCourse(cmd.Context(), courseName, itemSeed, encoded)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %q as item #%d\n", courseName, item.ID)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Deterministic seed for synthesized layouts (0 picks one)")
	return cmd
}
