package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLearnerCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learner",
		Short: "Manage learners",
	}

	var (
		code        string
		name        string
		maxRotation int
		minPool     int
	)

	create := &cobra.Command{
		Use:   "create",
		Short: "Register a learner",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.openRuntime(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			profile, err := rt.service.CreateLearner(cmd.Context(), code, name, maxRotation, minPool)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created learner %s (%s) rotation=%d pool=%d\n",
				profile.Code, profile.ID, profile.MaxRotationSize, profile.MinPoolSize)
			return nil
		},
	}
	create.Flags().StringVar(&code, "code", "", "external learner code used to sign in")
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().IntVar(&maxRotation, "max-rotation", 0, "maximum items in rotation (0 uses the default)")
	create.Flags().IntVar(&minPool, "min-pool", 0, "minimum items in rotation (0 uses the default)")
	_ = create.MarkFlagRequired("code")

	cmd.AddCommand(create)
	return cmd
}
