package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"topnsplit/internal/config"
)

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration of a run without reading the input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			issues := config.ValidateJob(*a.job)
			if _, err := a.job.Selection(cmd.Context()); err != nil {
				issues = append(issues, config.Issue{
					Severity: config.SeverityError,
					Path:     "attributes_file",
					Message:  errors.Unwrap(err).Error(),
				})
			}
			for _, iss := range issues {
				fmt.Fprintln(out, iss.Error())
			}
			if config.HasErrors(issues) {
				return fmt.Errorf("configuration is invalid")
			}
			fmt.Fprintln(out, "configuration is valid")
			return nil
		},
	}
	addJobFlags(cmd.Flags())
	return cmd
}
