package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errLicenseRejected = errors.New("license rejected")

func newValidateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a license key against a host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, _ := cmd.Flags().GetString("license")
			host, _ := cmd.Flags().GetString("host")

			ok, msg, err := a.client().ValidateLicense(cmd.Context(), key, host)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), msg)
			if !ok {
				return errLicenseRejected
			}
			return nil
		},
	}
	cmd.Flags().String("license", "", "license key")
	cmd.Flags().String("host", "", "host to check the license against")
	_ = cmd.MarkFlagRequired("license")

	return cmd
}
