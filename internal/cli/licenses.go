package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// datetimeLayouts are tried in order; the last one matches what an HTML
// datetime-local input produces.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseExpires accepts epoch milliseconds or a date-time. Date-times without
// a zone are read in loc.
func parseExpires(s string, loc *time.Location) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("invalid expiry %q: want epoch milliseconds or a date-time like 2026-01-31T18:00", s)
}

func formatExpires(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func newLicensesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "licenses",
		Aliases: []string{"license", "lic"},
		Short:   "Manage issued licenses",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every license held by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := a.client().ListLicenses(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tHOST\tEXPIRES")
			now := time.Now().UnixMilli()
			for _, l := range all {
				exp := formatExpires(l.Expires)
				if l.Expires < now {
					exp += " (expired)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Key, l.Host, exp)
			}
			return tw.Flush()
		},
	}
	list.Flags().Bool("json", false, "print raw JSON")

	create := &cobra.Command{
		Use:   "create",
		Short: "Issue a new license bound to a host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			host, _ := cmd.Flags().GetString("host")
			rawExpires, _ := cmd.Flags().GetString("expires")

			expires, err := parseExpires(rawExpires, time.Local)
			if err != nil {
				return err
			}

			lic, err := a.client().CreateLicense(cmd.Context(), host, expires)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", lic.Key, lic.Host, formatExpires(lic.Expires))
			return nil
		},
	}
	create.Flags().String("host", "", "host the license is bound to")
	create.Flags().String("expires", "", "expiry as epoch ms or date-time (default: server default)")
	_ = create.MarkFlagRequired("host")

	del := &cobra.Command{
		Use:     "delete KEY",
		Aliases: []string{"rm", "revoke"},
		Short:   "Revoke a license",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client().DeleteLicense(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, create, del)
	return cmd
}
