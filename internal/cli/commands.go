package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

func (c *CLI) rolloverCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "rollover",
		Short: "Prepare a day's attendance records and close out the previous day",
		Long: `Creates a record for every rostered employee on the given day (weekend,
leave or pending) and marks the previous day's pending records absent.
Running it again for the same day changes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.application(cmd.Context())
			if err != nil {
				return err
			}

			day := time.Now().In(a.Config.Attendance.Location)
			if date != "" {
				d, err := timemath.ParseDate(date)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				day = time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, a.Config.Attendance.Location)
			}

			result, err := a.Attendance.RollOver(cmd.Context(), day)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", formatHeader("Rollover"), result.Date)
			fmt.Fprintf(out, "  created:       %s\n", formatOK(strconv.Itoa(result.Created)))
			fmt.Fprintf(out, "  marked absent: %s\n", formatWarn(strconv.Itoa(result.MarkedAbsent)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to roll over (YYYY-MM-DD), default today")
	return cmd
}

func (c *CLI) balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Inspect and adjust leave balances",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <employee-id>",
		Short: "Show every leave balance of an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			balances, err := a.Ledger.Balances(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(balances) == 0 {
				fmt.Fprintln(out, formatMuted("No leave balances for "+args[0]))
				return nil
			}
			fmt.Fprintf(out, "%s\n", formatHeader(fmt.Sprintf("%-18s %6s %6s %9s", "TYPE", "TOTAL", "USED", "REMAINING")))
			for _, b := range balances {
				fmt.Fprintf(out, "%-18s %6d %6d %9s\n", b.LeaveType.Label(), b.Total, b.Used, formatDays(b.Remaining()))
			}
			return nil
		},
	})

	cmd.AddCommand(c.adjustCmd("credit", "Add days to a leave balance"))
	cmd.AddCommand(c.adjustCmd("debit", "Consume days from a leave balance"))

	cmd.AddCommand(&cobra.Command{
		Use:   "history <employee-id> <leave-type>",
		Short: "List the ledger entries of one balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			leaveType, err := leave.ParseLeaveType(args[1])
			if err != nil {
				return err
			}
			a, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := a.Ledger.History(cmd.Context(), args[0], leaveType)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %-6s %3d  total=%d used=%d  %s\n",
					formatMuted(e.CreatedAt.Format(time.RFC3339)), e.Kind, e.Days, e.Total, e.Used, e.Reason)
			}
			return nil
		},
	})

	return cmd
}

func (c *CLI) adjustCmd(kind, short string) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   kind + " <employee-id> <leave-type> <days>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			leaveType, err := leave.ParseLeaveType(args[1])
			if err != nil {
				return err
			}
			days, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("days must be a whole number: %w", leave.ErrInvalidDays)
			}
			a, err := c.application(cmd.Context())
			if err != nil {
				return err
			}

			apply := a.Ledger.Credit
			if kind == "debit" {
				apply = a.Ledger.Debit
			}
			balance, err := apply(cmd.Context(), args[0], leaveType, days, reason)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s: %d days, remaining %s\n",
				formatOK(kind), args[0], leaveType.Label(), days, formatDays(balance.Remaining()))
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "manual adjustment", "Reason recorded in the ledger")
	return cmd
}

func (c *CLI) provisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision <employee-id>",
		Short: "Create the yearly allotment for every missing leave type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			created, err := a.Ledger.Provision(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(created) == 0 {
				fmt.Fprintln(out, formatMuted("All leave types already provisioned for "+args[0]))
				return nil
			}
			for _, b := range created {
				fmt.Fprintf(out, "%s %s %s days\n", formatOK("provisioned"), b.LeaveType.Label(), formatDays(b.Total))
			}
			return nil
		},
	}
}

func (c *CLI) tokenCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "token <employee-id>",
		Short: "Mint an access token for an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := jwt.ParseRole(role)
			if err != nil {
				return err
			}
			a, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			token, expiresAt, err := a.JWT.GenerateAccessToken(args[0], r)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintln(cmd.ErrOrStderr(), formatMuted("expires "+time.Unix(expiresAt, 0).Format(time.RFC3339)))
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(jwt.RoleEmployee), "Role claim: admin, hr or employee")
	return cmd
}
