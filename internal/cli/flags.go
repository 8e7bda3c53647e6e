package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/ledgerchat/pkg/logger"
	"github.com/dmitrymomot/ledgerchat/pkg/mirror"
	"github.com/dmitrymomot/ledgerchat/pkg/store"
)

// flagsOutput reports presence only; the token value is never printed.
type flagsOutput struct {
	AuthToken          bool `json:"auth_token"`
	HasSelectedCompany bool `json:"has_selected_company"`
}

func readFlags(ctx context.Context, r mirror.FlagReader) (flagsOutput, error) {
	session, err := mirror.SessionActive(ctx, r)
	if err != nil {
		return flagsOutput{}, err
	}
	company, err := mirror.CompanySelected(ctx, r)
	if err != nil {
		return flagsOutput{}, err
	}
	return flagsOutput{AuthToken: session, HasSelectedCompany: company}, nil
}

func newFlagsCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "flags",
		Short: "Print the durable flags of a namespace",
		Long: `Print which durable flags are present in the given namespace. Only
meaningful with a shared backend such as Redis.

Examples:
  ledgerchat flags --namespace tab-1`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, log, err := begin(cmd)
			if err != nil {
				return err
			}
			backend, err := openFlags(ctx, s, log)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, backend.close()) }()

			out, err := readFlags(ctx, backend)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), s.output, out)
		},
	}
}

func newLogoutCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the durable flags of a namespace",
		Long: `Clear both durable flags of the given namespace, the same way a sign-out
of that client would.

Examples:
  ledgerchat logout --namespace tab-1`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, log, err := begin(cmd)
			if err != nil {
				return err
			}
			backend, err := openFlags(ctx, s, log)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, backend.close()) }()

			if err := mirror.New(backend, mirror.WithLogger(log)).Sync(ctx, &store.State{}); err != nil {
				return err
			}
			log.InfoContext(ctx, "durable flags cleared", logger.Component("cli"))

			out, err := readFlags(ctx, backend)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), s.output, out)
		},
	}
}
