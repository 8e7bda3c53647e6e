package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/ledgerchat/pkg/logger"
	"github.com/dmitrymomot/ledgerchat/pkg/requestid"
	"github.com/dmitrymomot/ledgerchat/pkg/store"
)

type whoamiOutput struct {
	RequestID string      `json:"request_id"`
	User      *store.User `json:"user"`
	Flags     flagsOutput `json:"flags"`
}

func newWhoamiCommand(s *settings) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Sign in with a token and print the profile",
		Long: `Sign in with a bearer token, load users/me and print the profile together
with the durable flags the sign-in produced.

Examples:
  ledgerchat whoami --token $TOKEN`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if token == "" {
				return errors.New("--token is required")
			}
			ctx, log, err := begin(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(ctx, log, s)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.close()) }()

			user, err := a.svc.SignIn(ctx, token)
			if err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "signed in", logger.Component("cli"), logger.UserID(user.ID))

			flags, err := readFlags(ctx, a.flags)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), s.output, whoamiOutput{RequestID: requestid.FromContext(ctx), User: user, Flags: flags})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token of the session")
	return cmd
}
