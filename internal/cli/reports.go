package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/ledgerchat/pkg/api"
	"github.com/dmitrymomot/ledgerchat/pkg/logger"
	"github.com/dmitrymomot/ledgerchat/pkg/requestid"
	"github.com/dmitrymomot/ledgerchat/pkg/store"
)

type reportsOutput struct {
	RequestID string         `json:"request_id"`
	User      *store.User    `json:"user"`
	Company   *store.Company `json:"company"`
	Reports   []api.Report   `json:"reports"`
	Messages  []api.Message  `json:"messages,omitempty"`
	Flags     flagsOutput    `json:"flags"`
}

func newReportsCommand(s *settings) *cobra.Command {
	var token, companyID, threadID string

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Sign in, select a company and list its reports",
		Long: `Sign in with a bearer token, select one of the user's companies and load
its reports. The profile is refreshed at the same time; with --thread the
messages of that thread are loaded too.

Examples:
  ledgerchat reports --token $TOKEN --company c-1
  ledgerchat reports --token $TOKEN --company c-1 --thread t-9`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if token == "" {
				return errors.New("--token is required")
			}
			if companyID == "" {
				return errors.New("--company is required")
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

			if _, err := a.svc.SignIn(ctx, token); err != nil {
				return err
			}
			if err := a.store.Dispatch(ctx, store.SelectCompany{CompanyID: companyID}); err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "company selected", logger.Component("cli"), logger.CompanyID(companyID))

			out := reportsOutput{RequestID: requestid.FromContext(ctx)}

			reports := a.svc.Reports().Observe()
			defer reports.Close()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				user, err := a.svc.RefreshProfile(gctx)
				out.User = user
				return err
			})
			g.Go(func() error {
				list, err := settle(gctx, reports)
				out.Reports = list
				return err
			})
			if threadID != "" {
				messages := a.svc.ThreadMessages(threadID).Observe()
				defer messages.Close()
				g.Go(func() error {
					list, err := settle(gctx, messages)
					out.Messages = list
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out.Company = a.svc.CurrentSelectedCompany()
			if out.Flags, err = readFlags(ctx, a.flags); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), s.output, out)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token of the session")
	cmd.Flags().StringVar(&companyID, "company", "", "id of the company to select")
	cmd.Flags().StringVar(&threadID, "thread", "", "also load the messages of this thread")
	return cmd
}
