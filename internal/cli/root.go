package cli

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/ledgerchat/pkg/mirror"
)

// Option customizes the command tree. Production code passes none.
type Option func(*settings)

type settings struct {
	flags     mirror.FlagStore
	transport http.RoundTripper
	namespace string
	output    string
}

// WithFlagStore replaces the Redis or in-memory flag backend.
func WithFlagStore(fs mirror.FlagStore) Option {
	return func(s *settings) {
		s.flags = fs
	}
}

// WithTransport sets the HTTP transport used for API calls.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *settings) {
		s.transport = rt
	}
}

// NewRootCommand builds the ledgerchat command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}

	root := &cobra.Command{
		Use:   "ledgerchat",
		Short: "Operate a ledgerchat session from the terminal",
		Long: `ledgerchat drives one client session against the bookkeeping API.

Each run is a fresh session: it signs in with the given token, mirrors the
session into the durable flags and prints what the API returned as JSON.

Durable flags live in Redis when FLAGS_REDIS_URL is set and in memory
otherwise. API roots come from API_DEV_ROOT and API_CHAT_ROOT.

Examples:
  ledgerchat whoami --token $TOKEN
  ledgerchat reports --token $TOKEN --company c-1
  ledgerchat flags --namespace tab-1 -o yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&s.namespace, "namespace", "cli", "durable flag namespace (device or tab id)")
	root.PersistentFlags().StringVarP(&s.output, "output", "o", outputJSON, "output format: json or yaml")

	root.AddCommand(
		newWhoamiCommand(s),
		newReportsCommand(s),
		newFlagsCommand(s),
		newLogoutCommand(s),
		newDoctorCommand(s),
	)
	return root
}

// ExecuteContext runs the command tree with os.Args.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
