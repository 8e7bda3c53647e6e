package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/ledgerchat/pkg/api"
	"github.com/dmitrymomot/ledgerchat/pkg/config"
	"github.com/dmitrymomot/ledgerchat/pkg/environment"
	"github.com/dmitrymomot/ledgerchat/pkg/fetch"
	"github.com/dmitrymomot/ledgerchat/pkg/mirror"
	"github.com/dmitrymomot/ledgerchat/pkg/redis"
)

// Check states.
const (
	checkOK      = "ok"
	checkWarning = "warning"
	checkError   = "error"
	checkSkipped = "skipped"
)

var errUnhealthy = errors.New("one or more checks failed")

type doctorCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type doctorReport struct {
	Environment string        `json:"environment"`
	Checks      []doctorCheck `json:"checks"`
	Healthy     bool          `json:"healthy"`
}

func (r *doctorReport) add(name string, err error) {
	c := doctorCheck{Name: name, Status: checkOK}
	if err != nil {
		c.Status, c.Message = checkError, err.Error()
	}
	r.Checks = append(r.Checks, c)
}

func (r *doctorReport) note(name, status, message string) {
	r.Checks = append(r.Checks, doctorCheck{Name: name, Status: status, Message: message})
}

func newDoctorCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and backends",
		Long: `Check that the API configuration loads, that Redis answers when
FLAGS_REDIS_URL is set and that FLAGS_SECRET is a valid key. Exits with an
error when any check fails.

Examples:
  ledgerchat doctor
  ledgerchat doctor -o yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := begin(cmd)
			if err != nil {
				return err
			}
			report := doctorReport{Environment: string(environment.FromContext(ctx))}

			_, err = fetch.LoadConfig()
			report.add("api_roots", err)
			_, err = api.LoadConfig()
			report.add("query_config", err)

			var redisCfg redis.Config
			switch err := config.Load(&redisCfg); {
			case err != nil:
				report.add("redis", err)
			case !redisCfg.Enabled():
				report.note("redis", checkSkipped, "FLAGS_REDIS_URL is not set, flags stay in memory")
			default:
				client, err := redis.Connect(ctx, redisCfg)
				if err == nil {
					err = redis.Healthcheck(client, mirror.NewRedisFlags(client, redisCfg.KeyPrefix, s.namespace).Key())(ctx)
					_ = client.Close()
				}
				report.add("redis", err)
			}

			var flagsCfg flagsConfig
			switch err := config.Load(&flagsCfg); {
			case err != nil:
				report.add("flags_secret", err)
			case flagsCfg.Secret == "" && environment.IsProduction(ctx):
				report.note("flags_secret", checkWarning, "FLAGS_SECRET is not set, auth_token is stored in plain text")
			case flagsCfg.Secret == "":
				report.note("flags_secret", checkSkipped, "FLAGS_SECRET is not set")
			default:
				_, err := newSealer(flagsCfg.Secret, s.namespace)
				report.add("flags_secret", err)
			}

			report.Healthy = true
			for _, c := range report.Checks {
				if c.Status == checkError {
					report.Healthy = false
				}
			}
			if err := printResult(cmd.OutOrStdout(), s.output, report); err != nil {
				return err
			}
			if !report.Healthy {
				return errUnhealthy
			}
			return nil
		},
	}
}
