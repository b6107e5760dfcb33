package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	allowedOrigins []string
	avatarCount    int
	bind           string
	port           int
	prefix         string
	profile        bool
	roomTimeout    time.Duration
	scoreBase      int
	scoreBonus     int
	sweepInterval  time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sweepInterval <= 0 {
		return fmt.Errorf("invalid sweep interval (must be positive): %s", c.sweepInterval)
	}
	if c.roomTimeout <= 0 {
		return fmt.Errorf("invalid room timeout (must be positive): %s", c.roomTimeout)
	}
	if c.scoreBase < 0 || c.scoreBonus < 0 {
		return fmt.Errorf("invalid scoring constants (must be non-negative): base %d, bonus %d", c.scoreBase, c.scoreBonus)
	}
	if c.avatarCount < 1 {
		return fmt.Errorf("invalid avatar count (must be at least 1): %d", c.avatarCount)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("QUIZBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "quizbox",
		Short:         "A realtime quiz and poll host, driven entirely over websockets.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringSliceVar(&cfg.allowedOrigins, "allowed-origins", nil, "origins allowed to open websocket connections, empty for same-origin only (env: QUIZBOX_ALLOWED_ORIGINS)")
	fs.IntVar(&cfg.avatarCount, "avatar-count", 12, "size of the avatar pool cycled through as players join (env: QUIZBOX_AVATAR_COUNT)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: QUIZBOX_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: QUIZBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: QUIZBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: QUIZBOX_PROFILE)")
	fs.DurationVar(&cfg.roomTimeout, "room-timeout", 2*time.Hour, "time before idle rooms are closed (env: QUIZBOX_ROOM_TIMEOUT)")
	fs.IntVar(&cfg.scoreBase, "score-base", 600, "points awarded for any correct answer (env: QUIZBOX_SCORE_BASE)")
	fs.IntVar(&cfg.scoreBonus, "score-bonus", 400, "additional points scaled by answer speed (env: QUIZBOX_SCORE_BONUS)")
	fs.DurationVar(&cfg.sweepInterval, "sweep-interval", 30*time.Minute, "how often idle rooms are swept (env: QUIZBOX_SWEEP_INTERVAL)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: QUIZBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: QUIZBOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: QUIZBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: QUIZBOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("quizbox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
