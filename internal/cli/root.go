package cli

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cheetahbyte/licensemgr/internal/client"
)

const defaultServer = "http://localhost:8004"

type app struct {
	cfgFile string
	v       *viper.Viper
}

func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "licensemgr",
		Short:         "licensemgr issues and validates host-bound license keys",
		Long:          `A small license server plus the admin commands that talk to it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.licensemgr.yaml)")
	root.PersistentFlags().String("server", defaultServer, "license server base URL")
	root.PersistentFlags().String("token", "", "admin bearer token")
	_ = a.v.BindPFlag("server", root.PersistentFlags().Lookup("server"))
	_ = a.v.BindPFlag("token", root.PersistentFlags().Lookup("token"))

	root.AddCommand(
		newServeCommand(),
		newLicensesCommand(a),
		newValidateCommand(a),
		newTokenCommand(a),
		newHashPasswordCommand(),
	)

	return root
}

func (a *app) initConfig() error {
	a.v.SetDefault("server", defaultServer)
	_ = a.v.BindEnv("server", "LICENSEMGR_SERVER")
	_ = a.v.BindEnv("token", "LICENSEMGR_TOKEN")

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		a.v.AddConfigPath(home)
		a.v.AddConfigPath(path.Join(home, ".licensemgr"))
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".licensemgr")
	}

	// A missing default config file is fine; an explicit one must load.
	if err := a.v.ReadInConfig(); err != nil && a.cfgFile != "" {
		return fmt.Errorf("read config %s: %w", a.cfgFile, err)
	}
	return nil
}

func (a *app) client() *client.Client {
	return client.New(a.v.GetString("server"), client.WithToken(a.v.GetString("token")))
}
