package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/bobinette/atelier/billing"
	"github.com/bobinette/atelier/clients"
	"github.com/bobinette/atelier/clients/auth"
	projectsclient "github.com/bobinette/atelier/clients/projects"
	"github.com/bobinette/atelier/clients/subscription"
	"github.com/bobinette/atelier/errors"
	"github.com/bobinette/atelier/log"
	"github.com/bobinette/atelier/session"
	"github.com/bobinette/atelier/session/bolt"
	"github.com/bobinette/atelier/session/inmem"
)

type Configuration struct {
	App struct {
		URL string `toml:"url"`
	} `toml:"app"`
	API struct {
		URL     string   `toml:"url"`
		Timeout duration `toml:"timeout"`
	} `toml:"api"`
	Session struct {
		Store      string `toml:"store"`
		EntryPoint string `toml:"entry_point"`
	} `toml:"session"`
	Billing struct {
		Capacity int64 `toml:"capacity"`
	} `toml:"billing"`
}

// duration reads "30s" style values.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func defaultConfiguration() Configuration {
	var cfg Configuration
	cfg.API.URL = "http://localhost:3000"
	cfg.API.Timeout = duration{session.DefaultTimeout}
	cfg.Session.Store = bolt.DefaultPath()
	cfg.Session.EntryPoint = session.DefaultEntryPoint
	cfg.Billing.Capacity = billing.DefaultCapacity
	return cfg
}

var (
	// flags
	env        string
	configFile string
	ephemeral  bool

	// configuration
	config Configuration

	// logger
	logger log.Logger

	// drivers
	boltDriver *bolt.Driver

	// session
	manager *session.Manager

	// clients
	projectsClient     *projectsclient.Client
	subscriptionClient *subscription.Client
)

func init() {
	RootCmd.PersistentFlags().StringVar(&env, "env", "dev", "environment")
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "configuration file")
	RootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the session in memory only")
}

var RootCmd = cobra.Command{
	Use:           "atelier",
	Short:         "Manage your atelier projects from the command line",
	Long:          "Manage your atelier projects, their collaborators and your subscription from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = log.New(env)

		if configFile == "" {
			configFile = path.Join("configuration", fmt.Sprintf("config.%s.toml", env))
		}

		var err error
		config, err = loadConfiguration(configFile)
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}

		authClient, err := auth.NewClient(clients.Config{
			BaseURL: config.API.URL,
			Logger:  logger.WithField("client", "auth"),
			Timeout: config.API.Timeout.Duration,
		})
		if err != nil {
			return err
		}

		manager, err = session.NewManager(
			authClient,
			store,
			session.WithNavigator(session.NavigatorFunc(func(entryPoint string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Signed out. Run `atelier login` to sign in again (%s).\n", entryPoint)
			})),
			session.WithEntryPoint(config.Session.EntryPoint),
			session.WithTimeout(config.API.Timeout.Duration),
			session.WithLogger(logger.WithField("component", "session")),
		)
		if err != nil {
			return err
		}

		// Resource clients authenticate with the session
		httpClient := oauth2.NewClient(context.Background(), manager)

		projectsClient, err = projectsclient.NewClient(clients.Config{
			BaseURL:    config.API.URL,
			HTTPClient: httpClient,
			Logger:     logger.WithField("client", "projects"),
			Timeout:    config.API.Timeout.Duration,
		})
		if err != nil {
			return err
		}

		subscriptionClient, err = subscription.NewClient(clients.Config{
			BaseURL:    config.API.URL,
			HTTPClient: httpClient,
			Logger:     logger.WithField("client", "subscription"),
			Timeout:    config.API.Timeout.Duration,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if boltDriver != nil {
			if err := boltDriver.Close(); err != nil {
				logger.Errorf("could not close session store: %v", err)
			}
			boltDriver = nil
		}
	},
}

// loadConfiguration reads the configuration file on top of the defaults. A
// missing file is not an error.
func loadConfiguration(file string) (Configuration, error) {
	cfg := defaultConfiguration()

	if _, err := toml.DecodeFile(file, &cfg); err != nil {
		if !os.IsNotExist(err) {
			return cfg, errors.New("error reading configuration", errors.WithCause(err))
		}
		logger.Debugf("no configuration file at %s, using defaults", file)
	}

	if url := os.Getenv("ATELIER_API_URL"); url != "" {
		cfg.API.URL = url
	}
	// The web application is served next to the API unless told otherwise
	if cfg.App.URL == "" {
		cfg.App.URL = cfg.API.URL
	}
	return cfg, nil
}

func openStore() (session.Store, error) {
	if ephemeral || config.Session.Store == "memory" {
		return inmem.NewStore(), nil
	}

	// A failed command skips the post run
	if boltDriver != nil {
		boltDriver.Close()
	}

	boltDriver = &bolt.Driver{}
	if err := boltDriver.Open(config.Session.Store); err != nil {
		boltDriver = nil
		return nil, errors.New("could not open session store", errors.WithCause(err))
	}
	return bolt.NewStore(boltDriver), nil
}

func inheritPersistentPreRun(cmd *cobra.Command) {
	ppr := cmd.PersistentPreRunE
	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// Run parent persistent pre run
		if cmd.Parent() != nil && cmd.Parent().PersistentPreRunE != nil {
			if err := cmd.Parent().PersistentPreRunE(c, args); err != nil {
				return err
			}
		}

		// Run command persistent pre run
		if ppr != nil {
			return ppr(c, args)
		}
		return nil
	}
}

// requireSession is the persistent pre run of the commands calling
// authenticated endpoints.
func requireSession(cmd *cobra.Command, args []string) error {
	if !manager.State().Authenticated {
		return errors.New("not logged in, run `atelier login` first", errors.Unauthorized())
	}
	return nil
}
