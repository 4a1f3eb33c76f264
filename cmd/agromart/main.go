package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/lborres/agromart"
	redisadapter "github.com/lborres/agromart/adapters/redis"
	"github.com/lborres/agromart/adapters/rest"
	"github.com/lborres/agromart/pkg/config"
	"github.com/lborres/agromart/pkg/credstore"
	"github.com/lborres/agromart/pkg/logging"
)

// errReported means the failure was already written for the user
var errReported = errors.New("reported")

const usage = `usage: agromart [-api URL] <command> [flags]

commands:
  login            -email -password
  register         -email -username -password -confirm -name -phone -role
                   [-business-name -business-address -business-registration]
  logout
  home
  listings         [add -title -produce -quantity -price -harvest -expiry -farm -organic -grade -description]
  farms            [add -name -location -size -soil -irrigation -description]
  kyc              [status | submit -type -number -document -selfie [-business-registration -address]]
  admin            queue | review -id -decision -notes
`

func main() {
	apiURL := flag.String("api", "", "API base URL, including the /api/v1 prefix")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, _ := config.LoadClient()
	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}

	log, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, log, flag.Args()); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", agromart.UserMessage(err))
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Client, log *zap.Logger, args []string) error {
	credentials, err := credentialStore(cfg)
	if err != nil {
		return err
	}

	client, err := agromart.New(agromart.Config{
		API: rest.New(rest.Config{
			BaseURL: cfg.APIURL,
			Timeout: cfg.Timeout,
			Logger:  log.Named("rest"),
		}),
		Credentials: credentials,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	if _, err := client.Restore(ctx); err != nil {
		var invalid *agromart.SessionInvalidError
		if !errors.As(err, &invalid) {
			return err
		}
		fmt.Fprintln(os.Stderr, "Your session has expired. Please log in again.")
	}

	cmd := &command{client: client, out: os.Stdout}
	switch args[0] {
	case "login":
		return cmd.login(ctx, args[1:])
	case "register":
		return cmd.register(ctx, args[1:])
	case "logout":
		return cmd.logout(ctx)
	case "home", "whoami":
		return show(ctx, cmd.out, client.HomePage())
	case "listings":
		return cmd.listings(ctx, args[1:])
	case "farms":
		return cmd.farms(ctx, args[1:])
	case "kyc":
		return cmd.kyc(ctx, args[1:])
	case "admin":
		return cmd.admin(ctx, args[1:])
	}

	fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", args[0], usage)
	return errReported
}

// credentialStore prefers a shared Redis profile when one is configured
func credentialStore(cfg config.Client) (agromart.CredentialStore, error) {
	if cfg.RedisAddr != "" {
		return redisadapter.NewCredentialStore(
			redisadapter.Dial(cfg.RedisAddr, cfg.RedisPassword),
			redisadapter.Options{Profile: cfg.RedisProfile},
		), nil
	}
	return credstore.NewFile(cfg.CredentialFile)
}
