// copractl is a terminal client for the Copracess mobile backend. It
// drives the same session core the app uses: credentials live in an
// encrypted file, expired tokens are refreshed transparently, and a
// revoked refresh token signs the user out.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/copracess/go-mobile-client/api"
	"github.com/copracess/go-mobile-client/credstore"
	"github.com/copracess/go-mobile-client/internal/config"
	"github.com/copracess/go-mobile-client/session"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "copractl: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return errors.New("a command is required")
	}

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if cfg.GetEnv() != "DEV" {
		logger = logger.Level(zerolog.InfoLevel)
	}

	store, err := credstore.NewFile(cfg.GetCredentialsPath(), []byte(cfg.GetDeviceSecret()))
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}

	authClient := api.NewAuthClient(cfg.GetAPIBaseURL(), api.WithAuthTimeout(cfg.GetHTTPTimeout()))
	manager, err := session.NewManager(authClient, store,
		session.WithSkew(cfg.GetTokenSkew()),
		session.WithLogger(logger),
		session.WithLogoutHandler(func() {
			fmt.Println("Signed out. Run `copractl login` to sign in again.")
		}),
	)
	if err != nil {
		return err
	}
	client := api.NewClient(cfg.GetAPIBaseURL(), manager,
		api.WithTimeout(cfg.GetHTTPTimeout()),
		api.WithClientLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager.Initialize(ctx)

	switch args[0] {
	case "login":
		return loginCmd(ctx, manager, cfg.GetAppName(), args[1:])
	case "logout":
		manager.Logout()
		return nil
	case "whoami":
		return whoamiCmd(manager)
	case "queue":
		return queueCmd(ctx, client)
	case "dashboard":
		return dashboardCmd(ctx, client)
	case "bookings":
		return bookingsCmd(ctx, client)
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func loginCmd(ctx context.Context, manager *session.Manager, appName string, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("login requires -email")
	}
	if *password == "" {
		fmt.Print("Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		*password = strings.TrimSpace(line)
	}

	figure.NewFigure(appName, "cybermedium", true).Print()
	fmt.Println()

	if err := manager.Login(ctx, *email, *password); err != nil {
		if msg := api.UserMessage(err); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	profile := manager.Snapshot().Profile
	fmt.Printf("Signed in as %s (%s)\n", profile.Name, profile.Role)
	return nil
}

func whoamiCmd(manager *session.Manager) error {
	snap := manager.Snapshot()
	if snap.Authenticated == nil || !*snap.Authenticated {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("Name:          %s\n", snap.Profile.Name)
	fmt.Printf("Email:         %s\n", snap.Profile.Email)
	fmt.Printf("Role:          %s\n", snap.Profile.Role)
	fmt.Printf("Organization:  %s\n", snap.Profile.OrganizationID)
	return nil
}

func queueCmd(ctx context.Context, client *api.Client) error {
	queue, err := client.VirtualQueue(ctx)
	if err != nil {
		return err
	}
	if len(queue) == 0 {
		fmt.Println("The queue is empty.")
		return nil
	}
	for n, item := range queue {
		fmt.Printf("%2d. %-12s %-20s %s\n", n+1, item.PlateNumber, item.Owner, item.Status)
	}
	return nil
}

func dashboardCmd(ctx context.Context, client *api.Client) error {
	dashboard, err := client.OilMillDashboard(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Trucks waiting to unload: %d\n", dashboard.UnloadedTruck)
	for _, item := range dashboard.ChartSummaryData.Expense {
		fmt.Printf("expense  %-16s %s\n", item.Label, item.Value)
	}
	for _, item := range dashboard.ChartSummaryData.Weight {
		fmt.Printf("weight   %-16s %s\n", item.Label, item.Value)
	}
	return nil
}

func bookingsCmd(ctx context.Context, client *api.Client) error {
	bookings, err := client.Bookings(ctx)
	if err != nil {
		return err
	}
	if len(bookings) == 0 {
		fmt.Println("No bookings.")
		return nil
	}
	for _, b := range bookings {
		fmt.Printf("%-12s %-10s %8.1f kg  %s\n",
			b.PlateNumber, b.Status, b.CopraWeight, b.DeliveryDate.Format("2006-01-02"))
	}
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: copractl <command> [flags]

commands:
  login      sign in (-email, -password)
  logout     sign out and clear stored credentials
  whoami     show the cached profile
  queue      show the mill's virtual truck queue
  dashboard  show the oil-mill dashboard summary
  bookings   list delivery bookings`)
}
