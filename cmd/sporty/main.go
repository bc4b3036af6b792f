package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/DotmanL/sporty-go/internal/api"
	"github.com/DotmanL/sporty-go/internal/config"
	"github.com/DotmanL/sporty-go/internal/idp"
	"github.com/DotmanL/sporty-go/internal/log"
	"github.com/DotmanL/sporty-go/internal/session"
	"github.com/DotmanL/sporty-go/internal/store"
)

var BuildVersion = "dev"

const usageText = `Usage: sporty <command> [flags]

Commands:
  login            sign in with email and password
  signup           create an account
  login-google     sign in with a Google account
  reset-password   set a new password
  verify-otp       request and verify a one-time token
  leagues          list followable leagues
  clubs            list followable clubs
  onboard-leagues  follow leagues by id
  onboard-clubs    follow clubs by id
  profile          show the signed-in user
  logout           clear the local session
  delete-account   delete the account and clear the session
  version          print version and exit
`

// app is the wired-up process: one store, one in-memory session state, one
// coordinator feeding the request gateway.
type app struct {
	cfg        *config.Config
	store      store.Store
	state      *session.State
	client     *api.Client
	closeStore func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	if err := log.SetLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	st, closeStore, err := cfg.BuildStore(ctx)
	if err != nil {
		return nil, err
	}

	state := session.NewState(st)
	coordinator := session.NewCoordinator(st,
		idp.NewSecureTokenClient(string(cfg.FirebaseAPIKey)),
		state)

	// Resolve the persisted session once at launch so a stale token is
	// refreshed before the first command-issued request.
	coordinator.Token(ctx)

	return &app{
		cfg:        cfg,
		store:      st,
		state:      state,
		client:     api.NewClient(cfg.APIURL, coordinator),
		closeStore: closeStore,
	}, nil
}

// shutdown waits for in-flight session writes before releasing the store.
func (a *app) shutdown() {
	a.state.Flush()
	if err := a.closeStore(); err != nil {
		log.LogWarnWithFields("main", "Closing store failed", map[string]any{
			"error": err.Error(),
		})
	}
}

// adopt installs the credentials returned by an auth route as the current
// session.
func (a *app) adopt(resp *api.AuthResponse) {
	a.state.Authenticate(&store.Session{
		AccessToken:    resp.AccessToken,
		RefreshToken:   resp.RefreshToken,
		UserID:         resp.UserID,
		ExpirationDate: resp.ExpirationDate,
	})
	if resp.User.ID != "" {
		user := resp.User
		a.state.SetUser(&user)
	}
}

func prompt(label string) (string, error) {
	fmt.Printf("%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email (required)")
	password := fs.String("password", "", "account password (prompted if empty)")
	fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("-email is required")
	}
	if *password == "" {
		var err error
		if *password, err = prompt("Password"); err != nil {
			return err
		}
	}

	resp, err := api.NewAuthService(a.client).Login(ctx, api.LoginRequest{
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}
	a.adopt(resp)
	fmt.Printf("Signed in as %s\n", *email)
	return nil
}

func cmdSignup(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	userName := fs.String("username", "", "display name (required)")
	email := fs.String("email", "", "account email (required)")
	password := fs.String("password", "", "account password (prompted if empty)")
	fs.Parse(args)

	if *userName == "" || *email == "" {
		return fmt.Errorf("-username and -email are required")
	}
	if *password == "" {
		var err error
		if *password, err = prompt("Password"); err != nil {
			return err
		}
	}

	resp, err := api.NewAuthService(a.client).SignUp(ctx, api.CreateUserRequest{
		UserName: *userName,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}
	a.adopt(resp)
	fmt.Printf("Account created for %s\n", *email)
	return nil
}

func cmdLoginGoogle(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login-google", flag.ExitOnError)
	fs.Parse(args)

	if a.cfg.GoogleClientID == "" {
		return fmt.Errorf("SPORTY_GOOGLE_CLIENT_ID not set")
	}

	google := idp.NewGoogleSignIn(a.cfg.GoogleClientID,
		string(a.cfg.GoogleClientSecret), a.cfg.GoogleRedirectURL)

	fmt.Println("Open this URL in a browser and authorize access:")
	fmt.Println(google.AuthURL("sporty-cli"))

	code, err := prompt("Authorization code")
	if err != nil {
		return err
	}

	token, err := google.ExchangeCode(ctx, code)
	if err != nil {
		return err
	}
	idToken, err := idp.IDToken(token)
	if err != nil {
		return err
	}
	profile, err := google.UserInfo(ctx, token)
	if err != nil {
		return err
	}

	auth := api.NewAuthService(a.client)
	resp, err := auth.LoginWithIdp(ctx, api.LoginWithIdpRequest{
		Email:      profile.Email,
		IDToken:    idToken,
		ProviderID: idp.ProviderID,
	})
	if err != nil {
		// First sign-in with this account: register instead.
		resp, err = auth.SignUpWithIdp(ctx, api.CreateUserRequest{
			UserName:   profile.Name,
			Email:      profile.Email,
			IDToken:    idToken,
			ProviderID: idp.ProviderID,
		})
		if err != nil {
			return err
		}
	}
	a.adopt(resp)
	fmt.Printf("Signed in as %s\n", profile.Email)
	return nil
}

func cmdResetPassword(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	email := fs.String("email", "", "account email (required)")
	fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("-email is required")
	}
	password, err := prompt("New password")
	if err != nil {
		return err
	}

	resp, err := api.NewAuthService(a.client).ResetPassword(ctx, *email, password)
	if err != nil {
		return err
	}
	a.adopt(resp)
	fmt.Println("Password updated")
	return nil
}

func cmdVerifyOTP(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("verify-otp", flag.ExitOnError)
	email := fs.String("email", "", "account email (required)")
	token := fs.String("token", "", "one-time token; omit to request a new one")
	fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("-email is required")
	}

	tokens := api.NewTokenService(a.client)
	if *token == "" {
		if _, err := tokens.Create(ctx, *email); err != nil {
			return err
		}
		fmt.Printf("One-time token sent to %s\n", *email)
		return nil
	}

	status, err := tokens.Verify(ctx, *email, *token)
	if err != nil {
		return err
	}
	fmt.Printf("Verification: %s\n", status.Status)
	return nil
}

func cmdLeagues(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("leagues", flag.ExitOnError)
	fs.Parse(args)

	leagues, err := api.NewLeagueService(a.client).List(ctx)
	if err != nil {
		return err
	}
	for _, l := range leagues {
		fmt.Printf("%s\t%s (%s)\n", l.ID, l.Name, l.Country)
	}
	return nil
}

func cmdClubs(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("clubs", flag.ExitOnError)
	fs.Parse(args)

	clubs, err := api.NewClubService(a.client).List(ctx)
	if err != nil {
		return err
	}
	for _, c := range clubs {
		fmt.Printf("%s\t%s (%s)\n", c.ID, c.Name, c.Country)
	}
	return nil
}

func cmdOnboardLeagues(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("onboard-leagues", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("give at least one league id")
	}

	user, err := api.NewOnboardingService(a.client).CreateLeagueInterests(ctx, fs.Args())
	if err != nil {
		return err
	}
	a.state.SetUser(user)
	fmt.Printf("Following %d league(s)\n", fs.NArg())
	return nil
}

func cmdOnboardClubs(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("onboard-clubs", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("give at least one club id")
	}

	user, err := api.NewOnboardingService(a.client).CreateClubInterests(ctx, fs.Args())
	if err != nil {
		return err
	}
	a.state.SetUser(user)
	fmt.Printf("Following %d club(s)\n", fs.NArg())
	return nil
}

func cmdProfile(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	fs.Parse(args)

	user, err := api.NewUserService(a.client).Get(ctx)
	if err != nil {
		return err
	}
	a.state.SetUser(user)
	fmt.Printf("ID:        %s\n", user.ID)
	fmt.Printf("Username:  %s\n", user.UserName)
	fmt.Printf("Email:     %s\n", user.Email)
	return nil
}

func cmdLogout(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	fs.Parse(args)

	a.state.Logout()
	fmt.Println("Signed out")
	return nil
}

func cmdDeleteAccount(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("delete-account", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "confirm deletion without prompting")
	fs.Parse(args)

	if !*confirm {
		answer, err := prompt("Delete this account permanently? Type 'delete' to confirm")
		if err != nil {
			return err
		}
		if answer != "delete" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if _, err := api.NewUserService(a.client).DeleteAccount(ctx); err != nil {
		return err
	}
	a.state.Logout()
	fmt.Println("Account deleted")
	return nil
}

var commands = map[string]func(context.Context, *app, []string) error{
	"login":           cmdLogin,
	"signup":          cmdSignup,
	"login-google":    cmdLoginGoogle,
	"reset-password":  cmdResetPassword,
	"verify-otp":      cmdVerifyOTP,
	"leagues":         cmdLeagues,
	"clubs":           cmdClubs,
	"onboard-leagues": cmdOnboardLeagues,
	"onboard-clubs":   cmdOnboardClubs,
	"profile":         cmdProfile,
	"logout":          cmdLogout,
	"delete-account":  cmdDeleteAccount,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(1)
	}
	name := os.Args[1]
	switch name {
	case "version", "-version", "--version":
		fmt.Println(BuildVersion)
		return
	case "help", "-help", "--help":
		fmt.Print(usageText)
		return
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", name)
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(1)
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		log.LogError("Failed to start: %v", err)
		os.Exit(1)
	}
	defer a.shutdown()

	if err := cmd(ctx, a, os.Args[2:]); err != nil {
		var reqErr *api.RequestError
		if errors.As(err, &reqErr) && len(reqErr.Body) > 0 {
			log.LogErrorWithFields("main", "Request rejected", map[string]any{
				"status": reqErr.Status,
				"body":   string(reqErr.Body),
			})
		} else {
			log.LogError("%s failed: %v", name, err)
		}
		a.shutdown()
		os.Exit(1)
	}
}
