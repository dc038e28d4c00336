package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"authgate/internal/config"
	"authgate/internal/dto"
	"authgate/internal/identity"
	"authgate/internal/pkg/logger"
	"authgate/internal/service"
	"authgate/internal/session"

	"github.com/fatih/color"
)

func main() {
	// 1. Load Configuration (endpoint + project id are fatal when missing)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// 2. Logger
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	// 3. Identity client with the persistent cookie jar, so a session from a
	// previous run is picked up by bootstrap
	jar, err := identity.NewFileJar(cfg.App.CookieJarPath)
	if err != nil {
		log.Fatalf("Unable to open cookie jar: %v", err)
	}
	client := identity.NewClient(cfg.Backend.Endpoint, cfg.Backend.ProjectID, jar)

	// 4. Session store + flows
	store := session.NewStore()
	authService := service.NewAuthService(client, store, sysLogger)

	// 5. Navigation gate: renders on every store change
	gate := session.NewGate(store, renderTree)
	gate.Run()
	defer gate.Stop()

	// 6. Bootstrap before accepting any command
	ctx := context.Background()
	authService.Bootstrap(ctx)

	runPrompt(ctx, authService, store)
}

// renderTree is the CLI stand-in for the three screen trees.
func renderTree(render session.RenderState, state session.State) {
	switch render {
	case session.RenderLoading:
		color.Yellow("... checking session ...")
	case session.RenderAuthenticated:
		color.Green("[home] signed in as %s <%s>", state.Identity.Name, state.Identity.Email)
		fmt.Println("commands: whoami | logout | exit")
	case session.RenderUnauthenticated:
		color.Cyan("[welcome] not signed in")
		fmt.Println("commands: login <email> <password> | signup <name> <email> <password> <confirm> | exit")
	}
}

func runPrompt(ctx context.Context, authService service.IAuthService, store *session.Store) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "login":
			if len(args) != 3 {
				color.Red("usage: login <email> <password>")
				continue
			}
			req := &dto.LoginRequest{Email: args[1], Password: args[2]}
			if _, err := authService.Login(ctx, req); err != nil {
				color.Red(identity.UserMessage(err))
			}
		case "signup":
			if len(args) != 5 {
				color.Red("usage: signup <name> <email> <password> <confirm>")
				continue
			}
			req := &dto.SignupRequest{Name: args[1], Email: args[2], Password: args[3], ConfirmPassword: args[4]}
			if _, err := authService.Signup(ctx, req); err != nil {
				color.Red(identity.UserMessage(err))
			}
		case "logout":
			if err := authService.Logout(ctx); err != nil {
				color.Red(identity.UserMessage(err))
			}
		case "whoami":
			state := store.Read()
			if state.Status == session.StatusAuthenticated {
				fmt.Printf("%s <%s>\n", state.Identity.Name, state.Identity.Email)
			} else {
				fmt.Println("not signed in")
			}
		case "exit", "quit":
			return
		default:
			color.Red("unknown command: %s", args[0])
		}
	}
}
