package system

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/weeklit/internal/auth"
	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/constants"
	"github.com/julianstephens/weeklit/internal/keyring"
	"github.com/julianstephens/weeklit/internal/storage/postgres"
)

type AuthCmd struct {
	SetToken AuthSetTokenCmd `cmd:"" help:"Store the API bearer token in the OS keyring."`
	Clear    AuthClearCmd    `cmd:"" help:"Remove the stored API token."`
	Status   AuthStatusCmd   `cmd:"" help:"Show keyring availability and token expiry."`
	SetDB    AuthSetDBCmd    `cmd:"" name:"set-db" help:"Store a PostgreSQL connection string in the OS keyring."`
	ShowDB   AuthShowDBCmd   `cmd:"" name:"show-db" help:"Show the stored PostgreSQL connection string (password masked)."`
	ClearDB  AuthClearDBCmd  `cmd:"" name:"clear-db" help:"Remove the stored PostgreSQL connection string."`
}

// AuthSetTokenCmd stores the bearer token used by the remote backend
type AuthSetTokenCmd struct {
	Token string `arg:"" help:"JWT issued by the activity service."`
}

func (cmd *AuthSetTokenCmd) Run(ctx *cli.Context) error {
	token := strings.TrimSpace(cmd.Token)
	claims, err := auth.Inspect(token)
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}
	if claims.Expired(time.Now()) {
		return fmt.Errorf("token expired at %s", claims.ExpiresAt.Format(time.RFC1123))
	}

	if err := keyring.SetToken(token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	fmt.Println("✓ Token stored successfully in OS keyring")
	if claims.Email != "" {
		fmt.Printf("  Signed in as %s\n", claims.Email)
	}
	return nil
}

// AuthClearCmd removes the stored bearer token
type AuthClearCmd struct{}

func (cmd *AuthClearCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteToken(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no token found in keyring")
		}
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	fmt.Println("✓ Token deleted from OS keyring")
	return nil
}

// AuthStatusCmd checks the keyring and the stored token
type AuthStatusCmd struct{}

func (cmd *AuthStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		fmt.Printf("   Set %s to provide a token instead.\n", auth.TokenEnv)
		return errors.New("keyring unavailable")
	}
	fmt.Println("✓ OS keyring is available")

	token, err := auth.KeyringSource{}.Token()
	if err != nil {
		fmt.Println("ℹ No API token stored")
	} else {
		claims, err := auth.Check(token, time.Now())
		switch {
		case err != nil:
			fmt.Printf("❌ API token: %v\n", err)
		case claims.ExpiresAt.IsZero():
			fmt.Println("✓ API token stored (no expiry)")
		default:
			fmt.Printf("✓ API token stored, expires %s\n", claims.ExpiresAt.Format(time.RFC1123))
		}
	}

	if _, err := keyring.GetConnectionString(); err == nil {
		fmt.Println("✓ Connection string is stored in keyring")
	} else if errors.Is(err, keyring.ErrNotFound) {
		fmt.Println("ℹ No connection string stored in keyring")
	}
	return nil
}

// AuthSetDBCmd stores database connection credentials in the OS keyring
type AuthSetDBCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *AuthSetDBCmd) Run(ctx *cli.Context) error {
	if !cli.IsPostgresConnString(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		fmt.Println("⚠️  Warning: Connection string contains embedded credentials.")
		fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	fmt.Println("✓ Connection string stored successfully in OS keyring")
	fmt.Printf("  Set backend = %q in %s to use it\n", constants.BackendPostgres, constants.ConfigFileName)
	return nil
}

// AuthShowDBCmd prints the stored connection string with the password masked
type AuthShowDBCmd struct{}

func (cmd *AuthShowDBCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no connection string found in keyring. Use '%s auth set-db' to store one", constants.AppName)
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}
	fmt.Println(maskPassword(connStr))
	return nil
}

// AuthClearDBCmd removes database connection credentials from the OS keyring
type AuthClearDBCmd struct{}

func (cmd *AuthClearDBCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	fmt.Println("✓ Connection string deleted from OS keyring")
	return nil
}

// maskPassword masks passwords in connection strings for display
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		if idx := strings.Index(connStr, "://"); idx != -1 {
			remaining := connStr[idx+3:]
			if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
				userInfo := remaining[:atIdx]
				if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
					return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
				}
			}
		}
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}
	return connStr
}
