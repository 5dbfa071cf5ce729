package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wolfman30/docsmile-suite/internal/app/bootstrap"
	"github.com/wolfman30/docsmile-suite/internal/clinictime"
	appconfig "github.com/wolfman30/docsmile-suite/internal/config"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

var errNotSignedIn = errors.New("not signed in: run `docsmile-cli login` or pass --username/--password")

// savedCredentials is what `login` leaves on disk for later commands.
type savedCredentials struct {
	Token    string    `json:"token"`
	Username string    `json:"username"`
	FullName string    `json:"fullName,omitempty"`
	SavedAt  time.Time `json:"savedAt"`
}

type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg     *appconfig.Config
	logger  *logging.Logger
	clock   *clinictime.Clock
	backend records.Backend

	dataMode  string
	credsPath string
	username  string
	password  string
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut}
}

// init loads configuration once. Fields set beforehand are kept.
func (a *app) init() error {
	if a.cfg == nil {
		a.cfg = appconfig.Load()
	}
	if a.dataMode != "" {
		a.cfg.DataMode = strings.ToLower(a.dataMode)
	}
	if a.logger == nil {
		a.logger = logging.NewWithWriter(a.errOut, a.cfg.LogLevel)
	}
	if a.clock == nil {
		clock, err := bootstrap.BuildClock(a.cfg)
		if err != nil {
			return fmt.Errorf("clinic timezone: %w", err)
		}
		a.clock = clock
	}
	if a.credsPath == "" {
		a.credsPath = defaultCredentialsPath()
	}
	return nil
}

// store returns the configured backend, building it on first use.
func (a *app) store() (records.Backend, error) {
	if a.backend != nil {
		return a.backend, nil
	}
	backend, err := bootstrap.BuildBackend(a.cfg, a.clock, nil, a.logger)
	if err != nil {
		return nil, err
	}
	a.backend = backend
	return backend, nil
}

// credentials signs in with the flags when given, otherwise reuses the token
// saved by `login`.
func (a *app) credentials(ctx context.Context) (records.Credentials, error) {
	if a.username != "" || a.password != "" {
		result, err := a.login(ctx, records.LoginRequest{Username: a.username, Password: a.password})
		if err != nil {
			return records.Credentials{}, err
		}
		return records.Credentials{Token: result.Token}, nil
	}
	saved, err := loadCredentials(a.credsPath)
	if err != nil {
		return records.Credentials{}, err
	}
	return records.Credentials{Token: saved.Token}, nil
}

func (a *app) login(ctx context.Context, req records.LoginRequest) (records.LoginResult, error) {
	if err := req.Validate(); err != nil {
		return records.LoginResult{}, err
	}
	backend, err := a.store()
	if err != nil {
		return records.LoginResult{}, err
	}
	return backend.Login(ctx, req)
}

func defaultCredentialsPath() string {
	if path := os.Getenv("DOCSMILE_CREDENTIALS"); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "docsmile", "credentials.json")
}

func saveCredentials(path string, creds savedCredentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func loadCredentials(path string) (savedCredentials, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return savedCredentials{}, errNotSignedIn
	}
	if err != nil {
		return savedCredentials{}, fmt.Errorf("read credentials: %w", err)
	}
	var saved savedCredentials
	if err := json.Unmarshal(data, &saved); err != nil {
		return savedCredentials{}, fmt.Errorf("decode credentials: %w", err)
	}
	if strings.TrimSpace(saved.Token) == "" {
		return savedCredentials{}, errNotSignedIn
	}
	return saved, nil
}
