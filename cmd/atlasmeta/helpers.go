// Shared helpers for atlasmeta CLI commands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/cartolab/atlasmeta/internal/service"
	"github.com/cartolab/atlasmeta/internal/sqlite"
	"github.com/cartolab/atlasmeta/pkg/types"
)

// attachBackend loads config, resolves the data directory, and attaches a
// SQLite backend. The caller must defer backend.Detach().
func attachBackend() (*sqlite.Backend, error) {
	v, err := loadConfig(flags.configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dataDir := flags.dataDir
	if dataDir == "" {
		dataDir = v.GetString(cfgKeyDataDir)
	}

	cfg := types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}
	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	return backend, nil
}

// newService builds the access-controlled façade over an attached backend
// with a console logger on stderr.
func newService(backend *sqlite.Backend) (*service.Service, error) {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return service.New(backend, log)
}

// authenticate resolves the caller from --key, $ATLASMETA_API_KEY, or the
// config file, in that order.
func authenticate(ctx context.Context, svc *service.Service) (types.Principal, error) {
	rawKey := flags.apiKey
	if rawKey == "" {
		rawKey = os.Getenv(envPrefix + "_API_KEY")
	}
	if rawKey == "" {
		v, err := loadConfig(flags.configDir)
		if err == nil {
			rawKey = v.GetString(cfgKeyAPIKey)
		}
	}
	if rawKey == "" {
		return types.Principal{}, fmt.Errorf("no API key: pass --key or set %s_API_KEY", envPrefix)
	}
	return svc.Authenticate(ctx, rawKey)
}

// printResult renders v as indented JSON when --json is set, or with the
// provided plain-text fallback otherwise.
func printResult(v any, plain func()) error {
	if !flags.jsonMode {
		plain()
		return nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
