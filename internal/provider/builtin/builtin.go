// Package builtin registers the bundled lookup backends. It lives apart from
// provider to avoid an import cycle with the backend packages.
package builtin

import (
	"fmt"

	"github.com/Digital-Shane/tv-renamer/internal/provider"
	"github.com/Digital-Shane/tv-renamer/internal/provider/omdb"
	"github.com/Digital-Shane/tv-renamer/internal/provider/tmdb"
	"github.com/Digital-Shane/tv-renamer/internal/provider/tvdb"
)

// Register adds the tvdb, tmdb and omdb backends to r.
func Register(r *provider.Registry) error {
	factories := map[string]provider.Factory{
		"tvdb": func(s provider.Settings) (provider.TitleLookup, error) { return tvdb.New(s) },
		"tmdb": func(s provider.Settings) (provider.TitleLookup, error) { return tmdb.New(s) },
		"omdb": func(s provider.Settings) (provider.TitleLookup, error) { return omdb.New(s) },
	}
	for name, factory := range factories {
		if err := r.Register(name, factory); err != nil {
			return fmt.Errorf("failed to register %s provider: %w", name, err)
		}
	}
	return nil
}

// LoadBuiltinProviders loads all built-in providers into the global registry
func LoadBuiltinProviders() error {
	return Register(provider.GlobalRegistry)
}
