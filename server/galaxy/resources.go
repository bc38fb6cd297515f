package galaxy

import (
	"context"
	"fmt"

	"github.com/sandertv/gophertunnel/minecraft/resource"

	"github.com/oktw/galaxy/server/resourcepack"
)

// LoadResourcePack downloads the configured resource pack into dir. It returns
// nil if no resource pack is configured.
func (c Config) LoadResourcePack(ctx context.Context, dir string) (*resource.Pack, error) {
	if c.ResourcePack.URL == "" {
		return nil, nil
	}
	p, err := resourcepack.New(ctx, c.ResourcePack.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch resource pack: %w", err)
	}
	pack, err := p.Download(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("download resource pack: %w", err)
	}
	return pack, nil
}
