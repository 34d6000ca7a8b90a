package server

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/RenanGalvao/pizza-ecommerce/menu"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// menuSeed is the layout of the MENU_SEED_FILE document.
type menuSeed struct {
	Items []struct {
		Name        string  `yaml:"name"`
		Price       float64 `yaml:"price"`
		Description string  `yaml:"description"`
		Category    string  `yaml:"category"`
	} `yaml:"items"`
}

// SeedMenu loads the configured seed file into an empty menu. A menu that
// already has items is left alone.
func (s *Server) SeedMenu(ctx context.Context) (int, error) {
	path := s.config.GetMenuSeedFile()
	if path == "" {
		return 0, nil
	}
	existing, err := s.handlers.menu.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list menu: %w", err)
	}
	if len(existing) > 0 {
		log.Info().Int("items", len(existing)).Msg("menu already populated, skipping seed")
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read menu seed: %w", err)
	}
	var seed menuSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parse menu seed %s: %w", path, err)
	}

	created := 0
	for i, entry := range seed.Items {
		in := menuInput{
			Name:        entry.Name,
			Price:       entry.Price,
			Description: entry.Description,
			Category:    entry.Category,
		}
		if err := s.handlers.validate(in); err != nil {
			return created, fmt.Errorf("menu seed item %d: %w", i, err)
		}
		id, err := s.handlers.newID(s.config.GetTokenIDLength())
		if err != nil {
			return created, err
		}
		item := menu.Item{
			ID:          id,
			Name:        strings.TrimSpace(in.Name),
			Price:       in.Price,
			Description: strings.TrimSpace(in.Description),
			Category:    strings.ToLower(in.Category),
		}
		if err := s.handlers.menu.Create(ctx, id, item); err != nil {
			return created, fmt.Errorf("menu seed item %d: %w", i, err)
		}
		created++
	}
	log.Info().Int("items", created).Str("file", path).Msg("menu seeded")
	return created, nil
}
