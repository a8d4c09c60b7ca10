// Package seed loads room fixtures from YAML into a storage backend.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roomvoice/roomvoice/internal/platform/config"
	"github.com/roomvoice/roomvoice/internal/room"
	"github.com/roomvoice/roomvoice/internal/storage"
	"github.com/roomvoice/roomvoice/internal/storage/sqlite"
)

// seedEnv captures startup defaults for the seed process.
type seedEnv struct {
	DBPath string `env:"ROOMVOICE_DB_PATH"`
}

// Config holds the seed command configuration.
type Config struct {
	FixturesPath string
	DBPath       string
}

// ParseConfig loads environment defaults and then parses flags over them.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var raw seedEnv
	if err := config.ParseEnv(&raw); err != nil {
		return Config{}, err
	}
	if raw.DBPath == "" {
		raw.DBPath = filepath.Join("data", "roomvoice.db")
	}

	cfg := Config{DBPath: raw.DBPath}
	fs.StringVar(&cfg.FixturesPath, "fixtures", "fixtures/rooms.yaml", "path to the YAML fixtures file")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to sqlite database")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// fixtureFile is the YAML document shape.
type fixtureFile struct {
	Rooms []fixtureRoom `yaml:"rooms"`
}

type fixtureRoom struct {
	ID     string         `yaml:"id"`
	Name   string         `yaml:"name"`
	Owner  string         `yaml:"owner"`
	Events []fixtureEvent `yaml:"events"`
}

type fixtureEvent struct {
	Title     string            `yaml:"title"`
	Active    *bool             `yaml:"active"`
	Questions []fixtureQuestion `yaml:"questions"`
}

type fixtureQuestion struct {
	Type     string   `yaml:"type"`
	Label    string   `yaml:"label"`
	Required bool     `yaml:"required"`
	Options  []string `yaml:"options"`
}

// LoadFixtures decodes a YAML fixtures document into room configurations.
// Events without an explicit question list keep the default question pair.
func LoadFixtures(r io.Reader) ([]room.Config, error) {
	var file fixtureFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	configs := make([]room.Config, 0, len(file.Rooms))
	for i, fr := range file.Rooms {
		cfg, err := buildRoom(fr)
		if err != nil {
			return nil, fmt.Errorf("room %d (%q): %w", i, fr.Name, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

func buildRoom(fr fixtureRoom) (room.Config, error) {
	roomID := fr.ID
	if roomID == "" {
		generated, err := room.NewRoomID(fr.Name)
		if err != nil {
			return room.Config{}, err
		}
		roomID = generated
	}

	cfg, err := room.New(roomID, fr.Name, fr.Owner)
	if err != nil {
		return room.Config{}, err
	}

	for _, fe := range fr.Events {
		cfg, err = cfg.AddEvent(fe.Title)
		if err != nil {
			return room.Config{}, err
		}
		eventID := cfg.Events[len(cfg.Events)-1].ID

		if len(fe.Questions) > 0 {
			// Explicit question lists replace the defaults.
			for _, q := range cfg.Events[len(cfg.Events)-1].Questions {
				cfg, err = cfg.DeleteQuestion(eventID, q.ID)
				if err != nil {
					return room.Config{}, err
				}
			}
			for _, fq := range fe.Questions {
				cfg, err = cfg.AddQuestion(eventID, room.Question{
					Type:     room.QuestionType(fq.Type),
					Label:    fq.Label,
					Required: fq.Required,
					Options:  fq.Options,
				})
				if err != nil {
					return room.Config{}, err
				}
			}
		}

		if fe.Active != nil && !*fe.Active {
			inactive := false
			cfg, err = cfg.UpdateEvent(eventID, room.EventPatch{IsActive: &inactive})
			if err != nil {
				return room.Config{}, err
			}
		}
	}

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return room.Config{}, err
	}
	return cfg, nil
}

// Apply saves every fixture room, overwriting rooms with the same id.
func Apply(ctx context.Context, store storage.Store, configs []room.Config) error {
	for _, cfg := range configs {
		if err := store.SaveRoom(ctx, cfg); err != nil {
			return fmt.Errorf("save room %q: %w", cfg.ID, err)
		}
	}
	return nil
}

// Run executes the seed command against the sqlite database at cfg.DBPath.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	file, err := os.Open(cfg.FixturesPath)
	if err != nil {
		return fmt.Errorf("open fixtures: %w", err)
	}
	defer file.Close()

	configs, err := LoadFixtures(file)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open sqlite store: %w", err)
	}
	defer store.Close()

	if err := Apply(ctx, store, configs); err != nil {
		return err
	}

	for _, roomCfg := range configs {
		fmt.Fprintf(out, "seeded room %s (%d events)\n", roomCfg.ID, len(roomCfg.Events))
	}
	return nil
}
