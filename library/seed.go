package library

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Seed is the on-disk shape of a startup seed file:
//
//	[[books]]
//	title = "Dune"
//	author = "Frank Herbert"
//	isbn = "9780441013593"
//	quantity = 2
//
//	[[members]]
//	name = "Alice"
//	phone = "555-0100"
type Seed struct {
	Books   []SeedBook   `toml:"books"`
	Members []SeedMember `toml:"members"`
}

type SeedBook struct {
	Title    string `toml:"title"`
	Author   string `toml:"author"`
	ISBN     string `toml:"isbn"`
	Quantity int    `toml:"quantity"`
}

type SeedMember struct {
	Name  string `toml:"name"`
	Phone string `toml:"phone"`
}

// DecodeSeed reads a TOML seed document. Unknown keys are rejected so typos
// don't silently drop entries.
func DecodeSeed(r io.Reader) (Seed, error) {
	var s Seed
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	if err := s.validate(); err != nil {
		return Seed{}, err
	}
	return s, nil
}

func (s Seed) validate() error {
	for i, b := range s.Books {
		if b.Quantity < 0 {
			return fmt.Errorf("seed book %d (%q): quantity %d: %w", i+1, b.Title, b.Quantity, ErrInvalidInput)
		}
	}
	return nil
}

// LoadSeedFile opens and decodes the seed file at path.
func LoadSeedFile(path string) (Seed, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Seed{}, err
	}
	defer f.Close()
	return DecodeSeed(f)
}
