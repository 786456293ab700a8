package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Contact is a board member listed on the contact page.
type Contact struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	Role  string `yaml:"role" json:"role" validate:"required"`
	Email string `yaml:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	Phone string `yaml:"phone,omitempty" json:"phone,omitempty"`
}

// Site holds the static content of site.yaml.
type Site struct {
	Name     string    `yaml:"name" json:"name" validate:"required"`
	Address  string    `yaml:"address,omitempty" json:"address,omitempty"`
	Rooms    []string  `yaml:"rooms" json:"rooms" validate:"dive,required"`
	Contacts []Contact `yaml:"contacts" json:"contacts" validate:"dive"`
}

var siteValidate = validator.New()

// DefaultSite is used when no site.yaml exists.
func DefaultSite() *Site {
	rooms := make([]string, 0, 10)
	for i := 1; i <= 10; i++ {
		rooms = append(rooms, fmt.Sprintf("Zaal %d", i))
	}
	return &Site{
		Name:  "Stichting Asha",
		Rooms: rooms,
		Contacts: []Contact{
			{Name: "Radj Ramcharan", Role: "Secretaris"},
			{Name: "Ronald Kalka", Role: "Voorzitter"},
		},
	}
}

// LoadSite reads path. A missing file yields DefaultSite.
func LoadSite(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSite(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read site config: %w", err)
	}
	return ParseSite(data)
}

func ParseSite(data []byte) (*Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("failed to parse site config: %w", err)
	}
	if err := siteValidate.Struct(&site); err != nil {
		return nil, fmt.Errorf("site config validation failed: %w", err)
	}
	return &site, nil
}

// HasRoom reports whether zaal is a configured room. Without configured
// rooms every value is accepted.
func (s *Site) HasRoom(zaal string) bool {
	if s == nil || len(s.Rooms) == 0 {
		return true
	}
	for _, r := range s.Rooms {
		if r == zaal {
			return true
		}
	}
	return false
}
