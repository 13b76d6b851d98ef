package source

import (
	"fmt"

	"anggaran/internal/config"
)

// FromConfig converts the application config into default connection
// parameters.
func FromConfig(cfg *config.Config) (ConnParams, error) {
	if cfg == nil {
		return ConnParams{}, fmt.Errorf("app config is nil")
	}
	driver := Driver(cfg.DBDriver)
	if !driver.IsValid() {
		return ConnParams{}, fmt.Errorf("invalid driver in config: %s", cfg.DBDriver)
	}
	p := ConnParams{
		Driver:   driver,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
	}
	if !driver.Networked() {
		p.Host, p.Port, p.User, p.Password = "", 0, "", ""
	}
	return p, nil
}
