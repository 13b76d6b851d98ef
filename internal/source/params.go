package source

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"

	"anggaran/internal/core"
)

// ConnParams identifies an external database. The zero value is incomplete.
type ConnParams struct {
	Driver   Driver
	Host     string
	Port     int
	User     string
	Password string
	// Name is the database name, or the file path for sqlite.
	Name string
}

// Missing lists the parameters that prevent a connection attempt, by
// their user-facing names.
func (p ConnParams) Missing() []string {
	var missing []string
	if !p.Driver.IsValid() {
		missing = append(missing, "driver")
	}
	if p.Driver.Networked() {
		if strings.TrimSpace(p.Host) == "" {
			missing = append(missing, "host")
		}
		if p.Port < 1 || p.Port > 65535 {
			missing = append(missing, "port")
		}
		if strings.TrimSpace(p.User) == "" {
			missing = append(missing, "username")
		}
		if p.Password == "" {
			missing = append(missing, "password")
		}
	}
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "database")
	}
	return missing
}

// Complete reports whether every required parameter is present.
func (p ConnParams) Complete() bool {
	return len(p.Missing()) == 0
}

// Validate returns an error naming the missing parameters.
func (p ConnParams) Validate() error {
	if missing := p.Missing(); len(missing) > 0 {
		return fmt.Errorf("incomplete connection parameters: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Address is host:port for network drivers and the file path for sqlite.
func (p ConnParams) Address() string {
	if !p.Driver.Networked() {
		return p.Name
	}
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// Key identifies the connection for caching. The password only enters as
// a truncated hash.
func (p ConnParams) Key() string {
	sum := sha256.Sum256([]byte(p.Password))
	return strings.Join([]string{
		p.Driver.String(),
		p.Host,
		strconv.Itoa(p.Port),
		p.User,
		p.Name,
		hex.EncodeToString(sum[:8]),
	}, "|")
}

// String describes the connection without credentials.
func (p ConnParams) String() string {
	if !p.Driver.Networked() {
		return fmt.Sprintf("%s:%s", p.Driver, p.Name)
	}
	return fmt.Sprintf("%s://%s@%s/%s", p.Driver, p.User, p.Address(), p.Name)
}

// Select decides where the department table comes from. The external
// source is chosen only when requested and fully parameterized.
func Select(useExternal bool, p ConnParams) core.Mode {
	if useExternal && p.Complete() {
		return core.ModeExternal
	}
	return core.ModeStatic
}
