// Package source reads the department budget table from an external
// relational database.
package source

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// Driver names a supported database flavour.
type Driver string

const (
	DriverMySQL     Driver = "mysql"
	DriverPostgres  Driver = "postgres"
	DriverSQLServer Driver = "sqlserver"
	DriverSQLite    Driver = "sqlite"
)

// dialTimeout bounds connection establishment for drivers whose DSN accepts it.
const dialTimeout = 5 * time.Second

func (d Driver) IsValid() bool {
	switch d {
	case DriverMySQL, DriverPostgres, DriverSQLServer, DriverSQLite:
		return true
	}
	return false
}

func (d Driver) String() string {
	return string(d)
}

// Networked reports whether the driver talks to a server over TCP.
func (d Driver) Networked() bool {
	return d != DriverSQLite
}

// DefaultPort is the conventional port of the driver, 0 for sqlite.
func (d Driver) DefaultPort() int {
	switch d {
	case DriverMySQL:
		return 3306
	case DriverPostgres:
		return 5432
	case DriverSQLServer:
		return 1433
	}
	return 0
}

// sqlName is the database/sql driver name registered by the imported driver.
func (d Driver) sqlName() string {
	switch d {
	case DriverPostgres:
		return "pgx"
	default:
		return string(d)
	}
}

// Drivers lists every supported driver.
func Drivers() []Driver {
	return []Driver{DriverMySQL, DriverPostgres, DriverSQLServer, DriverSQLite}
}

// DriverStrings lists every supported driver name.
func DriverStrings() []string {
	drivers := Drivers()
	out := make([]string, len(drivers))
	for i, d := range drivers {
		out[i] = d.String()
	}
	return out
}

// DSN renders the connection string for p.
func DSN(p ConnParams) (string, error) {
	addr := net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
	switch p.Driver {
	case DriverMySQL:
		cfg := mysql.NewConfig()
		cfg.User = p.User
		cfg.Passwd = p.Password
		cfg.Net = "tcp"
		cfg.Addr = addr
		cfg.DBName = p.Name
		cfg.Timeout = dialTimeout
		return cfg.FormatDSN(), nil

	case DriverPostgres:
		q := url.Values{}
		q.Set("connect_timeout", strconv.Itoa(int(dialTimeout/time.Second)))
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(p.User, p.Password),
			Host:     addr,
			Path:     "/" + p.Name,
			RawQuery: q.Encode(),
		}
		return u.String(), nil

	case DriverSQLServer:
		q := url.Values{}
		q.Set("database", p.Name)
		q.Set("dial timeout", strconv.Itoa(int(dialTimeout/time.Second)))
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(p.User, p.Password),
			Host:     addr,
			RawQuery: q.Encode(),
		}
		return u.String(), nil

	case DriverSQLite:
		// query_only keeps the dashboard from ever writing to the file.
		return "file:" + p.Name + "?_pragma=query_only(1)", nil
	}
	return "", fmt.Errorf("unsupported driver %q", p.Driver)
}
