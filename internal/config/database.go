package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DBSource names the variable family a database target was resolved from.
type DBSource string

const (
	DBSourceURL      DBSource = "DATABASE_URL"
	DBSourcePlatform DBSource = "MYSQLHOST"
	DBSourceCustom   DBSource = "DB_HOST"
	DBSourceNamedURL DBSource = "MYSQL_interiordesign"
	DBSourceLocal    DBSource = "local-defaults"
)

const (
	defaultDBPort  = "3306"
	defaultDBHost  = "localhost"
	defaultDBUser  = "root"
	defaultDBName  = "pure_pleasure_db"
	tlsSkipVerify  = "skip-verify"
	mysqlURLScheme = "mysql"
)

type Database struct {
	DSN    string
	Source DBSource
	Name   string
	Addr   string
	// CreateIfMissing allows the store to create Name on first connect.
	CreateIfMissing bool
}

// ResolveDatabase walks the connection variables in a fixed priority order:
// full connection string, hosting platform defaults, custom names, the custom
// named connection string and, outside production, local defaults.
func ResolveDatabase(lookup func(string) string, production bool) (Database, error) {
	var (
		cfg    *mysql.Config
		source DBSource
		err    error
	)

	switch {
	case lookup("DATABASE_URL") != "":
		source = DBSourceURL
		cfg, err = parseConnString(lookup("DATABASE_URL"))
	case lookup("MYSQLHOST") != "":
		source = DBSourcePlatform
		cfg = fromParts(lookup("MYSQLHOST"), lookup("MYSQLPORT"), lookup("MYSQLUSER"), lookup("MYSQLPASSWORD"), lookup("MYSQLDATABASE"))
		if production {
			cfg.TLSConfig = tlsSkipVerify
		}
	case lookup("DB_HOST") != "":
		source = DBSourceCustom
		cfg = fromParts(lookup("DB_HOST"), lookup("DB_PORT"), orDefault(lookup("DB_USER"), defaultDBUser), lookup("DB_PASSWORD"), orDefault(lookup("DB_NAME"), defaultDBName))
		if production {
			cfg.TLSConfig = tlsSkipVerify
		}
	case lookup("MYSQL_interiordesign") != "":
		source = DBSourceNamedURL
		cfg, err = parseConnString(lookup("MYSQL_interiordesign"))
	case !production:
		source = DBSourceLocal
		cfg = fromParts(defaultDBHost, defaultDBPort, defaultDBUser, "", defaultDBName)
	default:
		return Database{}, fmt.Errorf("no database configuration found for production: set DATABASE_URL, MYSQLHOST, DB_HOST or MYSQL_interiordesign")
	}
	if err != nil {
		return Database{}, fmt.Errorf("%s: %w", source, err)
	}
	if cfg.DBName == "" {
		return Database{}, fmt.Errorf("%s: database name is required", source)
	}

	cfg.ParseTime = true
	cfg.Loc = time.UTC

	return Database{
		DSN:             cfg.FormatDSN(),
		Source:          source,
		Name:            cfg.DBName,
		Addr:            cfg.Addr,
		CreateIfMissing: !production,
	}, nil
}

func parseConnString(raw string) (*mysql.Config, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		cfg, err := mysql.ParseDSN(raw)
		if err != nil {
			return nil, fmt.Errorf("parse dsn: %w", err)
		}
		return cfg, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != mysqlURLScheme && u.Scheme != "mariadb" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	password, _ := u.User.Password()
	cfg := fromParts(u.Hostname(), u.Port(), u.User.Username(), password, strings.TrimPrefix(u.Path, "/"))
	q := u.Query()
	if ssl := q.Get("ssl"); ssl != "" && ssl != "false" {
		cfg.TLSConfig = tlsSkipVerify
	}
	if tlsMode := q.Get("tls"); tlsMode != "" {
		cfg.TLSConfig = tlsMode
	}
	return cfg, nil
}

func fromParts(host, port, user, password, dbName string) *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, orDefault(port, defaultDBPort))
	cfg.User = user
	cfg.Passwd = password
	cfg.DBName = dbName
	return cfg
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
