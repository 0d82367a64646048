package config

import (
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestResolveDatabasePriority(t *testing.T) {
	all := map[string]string{
		"DATABASE_URL":         "mysql://url:pw@url-host:3307/url_db",
		"MYSQLHOST":            "platform-host",
		"MYSQLUSER":            "platform",
		"MYSQLDATABASE":        "platform_db",
		"DB_HOST":              "custom-host",
		"DB_NAME":              "custom_db",
		"MYSQL_interiordesign": "named:pw@tcp(named-host:3306)/named_db",
	}

	cases := []struct {
		drop   []string
		source DBSource
		addr   string
		name   string
	}{
		{nil, DBSourceURL, "url-host:3307", "url_db"},
		{[]string{"DATABASE_URL"}, DBSourcePlatform, "platform-host:3306", "platform_db"},
		{[]string{"DATABASE_URL", "MYSQLHOST"}, DBSourceCustom, "custom-host:3306", "custom_db"},
		{[]string{"DATABASE_URL", "MYSQLHOST", "DB_HOST"}, DBSourceNamedURL, "named-host:3306", "named_db"},
	}
	for _, tc := range cases {
		vars := map[string]string{}
		for k, v := range all {
			vars[k] = v
		}
		for _, k := range tc.drop {
			delete(vars, k)
		}
		db, err := ResolveDatabase(lookupFrom(vars), true)
		require.NoError(t, err)
		assert.Equal(t, tc.source, db.Source)
		assert.Equal(t, tc.addr, db.Addr)
		assert.Equal(t, tc.name, db.Name)
		assert.False(t, db.CreateIfMissing)

		parsed, err := mysql.ParseDSN(db.DSN)
		require.NoError(t, err)
		assert.True(t, parsed.ParseTime, "parseTime must be forced for %s", tc.source)
	}
}

func TestResolveDatabaseProductionTLS(t *testing.T) {
	db, err := ResolveDatabase(lookupFrom(map[string]string{"MYSQLHOST": "h", "MYSQLDATABASE": "d"}), true)
	require.NoError(t, err)
	assert.Contains(t, db.DSN, "tls=skip-verify")

	db, err = ResolveDatabase(lookupFrom(map[string]string{"MYSQLHOST": "h", "MYSQLDATABASE": "d"}), false)
	require.NoError(t, err)
	assert.NotContains(t, db.DSN, "tls=")
}

func TestResolveDatabaseLocalDefaults(t *testing.T) {
	db, err := ResolveDatabase(lookupFrom(nil), false)
	require.NoError(t, err)
	assert.Equal(t, DBSourceLocal, db.Source)
	assert.Equal(t, "localhost:3306", db.Addr)
	assert.Equal(t, "pure_pleasure_db", db.Name)
	assert.True(t, db.CreateIfMissing)
	assert.True(t, strings.HasPrefix(db.DSN, "root@tcp(localhost:3306)/pure_pleasure_db"))
}

func TestResolveDatabaseProductionRequiresConfig(t *testing.T) {
	_, err := ResolveDatabase(lookupFrom(nil), true)
	require.Error(t, err)
}

func TestResolveDatabaseRejectsBadURL(t *testing.T) {
	_, err := ResolveDatabase(lookupFrom(map[string]string{"DATABASE_URL": "postgres://u@h/d"}), false)
	require.Error(t, err)

	_, err = ResolveDatabase(lookupFrom(map[string]string{"DATABASE_URL": "mysql://u@h:3306/"}), false)
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("SHOWROOM_BIND", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MYSQLHOST", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("MYSQL_interiordesign", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("TOKEN_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultEnv, cfg.Env)
	assert.Equal(t, ":3000", cfg.Bind)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, DefaultMaxImageBytes, cfg.MaxImageBytes)
	assert.Equal(t, DefaultMaxVideoBytes, cfg.MaxVideoBytes)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, DefaultCORSAllowedOrigins, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.YouTube.Configured())
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "mysql://u:p@h:3306/d")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoadNodeEnvFallback(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "staging")
	t.Setenv("PORT", "8081")
	t.Setenv("SHOWROOM_BIND", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, ":8081", cfg.Bind)
}
