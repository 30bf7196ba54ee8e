package config

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 60*time.Second, cfg.ReportCacheTTL)
	assert.False(t, cfg.AuthEnabled)
}

func TestSSLMode(t *testing.T) {
	cases := []struct {
		ssl, reject bool
		want        string
	}{
		{false, true, "disable"},
		{false, false, "disable"},
		{true, true, "verify-full"},
		{true, false, "require"},
	}
	for _, tc := range cases {
		c := Config{DBSSL: tc.ssl, DBSSLRejectUnauthorized: tc.reject}
		assert.Equal(t, tc.want, c.SSLMode(), "ssl=%v reject=%v", tc.ssl, tc.reject)
	}
}

func TestPostgresDSN(t *testing.T) {
	c := Config{
		DBHost: "localhost", DBPort: 5433, DBUsername: "pos", DBPassword: "p@ss",
		DBName: "cafe", DBSSL: true, DBMaxConns: 4,
	}
	u, err := url.Parse(c.PostgresDSN())
	require.NoError(t, err)

	assert.Equal(t, "localhost:5433", u.Host)
	assert.Equal(t, "/cafe", u.Path)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss", pw)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
	assert.Equal(t, "4", u.Query().Get("pool_max_conns"))
}

func TestOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, Config{}.Origins())
	assert.Equal(t, []string{"http://a", "http://b"}, Config{CORSOrigins: " http://a, http://b ,"}.Origins())
}
