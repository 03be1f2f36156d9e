package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-finance-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "finance",
		Password: "secret",
		Name:     "school_finance",
		SSLMode:  "disable",
	})
	assert.Equal(t, "host=db port=5433 user=finance password=secret dbname=school_finance sslmode=disable", dsn)
}

func TestDSNQuotesAwkwardValues(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "finance",
		Password: `p@ss word'\`,
		Name:     "school_finance",
	})
	assert.Equal(t, `host=db port=5432 user=finance password='p@ss word\'\\' dbname=school_finance`, dsn)

	dsn = DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "finance", Name: "x", SSLMode: "require"})
	assert.Equal(t, "host=db port=5432 user=finance password='' dbname=x sslmode=require", dsn)
}
