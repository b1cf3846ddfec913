package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RecordsBackend string

const (
	RecordsNone     RecordsBackend = "none"
	RecordsPostgres RecordsBackend = "postgres"
	RecordsSQLite   RecordsBackend = "sqlite"
)

// Records selects where finished games are logged. Without RECORDS_BACKEND
// postgres is used when DATABASE_URL or POSTGRES_HOST is set.
func Records() (RecordsBackend, error) {
	backend, ok := os.LookupEnv("RECORDS_BACKEND")
	if !ok {
		_, hasURL := os.LookupEnv("DATABASE_URL")
		_, hasHost := os.LookupEnv("POSTGRES_HOST")
		if hasURL || hasHost {
			return RecordsPostgres, nil
		}
		return RecordsNone, nil
	}
	switch b := RecordsBackend(strings.ToLower(backend)); b {
	case RecordsNone, RecordsPostgres, RecordsSQLite:
		return b, nil
	default:
		return "", fmt.Errorf("unknown RECORDS_BACKEND %q", backend)
	}
}

func SQLitePath() string {
	path, ok := os.LookupEnv("SQLITE_PATH")
	if !ok {
		return "records.db"
	}
	return path
}

type Database struct {
	Username string
	Password string
	Host     string
	Port     uint16
	DBName   string
	SSLMode  string
}

func loadPassword() (string, error) {
	password, ok := os.LookupEnv("POSTGRES_PASSWORD")
	if ok {
		return password, nil
	}

	passwordFile, ok := os.LookupEnv("POSTGRES_PASSWORD_FILE")
	if !ok {
		return "", fmt.Errorf("no POSTGRES_PASSWORD or POSTGRES_PASSWORD_FILE env variable set")
	}

	data, err := os.ReadFile(passwordFile)
	if err != nil {
		return "", fmt.Errorf("unable to read from password file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

func NewDatabase() (*Database, error) {
	username, ok := os.LookupEnv("POSTGRES_USER")
	if !ok {
		return nil, fmt.Errorf("no POSTGRES_USER env variable set")
	}

	password, err := loadPassword()
	if err != nil {
		return nil, fmt.Errorf("unable to load password: %w", err)
	}

	host, ok := os.LookupEnv("POSTGRES_HOST")
	if !ok {
		return nil, fmt.Errorf("no POSTGRES_HOST env variable set")
	}

	port := 5432
	if portStr, ok := os.LookupEnv("POSTGRES_PORT"); ok {
		port, err = strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("unable to convert port to int: %w", err)
		}
	}

	dbName, ok := os.LookupEnv("POSTGRES_DB")
	if !ok {
		return nil, fmt.Errorf("no POSTGRES_DB env variable set")
	}

	sslMode, ok := os.LookupEnv("POSTGRES_SSLMODE")
	if !ok {
		sslMode = "disable"
	}

	config := &Database{
		Username: username,
		Password: password,
		Host:     host,
		Port:     uint16(port),
		DBName:   dbName,
		SSLMode:  sslMode,
	}

	return config, nil
}

func (c Database) URL() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.Username),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	)
}

func DbURL() (string, error) {
	dbURL, ok := os.LookupEnv("DATABASE_URL")
	if ok {
		return dbURL, nil
	}

	cfg, err := NewDatabase()
	if err != nil {
		return "", fmt.Errorf("no DATABASE_URL set; %w", err)
	}

	return cfg.URL(), nil
}

func NewPgxpoolConfig() (*pgxpool.Config, error) {
	dbURL, err := DbURL()
	if err != nil {
		return nil, err
	}
	return pgxpool.ParseConfig(dbURL)
}
