package config

import (
	"database/sql"
	_ "embed"
	"log"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

//go:embed schema.sql
var schemaSQL string

var DB *sql.DB

func InitDB() {
	cfg := mysql.NewConfig()
	cfg.User = GetEnv("DB_USER", "root")
	cfg.Passwd = GetEnv("DB_PASSWORD", "")
	cfg.Net = "tcp"
	cfg.Addr = GetEnv("DB_HOST", "127.0.0.1") + ":" + GetEnv("DB_PORT", "3306")
	cfg.DBName = GetEnv("DB_NAME", "evoting")
	cfg.ParseTime = true
	cfg.Loc = Location()
	cfg.MultiStatements = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		log.Fatal("Gagal membuka koneksi database:", err)
	}

	db.SetMaxOpenConns(GetEnvInt("DB_MAX_OPEN_CONNS", 25))
	db.SetMaxIdleConns(GetEnvInt("DB_MAX_IDLE_CONNS", 10))
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("Database tidak nyambung:", err)
	}

	DB = db
	log.Println("Database connected (", cfg.DBName, ")")
}

func CloseDB() {
	if DB != nil {
		DB.Close()
	}
}

// SchemaStatements - isi schema.sql dipecah per statement.
func SchemaStatements() []string {
	var stmts []string
	for _, s := range strings.Split(schemaSQL, ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
