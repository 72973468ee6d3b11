package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env tidak ditemukan, pakai env system")
	}
}

func GetEnv(key string, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func GetEnvInt(key string, defaultVal int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return val
}

// Location - zona waktu acara, dipakai untuk cek jadwal voting.
func Location() *time.Location {
	loc, err := time.LoadLocation(GetEnv("APP_TIMEZONE", "Asia/Jakarta"))
	if err != nil {
		log.Printf("[config] APP_TIMEZONE tidak valid, pakai UTC: %v", err)
		return time.UTC
	}
	return loc
}

// Now bisa diganti di test.
var Now = time.Now

// LocalNow - waktu sekarang di zona waktu acara.
func LocalNow() time.Time {
	return Now().In(Location())
}
