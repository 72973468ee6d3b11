package main

import (
	"errors"
	"flag"
	"log"
	"strings"

	"backend-evoting/internal/config"
	"backend-evoting/internal/helper"
	"backend-evoting/internal/http/handler"
)

func main() {
	seedAdmin := flag.Bool("seed-admin", false, "buat admin pertama dari ADMIN_SEED_*")
	flag.Parse()

	config.LoadEnv()
	config.InitDB()
	defer config.CloseDB()

	for i, stmt := range config.SchemaStatements() {
		if _, err := config.DB.Exec(stmt); err != nil {
			log.Fatalf("[migrate] statement %d gagal: %v", i+1, err)
		}
	}
	log.Println("[migrate] schema OK")

	if !*seedAdmin {
		return
	}

	email := strings.ToLower(strings.TrimSpace(config.GetEnv("ADMIN_SEED_EMAIL", "")))
	password := config.GetEnv("ADMIN_SEED_PASSWORD", "")
	nama := config.GetEnv("ADMIN_SEED_NAMA", "Panitia")
	if email == "" || len(password) < 8 {
		log.Fatal("[migrate] ADMIN_SEED_EMAIL wajib diisi dan ADMIN_SEED_PASSWORD minimal 8 karakter")
	}

	_, err := helper.GetAdminByEmail(email)
	if err == nil {
		log.Println("[migrate] admin", email, "sudah ada, seed dilewati")
		return
	}
	if !errors.Is(err, helper.ErrAdminNotFound) {
		log.Fatalf("[migrate] gagal cek admin: %v", err)
	}

	if _, err := handler.CreateAdminAccount(nama, email, password); err != nil {
		log.Fatalf("[migrate] gagal membuat admin: %v", err)
	}
	log.Println("[migrate] admin", email, "dibuat")
}
