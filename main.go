package main

import (
	"fmt"
	"log"
	"os"

	"strukscan/pkg/config"
	"strukscan/pkg/scan"

	"github.com/gin-gonic/gin"
)

var (
	cfg       *config.Config
	jwtSecret []byte
	scanner   *scan.Scanner
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	jwtSecret = []byte(cfg.JWTSecret)

	// `./strukscan migrate` runs AutoMigrate and seeding then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		cfg.DBAutoMigrate = true
		initDB(cfg)
		fmt.Println("migration and seeding completed")
		return
	}

	initDB(cfg)

	scanner, err = scan.FromConfig(cfg.OCR)
	if err != nil {
		log.Fatalf("ocr: %v", err)
	}
	log.Printf("OCR engine=%s lang=%s psm=%s", cfg.OCR.Engine, cfg.OCR.Lang, cfg.OCR.PSMModes)

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes()
	setupRoutes(r)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
