package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"strukscan/pkg/config"
	"strukscan/pkg/store"
	"strukscan/process/report"
)

func main() {
	username := flag.String("username", "admin", "username to report for (admin reports cover everyone)")
	month := flag.String("month", time.Now().UTC().Format("2006-01"), "month to report (YYYY-MM)")
	list := flag.Bool("list", false, "list matching receipts")
	xlsx := flag.String("xlsx", "", "also write the receipts to this XLSX file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := store.Open(cfg.DBDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v; export DB_DSN and retry\n", err)
		os.Exit(2)
	}
	if err := report.RunReport(db, os.Stdout, *username, *month, *list, *xlsx); err != nil {
		log.Fatal(err)
	}
	if *xlsx != "" {
		fmt.Printf("wrote %s\n", *xlsx)
	}
}
