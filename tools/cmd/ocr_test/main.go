// Command ocr_test runs every page segmentation mode over one image and
// prints each attempt followed by the chosen record.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"strukscan/pkg/config"
	"strukscan/pkg/scan"
)

func main() {
	verbose := flag.Bool("verbose", false, "log each OCR attempt as it runs")
	flag.Parse()
	p := "public/processed/sample.png"
	if flag.NArg() > 0 {
		p = flag.Arg(0)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	sc, err := scan.FromConfig(cfg.OCR)
	if err != nil {
		log.Fatalf("ocr: %v", err)
	}
	sc.Verbose(*verbose)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OCRTimeout)
	defer cancel()
	out := sc.File(ctx, p)

	fmt.Printf("Running OCR on %s\n", p)
	for _, a := range out.Attempts {
		if a.Err != nil {
			fmt.Printf("psm=%-2d err=%v\n", a.PSM, a.Err)
			continue
		}
		fmt.Printf("psm=%-2d conf=%6.2f words=%-4d chars=%d\n", a.PSM, a.Confidence, a.Words, len(a.Text))
	}
	if !out.Failed() {
		fmt.Printf("chosen psm=%d conf=%.2f\n--- ocr text ---\n%s\n----------------\n", out.PSM, out.Confidence, out.OCRText)
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
	if out.Failed() {
		os.Exit(1)
	}
}
