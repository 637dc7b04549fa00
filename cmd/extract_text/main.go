// Command extract_text reads recognized receipt text from a file or stdin and
// prints the extracted record as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"strukscan/pkg/extract"
	"strukscan/pkg/ocr"
	"strukscan/pkg/scan"
)

func main() {
	indent := flag.Bool("indent", true, "pretty-print the JSON record")
	flag.Parse()

	in := io.Reader(os.Stdin)
	if flag.NArg() > 0 && flag.Arg(0) != "-" {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatalf("open: %v", err)
		}
		defer f.Close()
		in = f
	}
	if err := run(in, os.Stdout, *indent); err != nil {
		log.Fatal(err)
	}
}

func run(in io.Reader, out io.Writer, indent bool) error {
	text, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	rec := scan.New(nil, extract.NewExtractor(), ocr.DefaultPreprocessOptions()).Text(string(text))
	enc := json.NewEncoder(out)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(rec)
}
