package scan

import (
	"strukscan/pkg/config"
	"strukscan/pkg/extract"
	"strukscan/pkg/ocr"
)

// FromConfig builds a Scanner for the engine, language and modes in cfg.
func FromConfig(cfg config.OCRConfig) (*Scanner, error) {
	modes, err := cfg.Modes()
	if err != nil {
		return nil, err
	}
	return New(ocr.NewSelector(Recognizer(cfg), modes), extract.NewExtractor(), ocr.DefaultPreprocessOptions()), nil
}

// Recognizer returns the OCR engine selected by cfg.Engine.
func Recognizer(cfg config.OCRConfig) ocr.Recognizer {
	if cfg.Engine == "cli" {
		c := ocr.NewCLIRecognizer(cfg.Lang, cfg.DPI)
		c.TessdataDir = cfg.TessdataPrefix
		return c
	}
	return ocr.NewTesseractRecognizer(cfg.Lang, cfg.DPI)
}
