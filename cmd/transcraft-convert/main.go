// Command transcraft-convert runs one file through the conversion
// pipeline and writes each rendered artifact next to it — no bus, no
// job store, grounded on loqa-skill's one-shot CLI simplicity rather
// than on the daemon's always-on runtime.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brightcue/transcraft/internal/assembler"
	"github.com/brightcue/transcraft/internal/emit/extinput"
	"github.com/brightcue/transcraft/internal/pipeline"
)

var version = "0.1.0-dev"

func main() {
	var (
		inPath      string
		outDir      string
		sourceName  string
		legacyInput bool
		showVersion bool
	)

	flag.StringVar(&inPath, "in", "", "Path to a JSON file of source tokens")
	flag.StringVar(&outDir, "out", ".", "Directory to write converted artifacts into")
	flag.StringVar(&sourceName, "source-name", "", "Source name carried into the output artifacts (defaults to the input file's base name)")
	flag.BoolVar(&legacyInput, "legacy-input", false, "Treat -in as a loosely-shaped vendor word-array JSON instead of the native SourceToken schema (bypasses the assembler and caption-only features)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		return
	}

	if inPath == "" {
		fmt.Fprintln(os.Stderr, "transcraft-convert: -in is required")
		os.Exit(2)
	}

	if sourceName == "" {
		sourceName = filepath.Base(inPath)
	}

	if err := run(inPath, outDir, sourceName, legacyInput); err != nil {
		fmt.Fprintf(os.Stderr, "transcraft-convert: %v\n", err)
		os.Exit(1)
	}
}

func run(inPath, outDir, sourceName string, legacyInput bool) error {
	raw, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if legacyInput {
		return convertLegacy(raw, outDir, sourceName)
	}

	var tokens []assembler.SourceToken
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return fmt.Errorf("parse source tokens: %w", err)
	}

	result, err := pipeline.Convert(context.Background(), tokens, pipeline.Options{SourceName: sourceName})
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "transcraft-convert: warning: %v\n", w)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	stem := stripExt(filepath.Base(sourceName))

	writers := []struct {
		suffix string
		encode func() ([]byte, error)
	}{
		{".broadcast.srt", stringWriter(result.SRT.Broadcast)},
		{".social.srt", stringWriter(result.SRT.Social)},
		{".editor.json", jsonWriter(result.EditorJSON)},
		{".txt", stringWriter(result.PlainText)},
		{".md", stringWriter(result.Markdown)},
		{".kinetic-row1.json", jsonWriter(result.Kinetic.Row1)},
		{".kinetic-row2.json", jsonWriter(result.Kinetic.Row2)},
		{".kinetic-row3.json", jsonWriter(result.Kinetic.Row3)},
	}

	for _, w := range writers {
		data, err := w.encode()
		if err != nil {
			return fmt.Errorf("encode %s: %w", w.suffix, err)
		}
		path := filepath.Join(outDir, stem+w.suffix)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	return nil
}

func convertLegacy(raw []byte, outDir, sourceName string) error {
	words, err := extinput.ParseJSON(raw)
	if err != nil {
		return fmt.Errorf("parse legacy input: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(words, "", "  ")
	if err != nil {
		return fmt.Errorf("encode recovered words: %w", err)
	}
	stem := stripExt(filepath.Base(sourceName))
	path := filepath.Join(outDir, stem+".recovered-words.json")
	return os.WriteFile(path, data, 0o644)
}

func stringWriter(s string) func() ([]byte, error) {
	return func() ([]byte, error) { return []byte(s), nil }
}

func jsonWriter(v interface{}) func() ([]byte, error) {
	return func() ([]byte, error) { return json.MarshalIndent(v, "", "  ") }
}

func stripExt(name string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)]
}
