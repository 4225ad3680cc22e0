package main

import (
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"

	"literature-lite/internal/log"
	"literature-lite/replay"
)

func main() {
	specPath := flag.String("spec", "-", "game spec JSON file, - for stdin")
	wire := flag.Bool("wire", false, "emit base64 envelopes instead of the plain tape")
	level := flag.String("log", "warn", "log level")
	flag.Parse()
	log.Init("replay", *level)

	raw, err := readSpec(*specPath)
	if err != nil {
		log.Fatal("[Replay] read %s: %v", *specPath, err)
	}
	var spec replay.GameSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		log.Fatal("[Replay] decode spec: %v", err)
	}

	tape, err := replay.Run(spec)
	if err != nil {
		var replayErr *replay.ReplayError
		if errors.As(err, &replayErr) {
			_ = writeJSON(replayErr)
			os.Exit(2)
		}
		log.Fatal("[Replay] %v", err)
	}

	var out any = tape
	if *wire {
		if out, err = replay.ToWire(tape); err != nil {
			log.Fatal("[Replay] %v", err)
		}
	}
	if err := writeJSON(out); err != nil {
		log.Fatal("[Replay] write: %v", err)
	}
}

func readSpec(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
