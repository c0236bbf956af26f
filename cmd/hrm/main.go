// Command hrm is the interactive front end for local strips: it prompts for
// a CSV path and an optional BPM window, runs the analysis pipeline, and
// writes the metrics JSON next to the input file.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kofferdahl/bme590hrm/internal/ecg"
	"github.com/kofferdahl/bme590hrm/internal/reader"
	"github.com/kofferdahl/bme590hrm/internal/writer"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	in := bufio.NewReader(os.Stdin)

	path := prompt(in, "Please enter a CSV file name: ")
	window := promptWindow(in)

	times, voltages, err := reader.Read(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to read CSV strip")
	}

	rec, err := ecg.Sanitize(times, voltages)
	if err != nil {
		log.Fatal().Err(err).Msg("Recording rejected")
	}

	resolved, err := ecg.ResolveWindow(rec, window)
	if err != nil {
		var invalid *ecg.InvalidWindowError
		if errors.As(err, &invalid) {
			log.Warn().Err(invalid).Msg("Requested window out of range, using full recording")
			resolved, _ = ecg.ResolveWindow(rec, nil)
		} else {
			log.Fatal().Err(err).Msg("Failed to resolve analysis window")
		}
	}

	metrics := ecg.Analyze(rec, resolved)

	fmt.Printf("duration: %.3f s\n", metrics.Duration)
	fmt.Printf("voltage extremes: (%.3f, %.3f) mV\n", metrics.VoltageMin, metrics.VoltageMax)
	fmt.Printf("beats detected: %d\n", metrics.NumBeats)
	fmt.Printf("mean HR over (%.2f, %.2f): %.1f BPM\n",
		metrics.Window.Start, metrics.Window.End, metrics.MeanHRBPM)

	outPath, err := writer.Write(metrics, path)
	if err != nil {
		if errors.Is(err, writer.ErrInvalidMetrics) {
			log.Error().Strs("flags", metrics.Flags).Msg("Metrics not persisted")
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to write metrics")
	}
	fmt.Printf("metrics written to %s\n", outPath)
}

func prompt(in *bufio.Reader, msg string) string {
	fmt.Print(msg)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptWindow(in *bufio.Reader) *ecg.Window {
	answer := prompt(in, "Would you like to enter a window for BPM calculation? Enter 1 for yes, 0 for no: ")
	if answer != "1" {
		return nil
	}

	start := promptFloat(in, "Please enter the window start in seconds: ")
	end := promptFloat(in, "Please enter the window end in seconds: ")
	return &ecg.Window{Start: start, End: end}
}

func promptFloat(in *bufio.Reader, msg string) float64 {
	for {
		raw := prompt(in, msg)
		v, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			return v
		}
		fmt.Printf("%q is not a number, try again\n", raw)
	}
}
