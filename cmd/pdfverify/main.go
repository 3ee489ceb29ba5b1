// Command pdfverify checks the embedded signature of one or more PDF files.
//
// Usage:
//
//	pdfverify [options] <file.pdf>...
//
// The exit status is 0 when every file is valid, 1 when a file is invalid and
// 2 when the arguments, the configuration or a file cannot be read.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	pdfverify "github.com/RichardBray/pdf-verify"
	"github.com/RichardBray/pdf-verify/internal/config"
)

// set at build time with -ldflags "-X main.version=..."
var version = "dev"

const greenText = "\x1b[32m%s\x1b[0m\n"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("pdfverify", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configFile  string
		jsonOutput  bool
		strict      bool
		details     bool
		verbose     bool
		workers     int
		showVersion bool
	)
	flags.StringVar(&configFile, "config", "", "YAML configuration file")
	flags.BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	flags.BoolVar(&strict, "strict", false, "Require the signature to cover the whole file")
	flags.BoolVar(&details, "details", false, "Read field, reason and location from the signature dictionary")
	flags.BoolVar(&verbose, "verbose", false, "Log problems found while collecting details")
	flags.IntVar(&workers, "workers", 0, "Files verified in parallel (0 = one per CPU)")
	flags.BoolVar(&showVersion, "version", false, "Show version information")

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: pdfverify [options] <file.pdf>...\n\n")
		fmt.Fprintln(stderr, "Verify the digital signature of PDF files.")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Options:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "pdfverify version %s\n", version)
		return 0
	}

	if flags.NArg() < 1 {
		flags.Usage()
		return 2
	}

	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		cfg = loaded
	}

	// flags win over the file
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "json":
			if jsonOutput {
				cfg.Output.Format = "json"
			} else {
				cfg.Output.Format = "text"
			}
		case "strict":
			cfg.Verify.StrictByteRange = strict
		case "details":
			cfg.Verify.Details = details
		case "verbose":
			cfg.Logging.Verbose = verbose
		case "workers":
			cfg.Verify.Workers = workers
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	results := pdfverify.VerifyFiles(flags.Args(), cfg.Verify.Workers, opts...)

	if cfg.Output.Format == "json" {
		if err := writeJSON(stdout, results); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
	} else {
		writeText(stdout, results)
	}

	return exitCode(results)
}

func exitCode(results []pdfverify.FileResult) int {
	code := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			return 2
		case !r.Result.Valid():
			code = 1
		}
	}

	return code
}

// report is the JSON shape of one file.
type report struct {
	File      string                   `json:"file"`
	Status    string                   `json:"status"`
	Reason    string                   `json:"reason,omitempty"`
	Error     string                   `json:"error,omitempty"`
	Signature *pdfverify.SignatureInfo `json:"signature,omitempty"`
}

func newReport(r pdfverify.FileResult) report {
	rep := report{File: r.Path}
	if r.Err != nil {
		rep.Status = "ERROR"
		rep.Error = r.Err.Error()
		return rep
	}

	rep.Status = r.Result.Status.String()
	rep.Signature = r.Result.Signature
	if !r.Result.Valid() {
		rep.Reason = r.Result.Reason.String()
		rep.Error = r.Result.Err.Error()
	}

	return rep
}

func writeJSON(w io.Writer, results []pdfverify.FileResult) error {
	reports := make([]report, len(results))
	for i, r := range results {
		reports[i] = newReport(r)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(reports)
}

func writeText(w io.Writer, results []pdfverify.FileResult) {
	for _, r := range results {
		rep := newReport(r)
		fmt.Fprintf(w, "%s: ", rep.File)

		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "cannot read file: %s\n", rep.Error)
			continue
		case r.Result.Valid():
			fmt.Fprintf(w, greenText, "Signature is valid!!!")
		default:
			fmt.Fprintf(w, "Signature is invalid (%s): %s\n", rep.Reason, rep.Error)
		}

		if sig := rep.Signature; sig != nil {
			if len(sig.Certificates) > 0 {
				fmt.Fprintf(w, "  Signer:    %s\n", sig.Certificates[0].Subject)
			}
			fmt.Fprintf(w, "  Algorithm: %s with %s\n", sig.SignatureAlgorithm, sig.DigestAlgorithm)
			fmt.Fprintf(w, "  ByteRange: %s\n", sig.ByteRange)
			if !sig.SigningTime.IsZero() {
				fmt.Fprintf(w, "  Signed:    %s\n", sig.SigningTime.Format("2006-01-02 15:04:05 MST"))
			}
			if sig.Timestamped {
				fmt.Fprintf(w, "  Timestamp: %s\n", sig.Timestamp.Format("2006-01-02 15:04:05 MST"))
			}
			if sig.Reason != "" {
				fmt.Fprintf(w, "  Reason:    %s\n", sig.Reason)
			}
			if sig.Location != "" {
				fmt.Fprintf(w, "  Location:  %s\n", sig.Location)
			}
		}
	}
}
