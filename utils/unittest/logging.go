package unittest

import (
	"flag"
	"io"
	"os"

	"github.com/rs/zerolog"
)

var verbose = flag.Bool("vv", false, "print debugging logs")

// Logger returns a debug level logger that only writes when tests run with -vv.
func Logger() zerolog.Logger {
	var out io.Writer = io.Discard
	if *verbose {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}
