// Command corekit generates and inspects snowflake ids and tokens from a
// terminal.
//
// Usage
//
//	corekit id new -n 5 --worker 3
//	corekit id parse 1541815603606036480
//	corekit token issue --secret s3cret --days 1 '{"user_id":42}'
//	corekit token verify --secret s3cret eyJhbGciOi...
package main

import (
	"os"

	"github.com/dfodeker/corekit/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	level, err := logging.ParseLevel(os.Getenv("COREKIT_LOG_LEVEL"))
	if err != nil {
		level, _ = logging.ParseLevel("warn")
	}
	log.Logger = logging.New(os.Stderr, logging.DefaultConfig().WithConsoleLevel(level))

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
