package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   access-token HMAC secret
//	-m string   email-token HMAC secret
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-o int      one-time code validity, minutes
//	-v string   public email-verification URL
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values. A duration is only written back when its flag
//     was actually provided, so values coming from JSON or the environment
//     keep their sub-minute precision.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-m", "-t", "-r", "-o", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "access-token secret key")
	fs.StringVar(&config.EmailTokenSecret, "m", config.EmailTokenSecret, "email-token secret key")

	accessTokenValidityDuration := fs.Int("t", 0, "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", 0, "refresh_token_validity_duration (in minutes)")
	otpValidityDuration := fs.Int("o", 0, "otp_validity_duration (in minutes)")

	fs.StringVar(&config.VerifyEmailURL, "v", config.VerifyEmailURL, "public email-verification URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
		case "o":
			config.OTPValidityDuration = time.Duration(*otpValidityDuration) * time.Minute
		}
	})
}
