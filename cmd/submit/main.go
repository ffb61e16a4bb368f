// Command submit sends a lead through the submission form from the
// command line. It runs the same validation the web form applies before
// posting to the API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/sprachraum/lead-platform/internal/form"
	"github.com/sprachraum/lead-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	var (
		baseURL   = flag.String("url", envOr("API_BASE_URL", "http://localhost:8080"), "base URL of the lead API")
		firstName = flag.String("first-name", "", "first name")
		lastName  = flag.String("last-name", "", "last name")
		phone     = flag.String("phone", "", "phone number, digits with optional leading +")
		email     = flag.String("email", "", "email address")
		startDate = flag.String("start-date", "", "desired start date")
		city      = flag.String("city", "", "city")
		goals     = flag.String("goals", "", "learning goals (optional)")
		consent   = flag.Bool("consent", false, "agree to be contacted regarding courses and offers")
		timeout   = flag.Duration("timeout", 30*time.Second, "overall submission timeout")
		logLevel  = flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := logging.New(*logLevel)

	f := form.New(
		form.NewHTTPSubmitter(*baseURL, form.WithSubmitterLogger(logger)),
		form.WithLogger(logger),
		form.WithSuccessHandler(func() {
			fmt.Println("Submission accepted.")
		}),
	)

	f.SetField(form.FieldFirstName, *firstName)
	f.SetField(form.FieldLastName, *lastName)
	f.SetField(form.FieldPhone, *phone)
	f.SetField(form.FieldEmail, *email)
	f.SetField(form.FieldStartDate, *startDate)
	f.SetField(form.FieldCity, *city)
	f.SetField(form.FieldGoals, *goals)
	f.SetField(form.FieldConsent, *consent)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := f.Submit(ctx); err != nil {
		var rejection *form.SubmissionError
		switch {
		case errors.Is(err, form.ErrInvalidFields):
			fmt.Fprintln(os.Stderr, "Fix the following fields:")
			printFieldErrors(f.Errors())
		case errors.As(err, &rejection):
			fmt.Fprintf(os.Stderr, "Rejected: %s\n", rejection.Reason)
		default:
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func printFieldErrors(errs map[string]string) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", k, errs[k])
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
