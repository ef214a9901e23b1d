package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vietddude/authkit/internal/core/apperr"
	"github.com/vietddude/authkit/internal/core/classify"
	"github.com/vietddude/authkit/internal/core/present"
	"github.com/vietddude/authkit/internal/core/retry"
)

var (
	classifyStatus     int
	classifyBody       string
	classifyRetryAfter string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a synthetic HTTP error response",
	Example: `  authkit classify --status 429 --body '{"retry_after":30,"limit":5}'
  authkit classify --status 422 --body '{"errors":{"email":["required"]}}'`,
	Run: func(cmd *cobra.Command, args []string) {
		resp := classify.HTTPResponse{
			StatusCode: classifyStatus,
			Body:       []byte(classifyBody),
			Header:     http.Header{},
		}
		if classifyRetryAfter != "" {
			resp.Header.Set("Retry-After", classifyRetryAfter)
		}
		if err := describe(cmd.OutOrStdout(), classify.Classify(resp), retry.DefaultPolicy()); err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	classifyCmd.Flags().IntVar(&classifyStatus, "status", 500, "HTTP status code")
	classifyCmd.Flags().StringVar(&classifyBody, "body", "", "response body")
	classifyCmd.Flags().StringVar(&classifyRetryAfter, "retry-after", "", "Retry-After header value")
	rootCmd.AddCommand(classifyCmd)
}

// describe prints the classification of ce and what the client would do with it.
func describe(w io.Writer, ce apperr.ClassifiedError, policy retry.Policy) error {
	var b strings.Builder
	fmt.Fprintf(&b, "kind:      %s\n", ce.Kind())
	fmt.Fprintf(&b, "message:   %s\n", ce.Message())

	switch e := ce.(type) {
	case apperr.ValidationError:
		fields := make([]string, 0, len(e.FieldErrors))
		for f := range e.FieldErrors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(&b, "field:     %s: %s\n", f, strings.Join(e.FieldErrors[f], "; "))
		}
	case apperr.RateLimitedError:
		if e.RetryAfter != nil {
			fmt.Fprintf(&b, "retry in:  %s\n", *e.RetryAfter)
		}
		if e.Limit != nil {
			fmt.Fprintf(&b, "limit:     %d\n", *e.Limit)
		}
	case apperr.NetworkError:
		fmt.Fprintf(&b, "status:    %d\n", e.StatusCode)
	case apperr.ServerError:
		fmt.Fprintf(&b, "status:    %d\n", e.StatusCode)
		if e.ErrorCode != "" {
			fmt.Fprintf(&b, "code:      %s\n", e.ErrorCode)
		}
	}

	retryable := policy.ShouldRetry(ce)
	fmt.Fprintf(&b, "retryable: %t\n", retryable)
	if retryable {
		fmt.Fprintf(&b, "delay:     %s\n", policy.NextDelay(ce, 1))
	}
	fmt.Fprintf(&b, "present:   %s\n", present.ModeFor(ce))

	_, err := io.WriteString(w, b.String())
	return err
}
