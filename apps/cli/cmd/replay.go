package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/curlite/packages/http"
	"github.com/abdul-hamid-achik/curlite/packages/import/curl"
	"github.com/spf13/cobra"
)

func newReplayCmd(g *globalFlags) *cobra.Command {
	var (
		file   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "replay [curl command]",
		Short: "Run curl command lines through curlite",
		Long: `Parse curl command lines and send them through curlite, printing
structured responses. Commands come from the argument or from a file with
one command per line (backslash continuations and # comments allowed).

Examples:
  curlite replay "curl -X POST https://api.example.com/users -d 'name=John'"
  curlite replay -- curl -H "Accept: application/json" https://api.example.com
  curlite replay --file requests.sh --raise`,
		RunE: func(cmd *cobra.Command, args []string) error {
			converter := curl.NewConverter(curl.WithStrict(strict))

			var requests []*http.Request
			switch {
			case file != "" && len(args) > 0:
				return usageError(errors.New("pass either a curl command or --file, not both"))
			case file != "":
				parsed, err := converter.ParseFile(file)
				if err != nil {
					return usageError(err)
				}
				requests = parsed
			case len(args) > 0:
				req, err := converter.Parse(joinCommand(args))
				if err != nil {
					return usageError(err)
				}
				requests = append(requests, req)
			default:
				return usageError(errors.New("a curl command or --file is required"))
			}

			s, err := newSession(cmd, g, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			var firstErr error
			for _, req := range requests {
				if err := s.send(cmd.Context(), req); err != nil && firstErr == nil {
					firstErr = err
				}
				if cmd.Context().Err() != nil {
					break
				}
			}

			if len(requests) > 1 && s.config.GetVerbose() {
				st := s.client.Stats()
				fmt.Fprintf(cmd.ErrOrStderr(), "%d transfers, %d failed, p50 %s, p95 %s, max %s\n",
					st.Transfers, st.Failures, st.P50, st.P95, st.Max)
			}
			return firstErr
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File with curl commands to replay")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject curl options curlite does not understand")
	return cmd
}

// joinCommand rebuilds a command line from shell-split arguments. A single
// argument is taken as the whole command.
func joinCommand(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	if args[0] == "curl" {
		args = args[1:]
	}
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
	}
	return "curl " + strings.Join(quoted, " ")
}
