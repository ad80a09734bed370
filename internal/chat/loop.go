package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/exedev/dbchat/internal/errors"
	"github.com/exedev/dbchat/internal/output"
)

// RunLoop drives the plain interactive loop: each line is a query, with
// two commands — "quit" exits, "refresh" clears the conversation history.
// Turn failures are reported and the loop continues; the transcript up to
// the failure remains in play.
func RunLoop(ctx context.Context, client *Client, printer *output.Printer, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "\nQuery: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}

		switch strings.ToLower(query) {
		case "quit":
			return nil
		case "refresh":
			client.Store().Clear()
			printer.Info("Conversation history cleared.")
			continue
		}

		response, err := client.ProcessQuery(ctx, query)
		if err != nil {
			printer.Error(err, errors.IsRetryable(err))
			continue
		}
		printer.Response(response)
	}
}
