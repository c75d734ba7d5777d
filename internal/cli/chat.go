package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/teller"
	"github.com/aretw0/teller/pkg/domain"
)

// ChatOptions configures an interactive conversation.
type ChatOptions struct {
	SessionID string
	UserID    int64
	In        io.Reader
	Out       io.Writer

	// Render formats replies for the terminal. Nil prints them as is.
	Render func(string) (string, error)

	// Quiet drops the prompt and system messages, for piped input.
	Quiet bool
}

// Commands understood by the chat loop besides customer messages.
const (
	cmdReset   = "/reset"
	cmdContext = "/context"
)

var quitWords = map[string]bool{"q": true, "quit": true, "exit": true}

// RunChat converses with eng line by line until the input ends, the user
// quits or ctx is done.
func RunChat(ctx context.Context, eng *teller.Engine, opts ChatOptions) error {
	msg := domain.Message{SessionID: opts.SessionID, UserID: opts.UserID}
	key := teller.SessionKey(msg)

	if !opts.Quiet {
		if msg.Authenticated() {
			printSystemMessage(opts.Out, "Connecté en tant que client %d (session %q). Tapez 'q' pour quitter.", opts.UserID, key)
		} else {
			printSystemMessage(opts.Out, "Mode anonyme (session %q). Tapez 'q' pour quitter.", key)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(opts.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		readErr <- err
	}()

	for {
		if !opts.Quiet {
			fmt.Fprint(opts.Out, "> ")
		}

		var line string
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if isInterrupted(err) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		case line = <-lines:
		}

		text := strings.TrimSpace(line)
		switch {
		case quitWords[strings.ToLower(text)]:
			return nil
		case text == cmdReset:
			if key != "" {
				if err := eng.Reset(ctx, key); err != nil {
					return fmt.Errorf("failed to reset session: %w", err)
				}
			}
			printSystemMessage(opts.Out, "Conversation réinitialisée.")
			continue
		case text == cmdContext:
			printContext(ctx, eng, opts.Out, key)
			continue
		}

		msg.Text = line
		res, err := eng.ProcessMessage(ctx, msg)
		if err != nil && ctx.Err() != nil {
			return nil
		}
		writeReply(opts, res.Response)
	}
}

func writeReply(opts ChatOptions, reply string) {
	if opts.Render != nil {
		if out, err := opts.Render(reply); err == nil {
			fmt.Fprint(opts.Out, out)
			return
		}
	}
	fmt.Fprintln(opts.Out, reply)
}

func printContext(ctx context.Context, eng *teller.Engine, w io.Writer, key string) {
	if key == "" {
		printSystemMessage(w, "Aucune session persistée en mode anonyme.")
		return
	}
	st, err := eng.Context(ctx, key)
	if err != nil {
		printSystemMessage(w, "Session indisponible: %v", err)
		return
	}
	if !st.Active() {
		printSystemMessage(w, "Aucune opération en cours (%d messages).", st.Turns)
		return
	}
	printSystemMessage(w, "Opération en cours: %s %v", st.CurrentIntent, st.Entities)
}
