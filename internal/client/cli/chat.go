package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/eduterm/internal/client/api"
	"github.com/dmitrijs2005/eduterm/internal/client/chat"
)

// Chat runs the interactive conversation loop. Each entered line is sent as
// one message; the assistant's reply is rendered fragment by fragment as it
// streams in. An empty line leaves the loop, as does a forced logout.
func (a *App) Chat(ctx context.Context) error {
	if a.chat.SelectedModel() == "" {
		if err := a.chat.FetchModels(ctx); err != nil {
			fmt.Fprintf(a.out, "Could not load models: %s\n", err)
			return err
		}
	}
	fmt.Fprintf(a.out, "Chatting with %s. Empty line to leave.\n", a.chat.SelectedModel())

	for {
		line, err := getSimpleText(a.reader, "you", a.out)
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			return nil
		}

		rendered := false
		a.chat.SetOnDelta(func(id, delta string) {
			rendered = true
			fmt.Fprint(a.out, delta)
		})

		fmt.Fprint(a.out, "ai> ")
		sendErr := a.chat.SendMessage(ctx, line)
		a.chat.SetOnDelta(nil)

		if sendErr != nil && !rendered {
			// nothing streamed; the fallback text sits in the transcript
			if msgs := a.chat.Messages(); len(msgs) > 0 {
				fmt.Fprint(a.out, msgs[len(msgs)-1].Content)
			}
		}
		fmt.Fprintln(a.out)

		if errors.Is(sendErr, api.ErrUnauthorized) || errors.Is(sendErr, chat.ErrNotAuthenticated) {
			return sendErr
		}
	}
}

// Models refreshes and prints the available model list, marking the
// selected one.
func (a *App) Models(ctx context.Context) error {
	if err := a.chat.FetchModels(ctx); err != nil {
		fmt.Fprintf(a.out, "Could not load models: %s\n", err)
		return err
	}

	selected := a.chat.SelectedModel()
	for _, id := range a.chat.Models() {
		mark := "  "
		if id == selected {
			mark = "* "
		}
		fmt.Fprintln(a.out, mark+id)
	}
	return nil
}

// SelectModel picks the model for subsequent sends: "model <id>".
func (a *App) SelectModel(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: model <id>")
		return nil
	}
	a.chat.SetSelectedModel(args[0])
	fmt.Fprintf(a.out, "Model set to %s\n", args[0])
	return nil
}

// History prints the stored conversation history, oldest first.
func (a *App) History(ctx context.Context) error {
	msgs, err := a.repos.Transcripts.List(ctx, a.config.HistoryLimit)
	if err != nil {
		fmt.Fprintf(a.out, "Could not read history: %s\n", err)
		return err
	}
	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "No stored messages.")
		return nil
	}
	for _, m := range msgs {
		who := "you"
		if m.IsAI {
			who = "ai"
		}
		fmt.Fprintf(a.out, "[%s] %s: %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04"), who, m.Content)
	}
	return nil
}
