package cli

import (
	"context"
	"fmt"
	"strings"
)

// Stats prints the public platform counters. The lookup is best-effort: when
// the backend is unreachable nothing is shown and the command still succeeds.
func (a *App) Stats(ctx context.Context) error {
	stats, ok := a.apiClient.PublicStats(ctx)
	if !ok {
		fmt.Fprintln(a.out, "Stats are not available right now.")
		return nil
	}
	fmt.Fprintf(a.out, "Students: %d\nTeachers: %d\nClasses: %d\n",
		stats.Students, stats.Teachers, stats.Classes)
	return nil
}

// Feedback prompts for a free-form text and submits it. Submission is
// best-effort and a failure is reported but not returned as an error.
func (a *App) Feedback(ctx context.Context) error {
	text, err := getSimpleText(a.reader, "Your feedback: ", a.out)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(a.out, "Nothing to send.")
		return nil
	}
	if a.apiClient.SubmitFeedback(ctx, a.session.Token(), text) {
		fmt.Fprintln(a.out, "Thank you for your feedback!")
	} else {
		fmt.Fprintln(a.out, "Could not deliver feedback, please try again later.")
	}
	return nil
}

// Whoami prints the signed-in user's profile.
func (a *App) Whoami(ctx context.Context) error {
	user := a.session.User()
	if user == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>", user.Name, user.Email)
	if user.Role != "" {
		fmt.Fprintf(a.out, " (%s)", user.Role)
	}
	fmt.Fprintln(a.out)
	return nil
}
