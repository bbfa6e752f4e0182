package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/eduterm/internal/common"
	"golang.org/x/sync/errgroup"
)

// getSimpleText, getPassword and getConfirm are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getConfirm    = GetConfirm
)

// Register prompts for email, password and display name, creates the
// account and establishes the session. The remember-me choice is recorded
// before the credential is persisted, same as Login.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, loginPrompt, a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, namePrompt, a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	remember, err := getConfirm(a.reader, "Stay logged in after closing?", a.out)
	if err != nil {
		return err
	}

	token, user, err := a.apiClient.Register(ctx, email, string(password), name)
	if err != nil {
		fmt.Fprintf(a.out, "Registration failed: %s\n", err)
		return err
	}

	a.session.SetRememberMe(remember)
	if err := a.session.Establish(ctx, token, user); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	a.warmUp(ctx)
	return nil
}

// Login prompts for credentials, authenticates against the server and
// establishes the session according to the remember-me choice.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, loginPrompt, a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	remember, err := getConfirm(a.reader, "Stay logged in after closing?", a.out)
	if err != nil {
		return err
	}

	token, user, err := a.apiClient.Login(ctx, email, string(password))
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %s\n", err)
		return err
	}

	a.session.SetRememberMe(remember)
	if err := a.session.Establish(ctx, token, user); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", user.Name)
	a.warmUp(ctx)
	return nil
}

// ResetPassword drives the two-step reset flow: request a code by email,
// then submit the code together with the new password.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, loginPrompt, a.out)
	if err != nil {
		return err
	}

	if err := a.apiClient.SendCode(ctx, email); err != nil {
		fmt.Fprintf(a.out, "Could not send the reset code: %s\n", err)
		return err
	}
	fmt.Fprintln(a.out, "A reset code has been sent to your email.")

	code, err := getSimpleText(a.reader, "Enter the code", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.apiClient.ResetPassword(ctx, email, code, string(password)); err != nil {
		fmt.Fprintf(a.out, "Password reset failed: %s\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Password updated, you can log in now.")
	return nil
}

// Logout ends the session locally: credentials and marker are cleared.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// warmUp refreshes the model list and the profile snapshot concurrently
// after a session is (re)established. Failures are reported but not fatal:
// the user can retry via the models command.
func (a *App) warmUp(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.chat.FetchModels(ctx)
	})
	g.Go(func() error {
		user, err := a.apiClient.Profile(ctx, a.session.Token())
		if err != nil {
			return err
		}
		return a.session.UpdateUser(ctx, user)
	})

	if err := g.Wait(); err != nil {
		a.log.Warn(ctx, "session warm-up incomplete", "error", err)
	}
}
