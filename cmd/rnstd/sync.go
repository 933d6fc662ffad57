package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"rnstd/internal/source"
	"rnstd/internal/tui/styles"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newSyncCmd(a *app) *cobra.Command {
	var remote, branch string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Clone or update the resources directory from its git remote",
		Long: `Sync clones source.remote_url into resources_dir when the directory is empty, or
fetches and moves the tracked branch to the remote tip when it already holds that
repository. A directory with another repository or plain files is never touched, and
a clone with uncommitted changes is skipped.

Public access is tried first; private remotes use the token stored with
"rnstd auth set".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, _, closeLog, err := a.setup()
			if err != nil {
				return err
			}
			defer closeLog()

			if remote != "" {
				cfg.Source.RemoteURL = remote
			}
			if branch != "" {
				cfg.Source.Branch = branch
			}
			if cfg.Source.RemoteURL == "" {
				return fmt.Errorf("no git remote configured - set source.remote_url or pass --remote")
			}

			path, err := cfg.ResourcesPath()
			if err != nil {
				return err
			}

			gs := source.NewGitSource(cfg.Source.RemoteURL, cfg.SourceBranch(), path, source.NewCredentialManager(), logger)
			result, err := gs.Sync(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch result {
			case source.SyncSkippedDirty:
				fmt.Fprintln(out, styles.WarningStyle.Render("Sync "+result.String()))
			default:
				fmt.Fprintln(out, styles.SuccessStyle.Render("Resources "+result.String())+" "+path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "git remote URL (overrides source.remote_url)")
	cmd.Flags().StringVar(&branch, "branch", "", "branch to track (overrides source.branch)")
	return cmd
}

// credentialStore is the part of source.CredentialManager the auth commands use.
type credentialStore interface {
	StoreToken(token string) error
	Token() (string, error)
	DeleteToken() error
	HasToken() bool
}

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the GitHub token used to sync private resources",
	}
	creds := func() credentialStore { return source.NewCredentialManager() }
	cmd.AddCommand(newAuthSetCmd(creds), newAuthClearCmd(creds), newAuthStatusCmd(creds))
	return cmd
}

func newAuthSetCmd(creds func() credentialStore) *cobra.Command {
	var fromStdin bool
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a GitHub personal access token in the OS credential store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := readToken(cmd.InOrStdin(), cmd.ErrOrStderr(), fromStdin)
			if err != nil {
				return err
			}
			if err := creds().StoreToken(token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.SuccessStyle.Render("Token stored")+" "+source.MaskToken(token))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read the token from stdin instead of prompting")
	return cmd
}

// readToken prompts without echo on a terminal, or reads the first line of in.
func readToken(in io.Reader, prompt io.Writer, fromStdin bool) (string, error) {
	if f, ok := in.(*os.File); ok && !fromStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "GitHub token: ")
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return "", fmt.Errorf("no token given")
	}
	return token, nil
}

func newAuthClearCmd(creds func() credentialStore) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored GitHub token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds().DeleteToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token removed")
			return nil
		},
	}
}

func newAuthStatusCmd(creds func() credentialStore) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a GitHub token is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := creds()
			out := cmd.OutOrStdout()
			if !store.HasToken() {
				fmt.Fprintln(out, styles.MutedStyle.Render("No token stored"))
				return nil
			}
			token, err := store.Token()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Token stored "+source.MaskToken(token))
			return nil
		},
	}
}
