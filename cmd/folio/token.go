package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Strob0t/folio/internal/middleware"
)

func newHashTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-token",
		Short: "Hash an admin token for auth.token_hash",
		Long: `Read an admin token and print its bcrypt hash. Put the hash into
auth.token_hash (or FOLIO_ADMIN_TOKEN_HASH) on the server and the token into
client.token (or FOLIO_TOKEN) for client commands.

On a terminal the token is prompted for without echo; otherwise it is read
from the first line of stdin.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			token, err := a.readToken()
			if err != nil {
				return err
			}
			if token == "" {
				return errors.New("empty token")
			}
			hash, err := middleware.HashToken(token)
			if err != nil {
				return fmt.Errorf("hash token: %w", err)
			}
			fmt.Fprintln(a.stdout, hash)
			return nil
		},
	}
}

func (a *app) readToken() (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.stderr, "Admin token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
