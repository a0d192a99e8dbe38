package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/klabast/wb-services/thermotec-agenda/internal/app"
)

var errInterrupted = errors.New("interrupted")

// NewHashPasswordCommand creates the hash-password subcommand
func NewHashPasswordCommand() *cobra.Command {
	var (
		overwrite      bool
		insecureUnmask bool
		authFile       string
	)

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Create the auth file with an Argon2id password hash",
		Long: "Creates an auth.secret file (username:hash) that protects the routes changing appointments.\n\n" +
			"Environment Variables:\n  AUTH_FILE    Path to auth file (default: auth.secret next to the binary)",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if authFile == "" {
				authFile = os.Getenv("AUTH_FILE")
			}
			path, err := app.ResolveAuthFile(authFile)
			if err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			return runHashPassword(in, out, cmd.ErrOrStderr(), path, overwrite, insecureUnmask)
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing auth file without asking")
	cmd.Flags().BoolVar(&insecureUnmask, "insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
	cmd.Flags().StringVar(&authFile, "auth-file", "", "Path to the auth file (overrides AUTH_FILE)")
	return cmd
}

func runHashPassword(in *bufio.Reader, out, errOut io.Writer, path string, overwrite, unmask bool) error {
	username, err := readLine(in, out, "Enter username: ")
	if err != nil {
		return fmt.Errorf("reading username: %w", err)
	}
	if username == "" {
		return errors.New("username cannot be empty")
	}

	var password, passwordConfirm string
	if unmask {
		fmt.Fprintln(errOut, "⚠️  WARNING: Password will be visible on screen!")
		if password, err = readLine(in, out, "Enter password:   "); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		if passwordConfirm, err = readLine(in, out, "Confirm password: "); err != nil {
			return fmt.Errorf("reading password confirmation: %w", err)
		}
	} else {
		if password, err = readPasswordWithMask(in, out, "Enter password:   "); err != nil {
			return err
		}
		if passwordConfirm, err = readPasswordWithMask(in, out, "Confirm password: "); err != nil {
			return err
		}
	}

	if password == "" {
		return errors.New("password cannot be empty")
	}
	if password != passwordConfirm {
		return errors.New("passwords do not match")
	}

	confirm := func() bool {
		answer, err := readLine(in, out, fmt.Sprintf("Auth file %s already exists. Overwrite? [y/N]: ", path))
		if err != nil {
			return false
		}
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes"
	}

	if err := app.CreateAuthFile(path, username, password, overwrite, confirm); err != nil {
		return err
	}

	fmt.Fprintf(out, "✅ Auth file created: %s\n", path)
	fmt.Fprintln(out, "   Restart the server to protect appointment changes.")
	return nil
}

func readLine(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// stdinFD is the terminal switched to raw mode while a password is typed
var stdinFD = int(syscall.Stdin)

// readPasswordWithMask reads a password from in, echoing asterisks when
// stdin is a terminal. in is shared with the other prompts so no buffered
// input is lost between them.
func readPasswordWithMask(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	if !term.IsTerminal(stdinFD) {
		password, err := readLine(in, out, prompt)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return password, nil
	}

	fmt.Fprint(out, prompt)
	oldState, err := term.MakeRaw(stdinFD)
	if err != nil {
		return "", fmt.Errorf("setting terminal raw mode: %w", err)
	}
	defer func() { _ = term.Restore(stdinFD, oldState) }()

	var password []byte
	for {
		char, _, err := in.ReadRune()
		if err != nil {
			break
		}

		switch char {
		case '\n', '\r':
			fmt.Fprint(out, "\r\n")
			return string(password), nil
		case 127, 8: // Backspace or Delete
			if len(password) > 0 {
				password = password[:len(password)-1]
				fmt.Fprint(out, "\b \b")
			}
		case 3: // Ctrl+C
			fmt.Fprint(out, "\r\n")
			return "", errInterrupted
		default:
			if char >= 32 && char <= 126 {
				password = append(password, byte(char))
				fmt.Fprint(out, "*")
			}
		}
	}

	fmt.Fprint(out, "\r\n")
	return string(password), nil
}
