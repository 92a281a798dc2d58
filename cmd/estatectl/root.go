package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/EstateEmpire/estateempire-backend/client"
)

const defaultAPI = "http://127.0.0.1:5000"

type app struct {
	apiURL      string
	sessionPath string
	api         *client.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "estatectl",
		Short:         "Browse, rent and buy EstateEmpire properties from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	apiDefault := os.Getenv("ESTATECTL_API")
	if apiDefault == "" {
		apiDefault = defaultAPI
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api", apiDefault, "API base URL (env ESTATECTL_API)")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", "", "session file (default ~/.estatectl/session.yaml)")

	root.AddCommand(
		a.signupCmd(),
		a.verifyCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.listingsCmd(),
		a.listingCmd(),
		a.rentCmd(),
		a.buyCmd(),
		a.rentalsCmd(),
		a.purchasesCmd(),
		a.paymentsCmd(),
	)
	return root
}

func (a *app) init() error {
	if a.sessionPath == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return fmt.Errorf("locate session file: %w", err)
		}
		a.sessionPath = p
	}
	manager := client.NewManager(client.NewFileStore(a.sessionPath))
	a.api = client.New(a.apiURL, client.WithSessionManager(manager), client.WithRateLimit(5, 5), client.WithUserAgent("estatectl"))
	return nil
}

// explain turns session errors into the next step the user should take.
func explain(err error) error {
	if errors.Is(err, client.ErrLoginRequired) || errors.Is(err, client.ErrUnauthorized) {
		return fmt.Errorf("%w (run `estatectl login`)", err)
	}
	return err
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
)

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func ok(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, okStyle.Render(fmt.Sprintf(format, args...)))
}

func formatKES(v int64) string {
	s := fmt.Sprintf("%d", v)
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return "Ksh " + string(out)
}
