package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/lilypad-dao/lilypad/core"
	"github.com/lilypad-dao/lilypad/core/content"
	"github.com/lilypad-dao/lilypad/core/user"
)

var (
	isTerminalFunc = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) } // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	conf       *core.Config
	out        io.Writer
	validate   *validator.Validate
	usrSvc     user.Service
	contentSvc content.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                          - run database migrations (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  adduser -address ADDRESS -username USERNAME     - create a user")
	fmt.Fprintln(cli.out, "  token -username USERNAME                        - print a session token for a user")
	fmt.Fprintln(cli.out, "  filters [-type TYPE] [-top N] [-json]           - print the homepage filters")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserCmd.SetOutput(cli.out)
	addUserAddr := addUserCmd.String("address", "", "The user's wallet address.")
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserName := addUserCmd.String("name", "", "The user's display name (optional).")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenUname := tokenCmd.String("username", "", "The user's username.")

	filtersCmd := flag.NewFlagSet("filters", flag.ContinueOnError)
	filtersCmd.SetOutput(cli.out)
	filtersType := filtersCmd.String("type", "", "Content type: COURSE, RESOURCE or PROJECT (all types when empty).")
	filtersTop := filtersCmd.Int("top", cli.conf.Content.HomepageFilters, "Number of filters to print.")
	filtersJSON := filtersCmd.Bool("json", false, "Print JSON even on a terminal.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserAddr == "" || *addUserUname == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserAddr, *addUserUname, *addUserName)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *tokenUname == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenUname)
	case "filters":
		if err := filtersCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.filters(*filtersType, *filtersTop, *filtersJSON || !isTerminalFunc())
	default:
		cli.printUsage()
		return errHelp
	}
}
