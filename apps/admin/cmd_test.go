package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilypad-dao/lilypad/core"
	"github.com/lilypad-dao/lilypad/core/content"
	"github.com/lilypad-dao/lilypad/core/user"
	inmemdb "github.com/lilypad-dao/lilypad/storage/database/inmem"
	"github.com/lilypad-dao/lilypad/tests"
)

const froggyAddr = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

type fixture struct {
	cli *commandLine
	db  *inmemdb.DB
	out *bytes.Buffer
}

func setup(t *testing.T) fixture {
	conf := testutil.NewConfig()
	logger := testutil.NopLogger{}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	content.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	db := inmemdb.Open()
	out := new(bytes.Buffer)
	return fixture{
		cli: &commandLine{
			conf:       conf,
			out:        out,
			validate:   validate,
			usrSvc:     user.NewService(inmemdb.NewUserRepository(db), logger, conf),
			contentSvc: content.NewService(inmemdb.NewContentRepository(db), nil, logger, conf),
		},
		db:  db,
		out: out,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Equal(t, tt.wantErrStr, err.Error())
				}
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	f := setup(t)

	orig := runMigrationsFunc
	t.Cleanup(func() { runMigrationsFunc = orig })
	runMigrationsFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, f.cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
	})
}

func Test_commandLine_addUser(t *testing.T) {
	f := setup(t)

	runCLITests(t, f.cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no username", args: []string{"adduser", "-address", froggyAddr}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"adduser", "-email", "froggy@lilypad.xyz"}, wantErr: errHelp},
		{name: "create", args: []string{"adduser", "-address", froggyAddr, "-username", "Froggy", "-name", "Froggy"}},
		{
			name:       "duplicate username",
			args:       []string{"adduser", "-address", "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", "-username", "froggy"},
			wantErrStr: user.ErrUsernameExists.Error(),
		},
	})

	usr, err := f.cli.usrSvc.GetByUsername(context.Background(), "froggy")
	require.NoError(t, err)
	assert.Equal(t, froggyAddr, usr.Address)
	assert.Equal(t, "Froggy", usr.Name)
	assert.Contains(t, f.out.String(), "created user 1: froggy ("+froggyAddr+")")
}

func Test_commandLine_token(t *testing.T) {
	f := setup(t)
	_, err := f.cli.usrSvc.Create(context.Background(), user.NewUser{Address: froggyAddr, Username: "froggy"})
	require.NoError(t, err)

	runCLITests(t, f.cli, []cliTest{
		{name: "no args", args: []string{"token"}, wantErr: errHelp},
		{name: "user not found", args: []string{"token", "-username", "toad"}, wantErr: user.ErrNotFound},
	})

	f.out.Reset()
	require.NoError(t, f.cli.run([]string{"admin", "token", "-username", "froggy"}))
	assert.Regexp(t, `^[\w-]+\.[\w-]+\.[\w-]+\n$`, f.out.String())
}

func Test_commandLine_filters(t *testing.T) {
	orig := isTerminalFunc
	t.Cleanup(func() { isTerminalFunc = orig })

	f := setup(t)
	testutil.CreateItem(t, f.db, content.TypeCourse, "Intro to DAOs", "dao", "defi", "tech:solidity")
	testutil.CreateItem(t, f.db, content.TypeCourse, "Lending", "dao", "tech:solidity")

	runCLITests(t, f.cli, []cliTest{
		{name: "unknown type", args: []string{"filters", "-type", "blog"}, wantErrStr: "invalid argument type: unknown content type blog"},
		{name: "non-positive top", args: []string{"filters", "-top", "0"}, wantErrStr: "invalid argument topN: must be positive"},
	})

	t.Run("table on a terminal", func(t *testing.T) {
		isTerminalFunc = func() bool { return true }
		f.out.Reset()
		require.NoError(t, f.cli.run([]string{"admin", "filters", "-type", "course", "-top", "2"}))
		assert.Equal(t,
			"KIND        SLUG      NAME      COUNT  PATH\n"+
				"tag         dao       dao       2      /browse/tag/dao\n"+
				"technology  solidity  solidity  2      /browse/tech/solidity\n",
			f.out.String())
	})

	t.Run("json when piped", func(t *testing.T) {
		isTerminalFunc = func() bool { return false }
		f.out.Reset()
		require.NoError(t, f.cli.run([]string{"admin", "filters"}))

		var got []content.Filter
		require.NoError(t, json.Unmarshal(f.out.Bytes(), &got))
		assert.Equal(t, []content.Filter{
			{ID: 1, Name: "dao", Slug: "dao", Kind: content.KindTag, Count: 2},
			{ID: 1, Name: "solidity", Slug: "solidity", Kind: content.KindTechnology, Count: 2},
			{ID: 2, Name: "defi", Slug: "defi", Kind: content.KindTag, Count: 1},
		}, got)
	})
}
