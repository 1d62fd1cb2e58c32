// Copyright 2024 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/industrace/inventory-client/filters"
	"github.com/industrace/inventory-client/i18n"
	"github.com/industrace/inventory-client/inv"
	"github.com/industrace/inventory-client/model"
	"github.com/industrace/inventory-client/store/mongo"
	"github.com/industrace/inventory-client/utils"
)

const (
	exitConfig  = 1
	exitStore   = 3
	exitRuntime = 4

	defaultSearchLimit = 10
)

func main() {
	doMain(os.Args)
}

const migrateDescription = `Run the migrations of the mongo preference store.
   Other preference stores keep no schema and are left untouched.`

// commandFunc runs a command against a ready environment.
type commandFunc func(ctx context.Context, env *environment, c *cli.Context) error

type application struct {
	configPath string
	debug      bool

	out    io.Writer
	errOut io.Writer
}

func doMain(args []string) {
	app := newApp(os.Stdout, os.Stderr)
	_ = app.Run(args)
}

func resourceArg(c *cli.Context, idx int) (model.Resource, error) {
	res := model.Resource(c.Args().Get(idx))
	if err := res.Validate(); err != nil {
		return "", errors.Wrapf(err, "invalid resource %q", res)
	}
	return res, nil
}

func requiredArg(c *cli.Context, idx int, name string) (string, error) {
	v := c.Args().Get(idx)
	if v == "" {
		return "", errors.Errorf("missing %s argument", name)
	}
	return v, nil
}

// action wraps fn with the environment setup. Protected commands require a
// live session.
func (a *application) action(protected bool, fn commandFunc) func(*cli.Context) error {
	return func(c *cli.Context) error {
		ctx := context.Background()

		env, err := newEnvironment(ctx, config.Config, a.out, a.errOut, a.debug)
		if err != nil {
			return cli.NewExitError(
				fmt.Sprintf("failed to initialize: %v", err),
				exitStore)
		}
		defer env.close(ctx)

		if protected {
			if err := env.session.RequireAuth(ctx); err != nil {
				return cli.NewExitError(env.tr.T("auth.loginRequired"), exitRuntime)
			}
		}
		if err := fn(ctx, env, c); err != nil {
			return cli.NewExitError(err.Error(), exitRuntime)
		}
		return nil
	}
}

func newApp(out, errOut io.Writer) *cli.App {
	a := &application{out: out, errOut: errOut}

	app := cli.NewApp()
	app.Name = "industrace"
	app.Usage = "Industrace CMDB client"
	app.Writer = out
	app.ErrWriter = errOut

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name: "config",
			Usage: "Configuration `FILE`." +
				" Supports JSON, TOML, YAML and HCL formatted configs.",
			Destination: &a.configPath,
		},
		cli.BoolFlag{
			Name:        "debug",
			Usage:       "Enable debug logging",
			Destination: &a.debug,
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "login",
			Usage: "Open a session on the CMDB",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "email",
					Usage: "Account `EMAIL`, defaults to the configured one",
				},
				cli.StringFlag{
					Name:  "password",
					Usage: "Account `PASSWORD`, defaults to the configured one",
				},
			},
			Action: a.action(false, cmdLogin),
		},
		{
			Name:   "logout",
			Usage:  "Close the current session",
			Action: a.action(false, cmdLogout),
		},
		{
			Name:   "whoami",
			Usage:  "Show the logged in user and its permissions",
			Action: a.action(true, cmdWhoami),
		},
		{
			Name:   "health",
			Usage:  "Check the CMDB is reachable",
			Action: a.action(true, cmdHealth),
		},
		{
			Name:      "list",
			Usage:     "List the records of a resource",
			ArgsUsage: "<resource>",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "local",
					Usage: "Fetch every record and filter client side",
				},
				cli.StringFlag{
					Name:  "search",
					Usage: "Global search `TERM`",
				},
				cli.StringSliceFlag{
					Name:  "filter, f",
					Usage: "Equality filter as `FIELD=VALUE`. Flag can be provided multiple times.",
				},
				cli.StringSliceFlag{
					Name: "match, m",
					Usage: "Match filter as `FIELD=MODE:VALUE`. The in and notIn" +
						" modes take a comma separated list.",
				},
				cli.StringFlag{
					Name:  "sort",
					Usage: "Sort as `FIELD[:asc|desc]`",
				},
				cli.StringFlag{
					Name:  "columns",
					Usage: "Comma separated `COLUMNS` to show, remembered for the resource",
				},
				cli.BoolFlag{
					Name:  "reset",
					Usage: "Restore the default filters before applying the new ones",
				},
			},
			Action: a.action(true, cmdList),
		},
		{
			Name:      "get",
			Usage:     "Show a record",
			ArgsUsage: "<resource> <id>",
			Action:    a.action(true, cmdGet),
		},
		{
			Name:      "search",
			Usage:     "Search every resource",
			ArgsUsage: "<query>",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "limit",
					Usage: "Maximum number of results",
					Value: defaultSearchLimit,
				},
			},
			Action: a.action(true, cmdSearch),
		},
		{
			Name:      "lookup",
			Usage:     "List the options of a lookup resource",
			ArgsUsage: "<resource>",
			Action:    a.action(true, cmdLookup),
		},
		{
			Name:      "duplicate",
			Usage:     "Copy a record",
			ArgsUsage: "<entity> <id>",
			Action:    a.action(true, cmdDuplicate),
		},
		{
			Name:      "update",
			Usage:     "Update the same attributes on several records",
			ArgsUsage: "<resource> <id>...",
			Flags: []cli.Flag{
				cli.StringSliceFlag{
					Name:  "set, s",
					Usage: "Attribute as `FIELD=VALUE`. Flag can be provided multiple times.",
				},
			},
			Action: a.action(true, cmdUpdate),
		},
		{
			Name:      "delete",
			Usage:     "Move records to the trash",
			ArgsUsage: "<resource> <id>...",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "hard",
					Usage: "Delete permanently",
				},
			},
			Action: a.action(true, cmdDelete),
		},
		{
			Name:      "trash",
			Usage:     "List the deleted records of a resource",
			ArgsUsage: "<resource>",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "empty",
					Usage: "Permanently delete every record in the trash",
				},
			},
			Action: a.action(true, cmdTrash),
		},
		{
			Name:      "restore",
			Usage:     "Restore a record from the trash",
			ArgsUsage: "<resource> <id>",
			Action:    a.action(true, cmdRestore),
		},
		{
			Name:      "export",
			Usage:     "Export the records of a resource",
			ArgsUsage: "<resource>",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Usage: "Write to `FILE` instead of the standard output",
				},
			},
			Action: a.action(true, cmdExport),
		},
		{
			Name:      "import",
			Usage:     "Import records from a spreadsheet",
			ArgsUsage: "<resource> <file>",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "confirm",
					Usage: "Apply the import instead of previewing it",
				},
			},
			Action: a.action(true, cmdImport),
		},
		{
			Name:      "lang",
			Usage:     "Show or change the interface language",
			ArgsUsage: "[code]",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "check",
					Usage: "Verify the message catalogs are complete",
				},
			},
			Action: a.action(false, cmdLang),
		},
		{
			Name:        "migrate",
			Usage:       "Run migrations",
			Description: migrateDescription,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "version",
					Usage: "Target version to migrate",
					Value: mongo.DbVersion,
				},
			},
			Action: cmdMigrate,
		},
	}

	app.Before = func(args *cli.Context) error {
		log.Setup(a.debug)

		err := config.FromConfigFile(a.configPath, configDefaults)
		if err != nil {
			return cli.NewExitError(
				fmt.Sprintf("error loading configuration: %s", err),
				exitConfig)
		}

		// Enable setting config values by environment variables
		config.Config.SetEnvPrefix("INDUSTRACE")
		config.Config.AutomaticEnv()

		return nil
	}

	return app
}

func cmdLogin(ctx context.Context, env *environment, c *cli.Context) error {
	creds := model.Credentials{
		Email:    c.String("email"),
		Password: c.String("password"),
	}
	if creds.Email == "" {
		creds.Email = config.Config.GetString(SettingEmail)
	}
	if creds.Password == "" {
		creds.Password = config.Config.GetString(SettingPassword)
	}
	if err := creds.Validate(); err != nil {
		return errors.Wrap(err, "invalid credentials")
	}
	if err := env.session.Login(ctx, creds); err != nil {
		return err
	}
	fmt.Fprintln(env.out, env.tr.T("auth.loggedIn", i18n.Params{"email": env.session.User().Email}))
	return nil
}

func cmdLogout(ctx context.Context, env *environment, c *cli.Context) error {
	env.session.Logout(ctx)
	fmt.Fprintln(env.out, env.tr.T("auth.loggedOut"))
	return nil
}

func cmdWhoami(ctx context.Context, env *environment, c *cli.Context) error {
	user := env.session.User()
	role := cellNA
	if user.Role != nil {
		role = user.Role.Name
	}
	fmt.Fprintf(env.out, "%s <%s> (%s)\n", user.Name, user.Email, role)
	newPrinter(env).Permissions(user)
	return nil
}

func cmdHealth(ctx context.Context, env *environment, c *cli.Context) error {
	return env.inv.HealthCheck(ctx)
}

// listState builds the persisted filter state of res and applies the
// command line filters on top of it.
func listState(ctx context.Context, env *environment, res model.Resource, c *cli.Context) (*filters.State, error) {
	var defaultColumns []string
	if e, ok := model.EntityForResource(res); ok {
		defaultColumns = e.Columns
	}
	state := filters.New(ctx, env.prefs, filters.Options{
		StorageKey:     res.String(),
		DefaultColumns: defaultColumns,
	})
	if c.Bool("reset") {
		state.ResetFilters(ctx)
	}

	eq, err := parseFilterParams(c.StringSlice("filter"))
	if err != nil {
		return nil, err
	}
	matches, err := parseMatchParams(c.StringSlice("match"))
	if err != nil {
		return nil, err
	}
	for field, f := range eq {
		state.SetFilter(ctx, field, f)
	}
	for field, f := range matches {
		state.SetFilter(ctx, field, f)
	}

	state.SetGlobalSearch(c.String("search"))
	field, dir, err := parseSortParam(c.String("sort"))
	if err != nil {
		return nil, err
	}
	state.SetSort(field, dir)

	if cols := utils.SplitList(c.String("columns")); len(cols) > 0 {
		state.SetColumns(ctx, cols)
	}
	return state, nil
}

func cmdList(ctx context.Context, env *environment, c *cli.Context) error {
	res, err := resourceArg(c, 0)
	if err != nil {
		return err
	}
	state, err := listState(ctx, env, res, c)
	if err != nil {
		return err
	}
	recs, err := env.inv.ListRecords(ctx, res, inv.ListQuery{
		State: state,
		Local: c.Bool("local"),
	})
	if err != nil {
		return err
	}
	columns := state.Columns()
	if len(columns) == 0 {
		columns = []string{"id", "name"}
	}
	newPrinter(env).Records(recs, columns)
	return nil
}

func cmdGet(ctx context.Context, env *environment, c *cli.Context) error {
	res, err := resourceArg(c, 0)
	if err != nil {
		return err
	}
	id, err := requiredArg(c, 1, "id")
	if err != nil {
		return err
	}
	rec, err := env.inv.GetRecord(ctx, res, id)
	if err != nil {
		return err
	}
	return newPrinter(env).JSON(rec)
}

func cmdSearch(ctx context.Context, env *environment, c *cli.Context) error {
	results, err := env.inv.Search(ctx, c.Args().First(), c.Int("limit"))
	if errors.Cause(err) == inv.ErrSearchTooShort {
		return errors.New(env.tr.T("search.minLength", i18n.Params{"min": model.MinSearchLength}))
	} else if err != nil {
		return err
	}
	newPrinter(env).SearchResults(results)
	return nil
}

func cmdLookup(ctx context.Context, env *environment, c *cli.Context) error {
	res, err := resourceArg(c, 0)
	if err != nil {
		return err
	}
	recs, err := env.inv.Lookup(ctx, res)
	if err != nil {
		return err
	}
	if res == model.ResourceAssetStatuses {
		newPrinter(env).Statuses(recs)
		return nil
	}
	newPrinter(env).Records(recs, []string{"id", "name"})
	return nil
}

func cmdDuplicate(ctx context.Context, env *environment, c *cli.Context) error {
	kind := model.EntityKind(c.Args().First())
	id, err := requiredArg(c, 1, "id")
	if err != nil {
		return err
	}
	dup, err := env.inv.DuplicateRecord(ctx, kind, id)
	if err != nil {
		return err
	}
	return newPrinter(env).JSON(dup)
}

func cmdUpdate(ctx context.Context, env *environment, c *cli.Context) error {
	res, err := resourceArg(c, 0)
	if err != nil {
		return err
	}
	ids := c.Args().Tail()
	if len(ids) == 0 {
		return errors.New("missing id argument")
	}
	fields, err := parseFieldParams(c.StringSlice("set"))
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return errors.New("nothing to update")
	}
	for field, v := range fields {
		s, ok := v.Text()
		if !ok || !strings.HasSuffix(field, dateSuffix) {
			continue
		}
		if day := env.dates.FormatDateForInput(s); day != "" {
			fields[field] = model.String(day)
		}
	}
	return env.inv.UpdateRecords(ctx, res, ids, fields)
}

func cmdDelete(ctx context.Context, env *environment, c *cli.Context) error {
	res, err := resourceArg(c, 0)
	if err != nil {
		return err
	}
	ids := c.Args().Tail()
	hard := c.Bool("hard")
	switch {
	case len(ids) == 0:
		return errors.New("missing id argument")
	case len(ids) > 1 && !hard:
		return env.inv.DeleteRecords(ctx, res, ids)
	}
	for _, id := range ids {
		if err := env.inv.DeleteRecord(ctx, res, id, hard); err != nil {
			return err
		}
	}
	return nil
}

func cmdTrash(ctx context.Context, env *environment, c *cli.Context) error {
	res, err := resourceArg(c, 0)
	if err != nil {
		return err
	}
	if c.Bool("empty") {
		return env.inv.EmptyTrash(ctx, res)
	}
	recs, err := env.inv.ListTrash(ctx, res)
	if err != nil {
		return err
	}
	columns := []string{"id", "name"}
	if e, ok := model.EntityForResource(res); ok {
		columns = append([]string{"id"}, e.Columns...)
	}
	newPrinter(env).Records(recs, append(columns, "deleted_at"))
	return nil
}

func cmdRestore(ctx context.Context, env *environment, c *cli.Context) error {
	res, err := resourceArg(c, 0)
	if err != nil {
		return err
	}
	id, err := requiredArg(c, 1, "id")
	if err != nil {
		return err
	}
	return env.inv.RestoreRecord(ctx, res, id)
}

func cmdExport(ctx context.Context, env *environment, c *cli.Context) error {
	res, err := resourceArg(c, 0)
	if err != nil {
		return err
	}
	state := filters.New(ctx, env.prefs, filters.Options{StorageKey: res.String()})
	b, err := env.inv.Export(ctx, res, state.QueryParams())
	if err != nil {
		return err
	}
	if path := c.String("out"); path != "" {
		return errors.Wrap(os.WriteFile(path, b, 0o644), "failed to write export")
	}
	_, err = env.out.Write(b)
	return err
}

func cmdImport(ctx context.Context, env *environment, c *cli.Context) error {
	res, err := resourceArg(c, 0)
	if err != nil {
		return err
	}
	path, err := requiredArg(c, 1, "file")
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open import file")
	}
	defer f.Close()

	out, err := env.inv.Import(ctx, res, filepath.Base(path), f, c.Bool("confirm"))
	if err != nil {
		return err
	}
	return newPrinter(env).JSON(out)
}

func cmdLang(ctx context.Context, env *environment, c *cli.Context) error {
	if c.Bool("check") {
		problems := env.tr.Validate()
		for _, p := range problems {
			fmt.Fprintln(env.out, p)
		}
		if len(problems) > 0 {
			return errors.Errorf("%d catalog problems found", len(problems))
		}
		return nil
	}

	code := c.Args().First()
	if code == "" {
		newPrinter(env).Languages(env.tr.Locale())
		return nil
	}
	err := env.tr.ChangeLanguage(ctx, code)
	if errors.Cause(err) == i18n.ErrUnknownLocale {
		return errors.New(env.tr.T("language.unknown", i18n.Params{"code": code}))
	} else if err != nil {
		return err
	}
	for _, lang := range env.tr.AvailableLanguages() {
		if lang.Code == code {
			fmt.Fprintln(env.out, env.tr.T("language.changed", i18n.Params{"name": lang.Name}))
		}
	}
	return nil
}

func cmdMigrate(c *cli.Context) error {
	version := c.String("version")

	l := log.New(log.Ctx{})

	if kind := config.Config.GetString(SettingStore); kind != StoreMongo {
		l.Infof("preference store %q needs no migrations", kind)
		return nil
	}

	ctx := context.Background()
	db, err := mongo.NewDataStoreMongo(ctx, makeDataStoreConfig(config.Config))
	if err != nil {
		return cli.NewExitError(
			fmt.Sprintf("failed to connect to db: %v", err),
			exitStore)
	}
	defer db.Close(ctx)

	l.Infof("migrating the preference store to %s", version)

	// we want to apply migrations
	db = db.WithAutomigrate()

	err = db.Migrate(ctx, version)
	if err != nil {
		return cli.NewExitError(
			fmt.Sprintf("failed to run migrations: %v", err),
			exitStore)
	}

	return nil
}
