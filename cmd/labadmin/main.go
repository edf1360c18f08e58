package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medlab/labadmin/internal/backendtest"
	"github.com/medlab/labadmin/internal/config"
	"github.com/medlab/labadmin/internal/domain/account"
	"github.com/medlab/labadmin/internal/domain/doctor"
	"github.com/medlab/labadmin/internal/domain/indication"
	"github.com/medlab/labadmin/internal/domain/labtest"
	"github.com/medlab/labadmin/internal/domain/patient"
	"github.com/medlab/labadmin/internal/domain/report"
	"github.com/medlab/labadmin/internal/domain/testcategory"
	"github.com/medlab/labadmin/internal/domain/testgroup"
	"github.com/medlab/labadmin/internal/domain/unit"
	"github.com/medlab/labadmin/internal/platform/auth"
	"github.com/medlab/labadmin/internal/platform/rest"
	"github.com/medlab/labadmin/pkg/criteria"
)

// app carries the wired client stack into command handlers. It is built
// lazily so that commands like demo-server do not need a reachable backend.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *auth.TokenStore
	client *rest.Client
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	store := auth.NewTokenStore(cfg.TokenPath)
	client := rest.NewClient(cfg.BackendURL,
		rest.WithTokenSource(auth.NewSource(store)),
		rest.WithTimeout(cfg.Timeout),
		rest.WithLogger(logger),
	)
	return &app{cfg: cfg, log: logger, store: store, client: client}, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "labadmin",
		Short:         "Medical testing admin console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(demoServerCmd())
	rootCmd.AddCommand(reportCmd())

	rootCmd.AddCommand(entityCmd("patient", "Manage patients", patientOps, patientExtras()...))
	rootCmd.AddCommand(entityCmd("doctor", "Manage doctors", doctorOps))
	rootCmd.AddCommand(entityCmd("unit", "Manage units", unitOps))
	rootCmd.AddCommand(entityCmd("test-group", "Manage test groups", groupOps))
	rootCmd.AddCommand(entityCmd("test-category", "Manage test categories", categoryOps))
	rootCmd.AddCommand(entityCmd("indication", "Manage indications", indicationOps))
	rootCmd.AddCommand(entityCmd("test", "Manage test orders", testOps, testExtras()...))
	rootCmd.AddCommand(entityCmd("account", "Manage user accounts", accountOps))

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, auth.ErrSessionExpired) || errors.Is(err, auth.ErrNoSession) {
			fmt.Fprintln(os.Stderr, "Session expired or missing. Run: labadmin login")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			pass, _ := cmd.Flags().GetString("password")
			if user == "" || pass == "" {
				return fmt.Errorf("--user and --password are required")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			res, err := account.NewGateway(a.client).Login(cmd.Context(), account.LoginRequest{
				UserName: user, Password: pass,
			})
			if err != nil {
				return err
			}
			if err := a.store.Save(res.Token); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%s)\n", res.UserName, res.Role)
			return nil
		},
	}
	cmd.Flags().String("user", "", "User name")
	cmd.Flags().String("password", "", "Password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the persisted session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.store.Clear(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func demoServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo-server",
		Short: "Serve the in-memory demo backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			srv := backendtest.New()
			srv.SeedDemo()
			fmt.Printf("Demo backend on %s (login: admin/admin)\n", addr)
			return srv.Start(addr)
		},
	}
	cmd.Flags().String("addr", ":8000", "Listen address")
	return cmd
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <test-name> <test-id>",
		Short: "Fetch the result report of a test order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			rep, err := report.NewGateway(a.client).Fetch(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Report %s  patient: %s  doctor: %s  unit: %s  date: %s\n",
				rep.TestCode, rep.PatientName, rep.DoctorName, rep.UnitName, rep.Date)
			fmt.Printf("%-30s %-12s %-10s %s\n", "INDICATION", "RESULT", "MEASURE", "REFERENCE")
			for _, row := range rep.Rows {
				fmt.Printf("%-30s %-12s %-10s %s\n",
					row.IndicationName, row.Result, row.Measure, row.ReferenceRange)
			}
			return nil
		},
	}
}

// crudOps binds one entity's gateway methods for the generic subcommands.
type crudOps[T any] struct {
	search func(ctx context.Context, a *app, crit criteria.Criteria) (*criteria.PageData[T], error)
	get    func(ctx context.Context, a *app, id string) (*T, error)
	create func(ctx context.Context, a *app, v T) (*T, error)
	update func(ctx context.Context, a *app, v T) (*T, error)
	delete func(ctx context.Context, a *app, id string) error
	withID func(v T, id string) T
}

func entityCmd[T any](name, short string, ops crudOps[T], extras ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{Use: name, Short: short}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List " + name + "s",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			crit, err := criteriaFromFlags(cmd, a.cfg.PageSize)
			if err != nil {
				return err
			}
			page, err := ops.search(cmd.Context(), a, crit)
			if err != nil {
				return err
			}
			if err := printJSON(page.Data); err != nil {
				return err
			}
			fmt.Printf("Page %d/%d, %d row(s) total\n",
				page.CurrentPage, page.TotalPages, page.TotalRows)
			return nil
		},
	}
	listCmd.Flags().StringArray("filter", nil, "Filter as field=value, repeatable")
	listCmd.Flags().String("sort", "", "Sort field")
	listCmd.Flags().Bool("desc", false, "Sort descending")
	listCmd.Flags().Int("page", 1, "Page number, 1-based")
	listCmd.Flags().Int("page-size", 0, "Rows per page (30, 50 or 100)")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one " + name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			v, err := ops.get(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			return printJSON(v)
		},
	})

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + name + " from JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			var v T
			if err := readData(cmd, &v); err != nil {
				return err
			}
			created, err := ops.create(cmd.Context(), a, v)
			if err != nil {
				return err
			}
			return printJSON(created)
		},
	}
	createCmd.Flags().String("data", "", "Entity JSON; reads stdin when omitted")
	cmd.AddCommand(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a " + name + " from JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			var v T
			if err := readData(cmd, &v); err != nil {
				return err
			}
			updated, err := ops.update(cmd.Context(), a, ops.withID(v, args[0]))
			if err != nil {
				return err
			}
			return printJSON(updated)
		},
	}
	updateCmd.Flags().String("data", "", "Entity JSON; reads stdin when omitted")
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := ops.delete(cmd.Context(), a, args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	})

	cmd.AddCommand(extras...)
	return cmd
}

func criteriaFromFlags(cmd *cobra.Command, defaultSize int) (criteria.Criteria, error) {
	crit := criteria.Default()
	crit.PageSize = defaultSize

	filters, _ := cmd.Flags().GetStringArray("filter")
	for _, f := range filters {
		field, value, found := strings.Cut(f, "=")
		if !found || field == "" {
			return crit, fmt.Errorf("filter %q is not field=value", f)
		}
		crit.Filters = append(crit.Filters, criteria.Filter{Field: field, Value: value})
	}
	if sort, _ := cmd.Flags().GetString("sort"); sort != "" {
		desc, _ := cmd.Flags().GetBool("desc")
		crit.SortBy = criteria.SortBy{Field: sort, Ascending: !desc}
	}
	if page, _ := cmd.Flags().GetInt("page"); page > 0 {
		crit.PageIndex = page
	}
	if size, _ := cmd.Flags().GetInt("page-size"); size > 0 {
		crit.PageSize = size
	}
	return crit, crit.Validate()
}

// readData unmarshals the --data flag, or stdin when the flag is empty.
func readData(cmd *cobra.Command, v any) error {
	raw, _ := cmd.Flags().GetString("data")
	if raw == "" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		raw = string(b)
	}
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("no entity JSON given; use --data or pipe to stdin")
	}
	return json.Unmarshal([]byte(raw), v)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

// -- per-entity wiring --

var patientOps = crudOps[patient.Patient]{
	search: func(ctx context.Context, a *app, crit criteria.Criteria) (*criteria.PageData[patient.Patient], error) {
		return patient.NewGateway(a.client).Search(ctx, crit)
	},
	get: func(ctx context.Context, a *app, id string) (*patient.Patient, error) {
		return patient.NewGateway(a.client).GetByID(ctx, id)
	},
	create: func(ctx context.Context, a *app, v patient.Patient) (*patient.Patient, error) {
		return patient.NewGateway(a.client).Create(ctx, v)
	},
	update: func(ctx context.Context, a *app, v patient.Patient) (*patient.Patient, error) {
		return patient.NewGateway(a.client).Update(ctx, v)
	},
	delete: func(ctx context.Context, a *app, id string) error {
		return patient.NewGateway(a.client).Delete(ctx, id)
	},
	withID: patient.Patient.WithID,
}

func patientExtras() []*cobra.Command {
	byCode := &cobra.Command{
		Use:   "by-code <code>",
		Short: "Look a patient up by code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			p, err := patient.NewGateway(a.client).ByCode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(p)
		},
	}
	byPID := &cobra.Command{
		Use:   "by-personal-id <personal-id>",
		Short: "Look a patient up by personal id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			p, err := patient.NewGateway(a.client).ByPersonalID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(p)
		},
	}
	return []*cobra.Command{byCode, byPID}
}

var doctorOps = crudOps[doctor.Doctor]{
	search: func(ctx context.Context, a *app, crit criteria.Criteria) (*criteria.PageData[doctor.Doctor], error) {
		return doctor.NewGateway(a.client).Search(ctx, crit)
	},
	get: func(ctx context.Context, a *app, id string) (*doctor.Doctor, error) {
		return doctor.NewGateway(a.client).GetByID(ctx, id)
	},
	create: func(ctx context.Context, a *app, v doctor.Doctor) (*doctor.Doctor, error) {
		return doctor.NewGateway(a.client).Create(ctx, v)
	},
	update: func(ctx context.Context, a *app, v doctor.Doctor) (*doctor.Doctor, error) {
		return doctor.NewGateway(a.client).Update(ctx, v)
	},
	delete: func(ctx context.Context, a *app, id string) error {
		return doctor.NewGateway(a.client).Delete(ctx, id)
	},
	withID: doctor.Doctor.WithID,
}

var unitOps = crudOps[unit.Unit]{
	search: func(ctx context.Context, a *app, crit criteria.Criteria) (*criteria.PageData[unit.Unit], error) {
		return unit.NewGateway(a.client).Search(ctx, crit)
	},
	get: func(ctx context.Context, a *app, id string) (*unit.Unit, error) {
		return unit.NewGateway(a.client).GetByID(ctx, id)
	},
	create: func(ctx context.Context, a *app, v unit.Unit) (*unit.Unit, error) {
		return unit.NewGateway(a.client).Create(ctx, v)
	},
	update: func(ctx context.Context, a *app, v unit.Unit) (*unit.Unit, error) {
		return unit.NewGateway(a.client).Update(ctx, v)
	},
	delete: func(ctx context.Context, a *app, id string) error {
		return unit.NewGateway(a.client).Delete(ctx, id)
	},
	withID: unit.Unit.WithID,
}

var groupOps = crudOps[testgroup.TestGroup]{
	search: func(ctx context.Context, a *app, crit criteria.Criteria) (*criteria.PageData[testgroup.TestGroup], error) {
		return testgroup.NewGateway(a.client).Search(ctx, crit)
	},
	get: func(ctx context.Context, a *app, id string) (*testgroup.TestGroup, error) {
		return testgroup.NewGateway(a.client).GetByID(ctx, id)
	},
	create: func(ctx context.Context, a *app, v testgroup.TestGroup) (*testgroup.TestGroup, error) {
		return testgroup.NewGateway(a.client).Create(ctx, v)
	},
	update: func(ctx context.Context, a *app, v testgroup.TestGroup) (*testgroup.TestGroup, error) {
		return testgroup.NewGateway(a.client).Update(ctx, v)
	},
	delete: func(ctx context.Context, a *app, id string) error {
		return testgroup.NewGateway(a.client).Delete(ctx, id)
	},
	withID: testgroup.TestGroup.WithID,
}

var categoryOps = crudOps[testcategory.TestCategory]{
	search: func(ctx context.Context, a *app, crit criteria.Criteria) (*criteria.PageData[testcategory.TestCategory], error) {
		return testcategory.NewGateway(a.client).Search(ctx, crit)
	},
	get: func(ctx context.Context, a *app, id string) (*testcategory.TestCategory, error) {
		return testcategory.NewGateway(a.client).GetByID(ctx, id)
	},
	create: func(ctx context.Context, a *app, v testcategory.TestCategory) (*testcategory.TestCategory, error) {
		return testcategory.NewGateway(a.client).Create(ctx, v)
	},
	update: func(ctx context.Context, a *app, v testcategory.TestCategory) (*testcategory.TestCategory, error) {
		return testcategory.NewGateway(a.client).Update(ctx, v)
	},
	delete: func(ctx context.Context, a *app, id string) error {
		return testcategory.NewGateway(a.client).Delete(ctx, id)
	},
	withID: testcategory.TestCategory.WithID,
}

var indicationOps = crudOps[indication.Indication]{
	search: func(ctx context.Context, a *app, crit criteria.Criteria) (*criteria.PageData[indication.Indication], error) {
		return indication.NewGateway(a.client).Search(ctx, crit)
	},
	get: func(ctx context.Context, a *app, id string) (*indication.Indication, error) {
		return indication.NewGateway(a.client).GetByID(ctx, id)
	},
	create: func(ctx context.Context, a *app, v indication.Indication) (*indication.Indication, error) {
		return indication.NewGateway(a.client).Create(ctx, v)
	},
	update: func(ctx context.Context, a *app, v indication.Indication) (*indication.Indication, error) {
		return indication.NewGateway(a.client).Update(ctx, v)
	},
	delete: func(ctx context.Context, a *app, id string) error {
		return indication.NewGateway(a.client).Delete(ctx, id)
	},
	withID: indication.Indication.WithID,
}

var testOps = crudOps[labtest.Test]{
	search: func(ctx context.Context, a *app, crit criteria.Criteria) (*criteria.PageData[labtest.Test], error) {
		return labtest.NewGateway(a.client).Search(ctx, crit)
	},
	get: func(ctx context.Context, a *app, id string) (*labtest.Test, error) {
		return labtest.NewGateway(a.client).GetByID(ctx, id)
	},
	create: func(ctx context.Context, a *app, v labtest.Test) (*labtest.Test, error) {
		return labtest.NewGateway(a.client).Create(ctx, v)
	},
	update: func(ctx context.Context, a *app, v labtest.Test) (*labtest.Test, error) {
		return labtest.NewGateway(a.client).Update(ctx, v)
	},
	delete: func(ctx context.Context, a *app, id string) error {
		return labtest.NewGateway(a.client).Delete(ctx, id)
	},
	withID: labtest.Test.WithID,
}

func testExtras() []*cobra.Command {
	indications := &cobra.Command{
		Use:   "indications <test-id>",
		Short: "List the ordered indication lines of a test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			lines, err := labtest.NewGateway(a.client).IndicationsByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(lines)
		},
	}

	order := &cobra.Command{
		Use:   "order <test-id>",
		Short: "Replace the ordered indications of a test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, _ := cmd.Flags().GetStringArray("indication")
			if len(ids) == 0 {
				return fmt.Errorf("at least one --indication is required")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			lines, err := labtest.NewGateway(a.client).EditIndications(cmd.Context(), labtest.EditIndicationsRequest{
				TestID:        args[0],
				IndicationIDs: ids,
			})
			if err != nil {
				return err
			}
			return printJSON(lines)
		},
	}
	order.Flags().StringArray("indication", nil, "Indication id, repeatable")

	details := &cobra.Command{
		Use:   "details <test-id>",
		Short: "Show the result rows of a test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			rows, err := labtest.NewGateway(a.client).Details(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(rows)
		},
	}

	result := &cobra.Command{
		Use:   "result <test-id> <indication-id> <result>",
		Short: "Write one indication result of a test",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, _ := cmd.Flags().GetString("note")
			a, err := newApp()
			if err != nil {
				return err
			}
			rows, err := labtest.NewGateway(a.client).UpdateDetails(cmd.Context(), labtest.UpdateDetailsRequest{
				TestID: args[0],
				Details: []labtest.TestDetail{{
					TestID:       args[0],
					IndicationID: args[1],
					Result:       args[2],
					Note:         note,
				}},
			})
			if err != nil {
				return err
			}
			return printJSON(rows)
		},
	}
	result.Flags().String("note", "", "Result note")

	status := &cobra.Command{
		Use:   "status <test-id> <status>",
		Short: "Move a test through its workflow (0 ordered, 1 sampling, 2 resulted, 3 cancelled)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("status must be numeric: %w", err)
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			t, err := labtest.NewGateway(a.client).UpdateStatus(cmd.Context(), labtest.UpdateStatusRequest{
				TestID: args[0], Status: code,
			})
			if err != nil {
				return err
			}
			return printJSON(t)
		},
	}

	return []*cobra.Command{indications, order, details, result, status}
}

var accountOps = crudOps[account.User]{
	search: func(ctx context.Context, a *app, crit criteria.Criteria) (*criteria.PageData[account.User], error) {
		return account.NewGateway(a.client).Search(ctx, crit)
	},
	get: func(ctx context.Context, a *app, id string) (*account.User, error) {
		return account.NewGateway(a.client).GetByID(ctx, id)
	},
	create: func(ctx context.Context, a *app, v account.User) (*account.User, error) {
		return account.NewGateway(a.client).Create(ctx, v)
	},
	update: func(ctx context.Context, a *app, v account.User) (*account.User, error) {
		return account.NewGateway(a.client).Update(ctx, v)
	},
	delete: func(ctx context.Context, a *app, id string) error {
		return account.NewGateway(a.client).Delete(ctx, id)
	},
	withID: account.User.WithID,
}
