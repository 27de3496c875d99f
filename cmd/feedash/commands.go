package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/client/service"
	"github.com/yigit/schooladmin/internal/client/store"
	"github.com/yigit/schooladmin/internal/pkg/auth"
	"github.com/yigit/schooladmin/internal/pkg/feecalc"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
	"github.com/yigit/schooladmin/internal/pkg/validation"
)

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "sign an access token with the configured JWT secret",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "user-id", Value: 1},
			&cli.StringFlag{Name: "email", Value: "admin@school.local"},
			&cli.StringFlag{Name: "role", Value: string(models.RoleAdmin), Usage: "ADMIN, ACCOUNTANT or TEACHER"},
		},
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			if e.cfg.JWT.Secret == "" {
				return cli.Exit("jwt.secret is not configured", 1)
			}
			role := models.RoleType(strings.ToUpper(c.String("role")))
			switch role {
			case models.RoleAdmin, models.RoleAccountant, models.RoleTeacher:
			default:
				return cli.Exit(fmt.Sprintf("unknown role %q", c.String("role")), 1)
			}

			expiry := helpers.ParseDuration(e.cfg.JWT.AccessTokenExpiration, 24*time.Hour)
			jwtService := auth.NewJWTService(auth.JWTConfig{
				SecretKey:      e.cfg.JWT.Secret,
				AccessTokenExp: expiry,
				TokenIssuer:    e.cfg.JWT.Issuer,
			})
			token, err := jwtService.GenerateToken(c.Int64("user-id"), c.String("email"), role)
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, token)
			return nil
		},
	}
}

func feeTypesCommand() *cli.Command {
	return &cli.Command{
		Name:  "fee-types",
		Usage: "list fee types",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "active", Usage: "only active fee types"},
		},
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			var active *bool
			if c.IsSet("active") {
				v := c.Bool("active")
				active = &v
			}
			types, err := unwrap(e, service.NewFeeTypeService(e.repo).List(c.Context, active))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCODE\tNAME\tACTIVE")
			for _, t := range types {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", t.ID, t.Code, t.Name, t.Active)
			}
			return w.Flush()
		},
	}
}

// entityFlags select a class or a bus stop
var entityFlags = []cli.Flag{
	&cli.Int64Flag{Name: "class", Usage: "class id"},
	&cli.Int64Flag{Name: "bus-stop", Usage: "bus stop id"},
}

func entity(c *cli.Context) (string, int64, error) {
	classID, stopID := c.Int64("class"), c.Int64("bus-stop")
	switch {
	case classID > 0 && stopID > 0:
		return "", 0, cli.Exit("use either --class or --bus-stop", 1)
	case classID > 0:
		return "class", classID, nil
	case stopID > 0:
		return "bus_stop", stopID, nil
	default:
		return "", 0, cli.Exit("--class or --bus-stop is required", 1)
	}
}

func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "aggregate the fees assigned to a class or bus stop locally",
		Flags: append([]cli.Flag{
			&cli.IntFlag{Name: "students", Usage: "number of students to charge"},
		}, entityFlags...),
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			filter, id, err := entity(c)
			if err != nil {
				return err
			}
			dashboards := service.NewFeeDashboardService(e.repo, e.cfg.Fees.TermsPerYear)
			dash, err := unwrap(e, dashboards.Load(c.Context, service.DashboardQuery{
				Filter:       filter,
				EntityID:     id,
				StudentCount: c.Int("students"),
			}))
			if err != nil {
				return err
			}

			table := feecalc.MultipliersWithTerms(e.cfg.Fees.TermsPerYear)
			w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FEE\tTYPE\tFREQUENCY\tAMOUNT\tANNUAL")
			for _, a := range dash.Assignments {
				if a.Fee == nil {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.Fee.Name, a.Fee.TypeName(), a.Fee.Frequency,
					money(a.Fee.BaseAmount), money(table.Annualize(a.Fee.BaseAmount, a.Fee.Frequency)))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printSummary(e, dash.Summary)
			return nil
		},
	}
}

func feeSummaryCommand() *cli.Command {
	return &cli.Command{
		Name:  "fee-summary",
		Usage: "show the server computed fee summary of a class or bus stop",
		Flags: entityFlags,
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			filter, id, err := entity(c)
			if err != nil {
				return err
			}
			fees := service.NewFeeAssignmentService(e.repo)
			r := fees.ClassSummary(c.Context, id)
			if filter == "bus_stop" {
				r = fees.BusStopSummary(c.Context, id)
			}
			summary, err := unwrap(e, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%s %s\n", summary.EntityType, summary.EntityName)
			printSummary(e, summary.Summary)
			return nil
		},
	}
}

func printSummary(e *env, s feecalc.Summary) {
	w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Students\t%d\n", s.StudentCount)
	fmt.Fprintf(w, "Total revenue\t%s\n", money(s.Totals.Revenue))
	fmt.Fprintf(w, "Monthly\t%s\n", money(s.Totals.Monthly))
	fmt.Fprintf(w, "Yearly\t%s\n", money(s.Totals.Yearly))
	fmt.Fprintf(w, "One-time\t%s\n", money(s.Totals.OneTime))
	fmt.Fprintf(w, "Per student\t%s\n", money(s.PerStudent.Revenue))
	if s.PredominantFrequency != "" {
		fmt.Fprintf(w, "Predominant frequency\t%s\n", s.PredominantFrequency)
	}
	for _, ft := range s.FeeTypes() {
		fmt.Fprintf(w, "  %s\t%s (%d)\n", ft.Name, money(ft.TotalAmount), ft.Count)
	}
	if s.InstallmentExcess.IsPositive() {
		fmt.Fprintf(w, "Installment excess\t%s\n", money(s.InstallmentExcess))
	}
	w.Flush()
}

func classesCommand() *cli.Command {
	return &cli.Command{
		Name:  "classes",
		Usage: "show enrollment metrics per class",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "only this class"},
		},
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			classes := store.NewClassStore(service.NewClassService(e.repo), e.logger)
			if classes.Fetch(c.Context) != store.StatePopulated {
				return cli.Exit(classes.Snapshot().Error, 1)
			}
			snap := classes.Snapshot()
			if snap.Warning != "" {
				e.logger.Warn().Msg(snap.Warning)
			}

			var metrics []store.ClassMetrics
			if name := c.String("name"); name != "" {
				m, ok := classes.Metrics(name)
				if !ok {
					return cli.Exit(fmt.Sprintf("class %q not found", name), 1)
				}
				metrics = append(metrics, m)
			} else {
				for _, m := range snap.Metrics {
					metrics = append(metrics, m)
				}
				sort.Slice(metrics, func(i, j int) bool { return metrics[i].ClassName < metrics[j].ClassName })
			}

			for _, m := range metrics {
				fmt.Fprintf(e.out, "%s: %d students\n", m.ClassName, m.Headcount)
				fmt.Fprintf(e.out, "  gender: %s\n", counts(m.GenderCounts))
				fmt.Fprintf(e.out, "  admission: %s\n", counts(m.AdmissionTypes))
				fmt.Fprintf(e.out, "  mode: %s\n", counts(m.Modes))
				for _, month := range m.Months() {
					fmt.Fprintf(e.out, "  %s: %d\n", month, m.MonthlyTrend[month])
				}
				for _, r := range m.RecentAdmissions {
					fmt.Fprintf(e.out, "  recent: %s %s %s\n", r.AdmissionDate.Format(time.DateOnly), r.StudentName, r.DivisionName)
				}
			}
			return nil
		},
	}
}

func counts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, " ")
}

func divisionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "divisions",
		Usage: "show capacity and gender ratio of the divisions of a class",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "class", Usage: "class id", Required: true},
		},
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			divisions := store.NewDivisionStore(service.NewDivisionService(e.repo), service.NewClassService(e.repo))
			if divisions.Fetch(c.Context, c.Int64("class")) != store.StatePopulated {
				return cli.Exit(divisions.Snapshot().Error, 1)
			}
			snap := divisions.Snapshot()

			w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DIVISION\tTEACHER\tSTUDENTS\tCAPACITY\tVACANCIES\tM:F")
			for _, d := range snap.Divisions {
				m := snap.Metrics[d.ID]
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n", d.Name, d.ClassTeacher, m.Headcount, m.Capacity, m.Vacancies(), m.GenderRatio())
			}
			return w.Flush()
		},
	}
}

func paymentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "payments",
		Usage: "list payment items and the outstanding total",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Usage: "pending, partial, paid, waived or overdue"},
			&cli.Int64Flag{Name: "schedule", Usage: "payment schedule id"},
			&cli.IntFlag{Name: "page", Value: 1},
			&cli.IntFlag{Name: "size", Value: 20},
		},
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			payments := service.NewPaymentItemService(e.repo)
			r := payments.List(c.Context, c.String("status"), c.Int("page"), c.Int("size"))
			if id := c.Int64("schedule"); id > 0 {
				r = payments.BySchedule(c.Context, id)
			}
			items, err := unwrap(e, r)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTUDENT\tITEM\tDUE\tAMOUNT\tPAID\tSTATUS")
			for _, p := range items {
				due := ""
				if p.DueDate != nil {
					due = p.DueDate.Format(time.DateOnly)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.StudentName, p.Label, due, money(p.Amount), money(p.PaidAmount), p.Status)
			}
			fmt.Fprintf(w, "\t\t\t\tOutstanding\t%s\t\n", money(service.OutstandingTotal(items)))
			return w.Flush()
		},
	}
}

func walletCommand() *cli.Command {
	walletID := func(c *cli.Context) (int64, error) {
		var id int64
		if _, err := fmt.Sscan(c.Args().First(), &id); err != nil || id <= 0 {
			return 0, cli.Exit("wallet id argument is required", 1)
		}
		return id, nil
	}
	wallets := func(e *env) *service.WalletService {
		return service.NewWalletService(e.repo, decimal.NewFromFloat(e.cfg.Wallet.MaxTopup))
	}

	return &cli.Command{
		Name:  "wallet",
		Usage: "student wallet operations",
		Subcommands: []*cli.Command{
			{
				Name:      "balance",
				Usage:     "show the balance of a wallet",
				ArgsUsage: "WALLET_ID",
				Action: func(c *cli.Context) error {
					e := getEnv(c)
					id, err := walletID(c)
					if err != nil {
						return err
					}
					b, err := unwrap(e, wallets(e).GetBalance(c.Context, id))
					if err != nil {
						return err
					}
					fmt.Fprintf(e.out, "Wallet %s (%s)\n", b.WalletID, b.Status)
					fmt.Fprintf(e.out, "Balance: %s\n", money(b.CurrentBalance))
					fmt.Fprintf(e.out, "Spent today: %s\n", money(b.SpentToday))
					fmt.Fprintf(e.out, "Remaining today: %s\n", money(b.RemainingToday()))
					if b.IsLowBalance {
						fmt.Fprintln(e.out, "Low balance")
					}
					return nil
				},
			},
			{
				Name:      "statement",
				Usage:     "summarize a wallet over a date range",
				ArgsUsage: "WALLET_ID",
				Flags: []cli.Flag{
					&cli.TimestampFlag{Name: "from", Layout: time.DateOnly},
					&cli.TimestampFlag{Name: "to", Layout: time.DateOnly},
				},
				Action: func(c *cli.Context) error {
					e := getEnv(c)
					id, err := walletID(c)
					if err != nil {
						return err
					}
					var from, to time.Time
					if t := c.Timestamp("from"); t != nil {
						from = *t
					}
					if t := c.Timestamp("to"); t != nil {
						to = *t
					}
					st, err := unwrap(e, wallets(e).GetStatement(c.Context, id, from, to))
					if err != nil {
						return err
					}

					w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
					fmt.Fprintf(w, "Opening\t%s\n", money(st.OpeningBalance))
					for _, tx := range st.Transactions {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tx.CreatedAt.Format(time.DateOnly), tx.Type, money(tx.Amount), tx.Description)
					}
					fmt.Fprintf(w, "Deposits\t%s\n", money(st.TotalDeposits))
					fmt.Fprintf(w, "Withdrawals\t%s\n", money(st.TotalWithdrawals))
					fmt.Fprintf(w, "Closing\t%s\n", money(st.ClosingBalance))
					return w.Flush()
				},
			},
			{
				Name:      "topup",
				Usage:     "add money to a wallet",
				ArgsUsage: "WALLET_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "amount", Required: true},
					&cli.StringFlag{Name: "reference"},
					&cli.StringFlag{Name: "description"},
				},
				Action: func(c *cli.Context) error {
					e := getEnv(c)
					id, err := walletID(c)
					if err != nil {
						return err
					}
					amount, err := parseAmount(c.String("amount"))
					if err != nil {
						return err
					}
					tx, err := unwrap(e, wallets(e).Topup(c.Context, id, service.TopupData{
						Amount:      amount,
						Reference:   c.String("reference"),
						Description: c.String("description"),
					}))
					if err != nil {
						return err
					}
					fmt.Fprintf(e.out, "Topped up %s, balance %s\n", money(tx.Amount), money(tx.BalanceAfter))
					return nil
				},
			},
			{
				Name:      "purchase",
				Usage:     "spend money from a wallet",
				ArgsUsage: "WALLET_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "amount", Required: true},
					&cli.StringFlag{Name: "category", Required: true, Usage: strings.Join(validation.PurchaseCategories, ", ")},
					&cli.StringFlag{Name: "description"},
				},
				Action: func(c *cli.Context) error {
					e := getEnv(c)
					id, err := walletID(c)
					if err != nil {
						return err
					}
					amount, err := parseAmount(c.String("amount"))
					if err != nil {
						return err
					}
					tx, err := unwrap(e, wallets(e).Purchase(c.Context, id, service.PurchaseData{
						Amount:      amount,
						Category:    c.String("category"),
						Description: c.String("description"),
					}))
					if err != nil {
						return err
					}
					fmt.Fprintf(e.out, "Spent %s on %s, balance %s\n", money(tx.Amount), tx.Category, money(tx.BalanceAfter))
					return nil
				},
			},
		},
	}
}
