package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wolfman30/docsmile-suite/internal/billing"
	"github.com/wolfman30/docsmile-suite/internal/debounce"
	"github.com/wolfman30/docsmile-suite/internal/receipts"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

const searchLimit = 10

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "docsmile-cli",
		Short:         "DocSmile Suite operator console",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.dataMode, "data-mode", "", "override DATA_MODE (live|static)")
	flags.StringVar(&a.credsPath, "credentials", "", "credentials file written by login")
	flags.StringVarP(&a.username, "username", "u", "", "sign in for this command only")
	flags.StringVarP(&a.password, "password", "p", "", "password for --username")

	root.AddCommand(loginCmd(a), todayCmd(a), searchCmd(a), quoteCmd(a), ageCmd(a))
	return root
}

func loginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Sign in and save the token for later commands",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.login(cmd.Context(), records.LoginRequest{Username: args[0], Password: args[1]})
			if err != nil {
				return err
			}
			saved := savedCredentials{
				Token:    result.Token,
				Username: result.User.Username,
				FullName: result.User.FullName,
				SavedAt:  time.Now().UTC(),
			}
			if err := saveCredentials(a.credsPath, saved); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Sesión iniciada como %s\n", displayName(result.User))
			return nil
		},
	}
}

func todayCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "today",
		Short: "List the appointments of the clinic day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			creds, err := a.credentials(ctx)
			if err != nil {
				return err
			}
			day := a.clock.Today()
			if date != "" {
				if day, err = a.clock.CalendarDay(date); err != nil {
					return err
				}
			}
			backend, err := a.store()
			if err != nil {
				return err
			}
			dash, err := backend.AppointmentDashboard(ctx, creds, records.DashboardQuery{Date: day})
			if err != nil {
				return err
			}
			printAgenda(a, day, dash)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "clinic day (YYYY-MM-DD), defaults to today")
	return cmd
}

func printAgenda(a *app, day string, dash records.Dashboard) {
	fmt.Fprintf(a.out, "Citas del %s: %d (completadas %d, pendientes %d, canceladas %d)\n",
		receipts.FormatDay(day), dash.Stats.Total, dash.Stats.Completed, dash.Stats.Pending, dash.Stats.Cancelled)
	if len(dash.TodayAppointments) == 0 {
		fmt.Fprintln(a.out, "No hay citas programadas.")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HORA\tPACIENTE\tTIPO\tESTADO")
	for _, appt := range dash.TodayAppointments {
		patient := "-"
		if appt.Patient != nil {
			patient = appt.Patient.FullName
		}
		fmt.Fprintf(tw, "%s-%s\t%s\t%s\t%s\n", appt.StartTime, appt.EndTime, patient, appt.Type.Label(), appt.Status.Label())
	}
	_ = tw.Flush()
}

func searchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search [term]",
		Short: "Search patients; without a term, reads terms from stdin as you type",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			creds, err := a.credentials(ctx)
			if err != nil {
				return err
			}
			backend, err := a.store()
			if err != nil {
				return err
			}
			s := &searcher{app: a, backend: backend, creds: creds}
			if len(args) > 0 {
				return s.run(ctx, strings.Join(args, " "))
			}
			return s.interactive(ctx, debounce.New(a.cfg.SearchDebounce))
		},
	}
}

// searcher runs patient searches, at most one at a time.
type searcher struct {
	app     *app
	backend records.PatientBackend
	creds   records.Credentials

	mu       sync.Mutex
	searched string
}

func (s *searcher) run(ctx context.Context, term string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searched = term

	page, err := s.backend.ListPatients(ctx, s.creds, records.PatientQuery{Page: 1, Limit: searchLimit, Search: term})
	if err != nil {
		return err
	}
	out := s.app.out
	fmt.Fprintf(out, "Resultados para %q: %d\n", term, page.Pagination.TotalItems)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, p := range page.Patients {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.DNI, p.FullName, p.Phone)
	}
	return tw.Flush()
}

// interactive treats every stdin line as the current search box contents.
// Only a term left untouched for the debounce window is searched.
func (s *searcher) interactive(ctx context.Context, d *debounce.Debouncer) error {
	scanner := bufio.NewScanner(s.app.in)
	var last string
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		last = term
		if term == "" {
			d.Stop()
			continue
		}
		d.Call(func() {
			if err := s.run(ctx, term); err != nil {
				s.app.logger.Warn("search failed", "error", err, "term", term)
			}
		})
	}
	d.Stop()
	if err := scanner.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	pending := last != "" && last != s.searched
	s.mu.Unlock()
	if pending {
		return s.run(ctx, last)
	}
	return nil
}

func quoteCmd(a *app) *cobra.Command {
	var (
		lines        []string
		payments     []string
		discount     float64
		discountType string
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a bill and check its payment split",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildQuoteRequest(lines, payments, discount, discountType)
			if err != nil {
				return err
			}
			if err := req.Validate(); err != nil {
				return err
			}
			printQuote(a, req.Quote(), len(req.PaymentMethods) > 0)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&lines, "line", "l", nil, "line item as price[:quantity], repeatable")
	cmd.Flags().StringArrayVar(&payments, "pay", nil, "payment as method:amount, repeatable")
	cmd.Flags().Float64VarP(&discount, "discount", "d", 0, "discount value")
	cmd.Flags().StringVar(&discountType, "discount-type", string(billing.DiscountPercentage), "percentage|fixed")
	return cmd
}

func buildQuoteRequest(lines, payments []string, discount float64, discountType string) (records.QuoteRequest, error) {
	kind, err := billing.ParseDiscountType(discountType)
	if err != nil {
		return records.QuoteRequest{}, err
	}
	req := records.QuoteRequest{Discount: discount, DiscountType: kind}
	for _, raw := range lines {
		price, qty, err := parseLine(raw)
		if err != nil {
			return records.QuoteRequest{}, err
		}
		req.Services = append(req.Services, records.PaymentLineInput{UnitPrice: price, Quantity: qty})
	}
	for _, raw := range payments {
		method, amount, ok := strings.Cut(raw, ":")
		if !ok {
			return records.QuoteRequest{}, fmt.Errorf("payment %q: expected method:amount", raw)
		}
		pm, err := taxonomy.ParsePaymentMethod(method)
		if err != nil {
			return records.QuoteRequest{}, err
		}
		value, err := strconv.ParseFloat(amount, 64)
		if err != nil {
			return records.QuoteRequest{}, fmt.Errorf("payment %q: invalid amount", raw)
		}
		req.PaymentMethods = append(req.PaymentMethods, records.MethodAmount{Method: pm, Amount: value})
	}
	return req, nil
}

func parseLine(raw string) (float64, int, error) {
	priceText, qtyText, hasQty := strings.Cut(raw, ":")
	price, err := strconv.ParseFloat(priceText, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("line %q: invalid price", raw)
	}
	qty := 1
	if hasQty {
		if qty, err = strconv.Atoi(qtyText); err != nil {
			return 0, 0, fmt.Errorf("line %q: invalid quantity", raw)
		}
	}
	return price, qty, nil
}

func printQuote(a *app, q billing.Quote, withSplit bool) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Subtotal:\t%s\t\n", receipts.FormatCurrency(q.Subtotal))
	fmt.Fprintf(tw, "Descuento:\t%s\t\n", receipts.FormatCurrency(q.DiscountAmount))
	fmt.Fprintf(tw, "TOTAL:\t%s\t\n", receipts.FormatCurrency(q.Total))
	if withSplit {
		fmt.Fprintf(tw, "Pagado:\t%s\t\n", receipts.FormatCurrency(q.Paid))
		fmt.Fprintf(tw, "Pendiente:\t%s\t\n", receipts.FormatCurrency(q.Remaining))
		fmt.Fprintf(tw, "Vuelto:\t%s\t\n", receipts.FormatCurrency(q.ChangeDue))
	}
	_ = tw.Flush()
	if !withSplit {
		return
	}
	if q.SplitValid {
		fmt.Fprintln(a.out, "El pago cuadra con el total.")
	} else {
		fmt.Fprintln(a.out, "El pago NO cuadra con el total.")
	}
}

func ageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "age <birth-date>",
		Short: "Age in years today in the clinic timezone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			age, ok := a.clock.Age(args[0])
			if !ok {
				return fmt.Errorf("fecha de nacimiento inválida: %s", args[0])
			}
			fmt.Fprintf(a.out, "%d años\n", age)
			return nil
		},
	}
}

func displayName(u records.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
