package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"turnon/internal/apiclient"
	"turnon/internal/config"
	"turnon/internal/models"
	"turnon/internal/normalize"
	"turnon/internal/service"
	"turnon/internal/session"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const usage = `usage: turnonctl <command> [flags]

commands:
  login <email> [password]
  logout
  whoami
  queue [-date YYYY-MM-DD] [-doctor ID]
  stats [-date YYYY-MM-DD]
  create -name NAME -service ID -doctor ID [-email EMAIL] [-phone PHONE] [-start RFC3339] [-room ROOM]
  complete <turn-id>
  cancel <turn-id>
  users
`

var (
	errUsage       = errors.New("usage")
	errNotLoggedIn = errors.New("not logged in, run turnonctl login first")
)

type app struct {
	out      io.Writer
	sessions *session.Store
	turns    *service.Turns
	users    *service.Users
	auth     *service.Auth
}

func newApp(cfg config.Config, sessions *session.Store, out io.Writer) *app {
	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, sessions)
	return &app{
		out:      out,
		sessions: sessions,
		turns:    service.NewTurns(api, service.TurnOptions{DemoFallback: cfg.DemoFallback, Location: cfg.Location}),
		users:    service.NewUsers(api),
		auth:     service.NewAuth(api, sessions),
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami()
	}

	if a.sessions.Token() == "" {
		return errNotLoggedIn
	}
	switch cmd {
	case "queue":
		return a.queue(ctx, rest)
	case "stats":
		return a.stats(ctx, rest)
	case "create":
		return a.create(ctx, rest)
	case "complete":
		return a.transition(ctx, rest, a.turns.Complete)
	case "cancel":
		return a.transition(ctx, rest, a.turns.Cancel)
	case "users":
		return a.listUsers(ctx)
	default:
		return errUsage
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	var password string
	switch len(args) {
	case 2:
		password = args[1]
	case 1:
		// Prompt without echo when attached to a terminal.
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return errUsage
		}
		fmt.Fprint(a.out, "password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(a.out)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	default:
		return errUsage
	}
	sess, err := a.auth.Login(ctx, service.Credentials{Email: args[0], Password: password})
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "logged in as %s\n", displayUser(sess.User))
	return nil
}

func (a *app) logout() error {
	if err := a.auth.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func (a *app) whoami() error {
	sess, ok := a.sessions.Session()
	if !ok {
		return errNotLoggedIn
	}
	fmt.Fprintln(a.out, displayUser(sess.User))
	return nil
}

func (a *app) queue(ctx context.Context, args []string) error {
	fs := newFlagSet("queue")
	date := fs.String("date", "", "day to show, YYYY-MM-DD")
	doctor := fs.Int64("doctor", 0, "only this doctor's turns")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	view, err := a.turns.View(ctx, *date, *doctor)
	if err != nil {
		return err
	}
	color.New(color.Bold).Fprintf(a.out, "Queue %s\n", view.Date)
	printStats(a.out, models.DailyStats{
		Total:     view.Stats.Total,
		Pending:   view.Stats.Pending,
		Active:    view.Stats.Active,
		Completed: view.Stats.Completed,
		Cancelled: view.Stats.Cancelled,
	})
	printEntries(a.out, "Active", view.Active)
	printEntries(a.out, "Pending", view.Pending)
	return nil
}

func (a *app) stats(ctx context.Context, args []string) error {
	fs := newFlagSet("stats")
	date := fs.String("date", "", "day to count, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	stats, err := a.turns.DayStats(ctx, *date)
	if err != nil {
		return err
	}
	color.New(color.Bold).Fprintf(a.out, "Stats %s\n", stats.Day)
	printStats(a.out, stats)
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := newFlagSet("create")
	var input service.CreateTurnInput
	fs.StringVar(&input.PatientName, "name", "", "patient name")
	fs.Int64Var(&input.ServiceID, "service", 0, "service id")
	fs.Int64Var(&input.UserID, "doctor", 0, "doctor (user) id")
	fs.StringVar(&input.PatientEmail, "email", "", "patient email")
	fs.StringVar(&input.PatientPhone, "phone", "", "patient phone")
	fs.StringVar(&input.StartTime, "start", "", "start time, RFC 3339; now when empty")
	fs.StringVar(&input.OfficeRoom, "room", "", "office room")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	turn, err := a.turns.Create(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, "created ")
	printTurn(a.out, turn)
	return nil
}

func (a *app) transition(ctx context.Context, args []string, apply func(context.Context, int64) (models.Turn, error)) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid turn id %q", args[0])
	}
	turn, err := apply(ctx, id)
	if err != nil {
		return err
	}
	printTurn(a.out, turn)
	return nil
}

func (a *app) listUsers(ctx context.Context) error {
	users, err := a.users.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		name := strings.TrimSpace(u.Name + " " + u.LastName)
		line := fmt.Sprintf("%-6s %-28s %-28s %-14s %s\n", u.ID, name, u.Email, normalize.RoleLabel(u.Role), u.Status)
		if u.Status == models.UserStatusInactive {
			color.New(color.Faint).Fprint(a.out, line)
			continue
		}
		fmt.Fprint(a.out, line)
	}
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func displayUser(u models.SessionUser) string {
	name := u.Name
	if name == "" {
		name = u.Email
	}
	if u.Role == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, normalize.RoleLabel(u.Role))
}

func statusColor(status string) *color.Color {
	switch status {
	case models.StatusPending:
		return color.New(color.FgYellow)
	case models.StatusActive:
		return color.New(color.FgGreen)
	case models.StatusCompleted:
		return color.New(color.FgCyan)
	case models.StatusCancelled:
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}

func printStats(w io.Writer, s models.DailyStats) {
	fmt.Fprintf(w, "total %d  ", s.Total)
	statusColor(models.StatusPending).Fprintf(w, "pending %d  ", s.Pending)
	statusColor(models.StatusActive).Fprintf(w, "active %d  ", s.Active)
	statusColor(models.StatusCompleted).Fprintf(w, "completed %d  ", s.Completed)
	statusColor(models.StatusCancelled).Fprintf(w, "cancelled %d\n", s.Cancelled)
}

func printEntries(w io.Writer, title string, entries []models.QueueEntry) {
	fmt.Fprintf(w, "\n%s (%d)\n", title, len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "  %-4s %-5s %-24s %-18s %-18s ", e.Position, e.Ticket, e.PatientName, e.ServiceName, e.Doctor)
		statusColor(e.Status).Fprintln(w, e.Status)
	}
}

func printTurn(w io.Writer, t models.Turn) {
	fmt.Fprintf(w, "turn %d %s ", t.ID, t.PatientName)
	statusColor(t.Status).Fprintln(w, t.Status)
}
