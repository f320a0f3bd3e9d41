// Package cli is the front-desk command line: the scheduling façade running
// against the frontdesk API.
package cli

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/jwalitptl/frontdesk/internal/backend"
	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/repository"
	"github.com/jwalitptl/frontdesk/internal/service/appointment"
	"github.com/jwalitptl/frontdesk/pkg/errors"
	"github.com/jwalitptl/frontdesk/pkg/logger"
)

// Session is what every command works with.
type Session struct {
	Appointments *appointment.Service
	Patients     repository.PatientRepository
	Location     *time.Location
	Now          func() time.Time
}

func (s *Session) today() model.Date {
	return model.DateOf(s.Now().In(s.Location))
}

// Connect builds a Session talking to the API described by cfg.
func Connect(cfg *Config) (*Session, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	client, err := backend.NewClient(backend.Config{
		BaseURL:         cfg.APIURL,
		Token:           cfg.Token,
		Timeout:         cfg.Timeout,
		PatientCacheTTL: cfg.PatientCacheTTL,
	})
	if err != nil {
		return nil, err
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		TimeFormat: time.Kitchen,
		Output:     os.Stderr,
	})
	patients := client.Patients()
	return &Session{
		Appointments: appointment.NewService(client.Appointments(), patients, client.Slots(), appointment.Options{Logger: log}),
		Patients:     patients,
		Location:     loc,
		Now:          time.Now,
	}, nil
}

type App struct {
	out     io.Writer
	in      *bufio.Reader
	connect func() (*Session, error)
	session *Session
}

// NewApp wires the commands. connect runs once, before the first command.
func NewApp(out io.Writer, in io.Reader, connect func() (*Session, error)) *cli.App {
	a := &App{out: out, in: bufio.NewReader(in), connect: connect}

	return &cli.App{
		Name:      "frontdesk",
		Usage:     "Book and manage clinic appointments.",
		Writer:    out,
		ErrWriter: out,
		Before: func(c *cli.Context) error {
			if c.Args().Len() == 0 || c.Args().First() == "help" {
				return nil
			}
			s, err := a.connect()
			if err != nil {
				return err
			}
			a.session = s
			return nil
		},
		ExitErrHandler: func(c *cli.Context, err error) {},
		Commands: []*cli.Command{
			a.bookCommand(),
			a.cancelCommand(),
			a.completeCommand(),
			a.rescheduleCommand(),
			a.removeCommand(),
			a.listCommand(),
			a.weekCommand(),
			a.slotsCommand(),
			a.availableCommand(),
			a.checkCommand(),
			a.slotCommand(),
			a.patientsCommand(),
			a.exportCommand(),
			a.watchCommand(),
		},
	}
}

// Explain turns an error into the message shown at the desk.
func Explain(err error) string {
	switch {
	case errors.IsConflict(err):
		return fmt.Sprintf("%s. Pick another time.", messageOf(err))
	case errors.IsValidation(err):
		return messageOf(err)
	case errors.IsNotFound(err):
		return messageOf(err)
	case errors.IsCollaborator(err):
		return "The clinic server could not be reached. Try again later."
	default:
		return err.Error()
	}
}

func messageOf(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Message != "" {
		return strings.ToUpper(appErr.Message[:1]) + appErr.Message[1:]
	}
	return err.Error()
}

func parseID(c *cli.Context) (uuid.UUID, error) {
	if c.Args().Len() != 1 {
		return uuid.Nil, errors.NewValidation("expected one appointment ID")
	}
	id, err := uuid.Parse(c.Args().First())
	if err != nil {
		return uuid.Nil, errors.NewValidation(fmt.Sprintf("invalid appointment ID %q", c.Args().First()))
	}
	return id, nil
}

func (a *App) date(c *cli.Context) (model.Date, error) {
	raw := c.String("date")
	if raw == "" {
		return a.session.today(), nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, errors.NewValidation(err.Error())
	}
	return d, nil
}

func timeArg(raw string) (model.TimeOfDay, error) {
	t, err := model.ParseTimeOfDay(raw)
	if err != nil {
		return 0, errors.NewValidation(err.Error())
	}
	return t, nil
}

func (a *App) confirm(prompt string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", prompt)
	line, _ := a.in.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

var dateFlag = &cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "day as YYYY-MM-DD (default: today)"}
