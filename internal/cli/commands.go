package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/jwalitptl/frontdesk/internal/export"
	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/service/appointment"
	"github.com/jwalitptl/frontdesk/pkg/errors"
)

func (a *App) bookCommand() *cli.Command {
	return &cli.Command{
		Name:      "book",
		Usage:     "Book an appointment.",
		ArgsUsage: "HH:MM",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "patient", Aliases: []string{"p"}, Required: true, Usage: "patient ID"},
			dateFlag,
			&cli.IntFlag{Name: "duration", Value: model.DefaultDurationMinutes, Usage: "minutes"},
			&cli.StringFlag{Name: "notes"},
		},
		Action: func(c *cli.Context) error {
			patientID, err := uuid.Parse(c.String("patient"))
			if err != nil {
				return errors.NewValidation(fmt.Sprintf("invalid patient ID %q", c.String("patient")))
			}
			date, err := a.date(c)
			if err != nil {
				return err
			}
			at, err := timeArg(c.Args().First())
			if err != nil {
				return err
			}

			appt, err := a.session.Appointments.Book(c.Context, appointment.BookRequest{
				PatientID: patientID,
				Date:      date,
				Time:      at,
				Duration:  c.Int("duration"),
				Notes:     c.String("notes"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Booked %s on %s at %s for %d min (%s)\n",
				appt.PatientName, appt.Date, appt.Time, appt.Duration, appt.ID)
			return nil
		},
	}
}

func (a *App) cancelCommand() *cli.Command {
	return &cli.Command{
		Name:      "cancel",
		Usage:     "Cancel a scheduled appointment.",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
		},
		Action: func(c *cli.Context) error {
			id, err := parseID(c)
			if err != nil {
				return err
			}
			if !c.Bool("yes") {
				appt, err := a.session.Appointments.Get(c.Context, id)
				if err != nil {
					return err
				}
				if !a.confirm(fmt.Sprintf("Cancel %s on %s at %s?", appt.PatientName, appt.Date, appt.Time)) {
					fmt.Fprintln(a.out, "Left unchanged.")
					return nil
				}
			}

			appt, err := a.session.Appointments.Cancel(c.Context, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Cancelled %s on %s at %s\n", appt.PatientName, appt.Date, appt.Time)
			return nil
		},
	}
}

func (a *App) completeCommand() *cli.Command {
	return &cli.Command{
		Name:      "complete",
		Usage:     "Mark an appointment as completed.",
		ArgsUsage: "ID",
		Action: func(c *cli.Context) error {
			id, err := parseID(c)
			if err != nil {
				return err
			}
			appt, err := a.session.Appointments.Complete(c.Context, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Completed %s on %s at %s\n", appt.PatientName, appt.Date, appt.Time)
			return nil
		},
	}
}

func (a *App) rescheduleCommand() *cli.Command {
	return &cli.Command{
		Name:      "reschedule",
		Usage:     "Move an appointment, keeping its duration. Without --date it stays on its day.",
		ArgsUsage: "ID HH:MM",
		Flags:     []cli.Flag{dateFlag},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return errors.NewValidation("expected an appointment ID and a time")
			}
			id, err := uuid.Parse(c.Args().Get(0))
			if err != nil {
				return errors.NewValidation(fmt.Sprintf("invalid appointment ID %q", c.Args().Get(0)))
			}
			at, err := timeArg(c.Args().Get(1))
			if err != nil {
				return err
			}
			var date model.Date
			if c.IsSet("date") {
				if date, err = a.date(c); err != nil {
					return err
				}
			} else {
				current, err := a.session.Appointments.Get(c.Context, id)
				if err != nil {
					return err
				}
				date = current.Date
			}

			appt, err := a.session.Appointments.Reschedule(c.Context, id, date, at)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Moved %s to %s at %s\n", appt.PatientName, appt.Date, appt.Time)
			return nil
		},
	}
}

func (a *App) removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Delete an appointment record. Use cancel to keep it on file.",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
		},
		Action: func(c *cli.Context) error {
			id, err := parseID(c)
			if err != nil {
				return err
			}
			if !c.Bool("yes") && !a.confirm("Delete this appointment permanently?") {
				fmt.Fprintln(a.out, "Left unchanged.")
				return nil
			}
			if err := a.session.Appointments.Remove(c.Context, id); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Removed.")
			return nil
		},
	}
}

func (a *App) listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the appointments of one day.",
		Flags: []cli.Flag{dateFlag},
		Action: func(c *cli.Context) error {
			date, err := a.date(c)
			if err != nil {
				return err
			}
			appts, err := a.session.Appointments.ListForDate(c.Context, date)
			if err != nil {
				return err
			}
			return renderAppointments(a.out, appts)
		},
	}
}

func (a *App) weekCommand() *cli.Command {
	return &cli.Command{
		Name:  "week",
		Usage: "Show the Sunday-to-Saturday week containing a day.",
		Flags: []cli.Flag{dateFlag},
		Action: func(c *cli.Context) error {
			date, err := a.date(c)
			if err != nil {
				return err
			}
			week, err := a.session.Appointments.ListForWeek(c.Context, date)
			if err != nil {
				return err
			}
			return renderWeek(a.out, week)
		},
	}
}

func (a *App) slotsCommand() *cli.Command {
	return &cli.Command{
		Name:  "slots",
		Usage: "Show the slot grid of one day with booked slots marked.",
		Flags: []cli.Flag{dateFlag},
		Action: func(c *cli.Context) error {
			date, err := a.date(c)
			if err != nil {
				return err
			}
			day, err := a.session.Appointments.DaySlots(c.Context, date)
			if err != nil {
				return err
			}
			return renderDay(a.out, day)
		},
	}
}

func (a *App) availableCommand() *cli.Command {
	return &cli.Command{
		Name:  "available",
		Usage: "List the free slots of one day.",
		Flags: []cli.Flag{dateFlag},
		Action: func(c *cli.Context) error {
			date, err := a.date(c)
			if err != nil {
				return err
			}
			slots, err := a.session.Appointments.AvailableSlots(c.Context, date)
			if err != nil {
				return err
			}
			if len(slots) == 0 {
				fmt.Fprintf(a.out, "No free slots on %s\n", date)
				return nil
			}
			for _, s := range slots {
				fmt.Fprintln(a.out, s.Time)
			}
			return nil
		},
	}
}

func (a *App) checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check whether a time is free.",
		ArgsUsage: "HH:MM",
		Flags: []cli.Flag{
			dateFlag,
			&cli.IntFlag{Name: "duration", Value: model.DefaultDurationMinutes, Usage: "minutes"},
		},
		Action: func(c *cli.Context) error {
			date, err := a.date(c)
			if err != nil {
				return err
			}
			at, err := timeArg(c.Args().First())
			if err != nil {
				return err
			}
			ok, err := a.session.Appointments.CheckAvailability(c.Context, date, at, c.Int("duration"))
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(a.out, "%s %s is free\n", date, at)
			} else {
				fmt.Fprintf(a.out, "%s %s is taken\n", date, at)
			}
			return nil
		},
	}
}

func (a *App) slotCommand() *cli.Command {
	return &cli.Command{
		Name:  "slot",
		Usage: "Manage custom slots outside the regular grid.",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List custom slots.",
				Action: func(c *cli.Context) error {
					slots, err := a.session.Appointments.CustomSlots(c.Context)
					if err != nil {
						return err
					}
					for _, s := range slots {
						fmt.Fprintln(a.out, s)
					}
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "Add a custom slot.",
				ArgsUsage: "HH:MM",
				Action: func(c *cli.Context) error {
					at, err := timeArg(c.Args().First())
					if err != nil {
						return err
					}
					if err := a.session.Appointments.AddCustomSlot(c.Context, at); err != nil {
						return err
					}
					fmt.Fprintf(a.out, "Added %s\n", at)
					return nil
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a custom slot.",
				ArgsUsage: "HH:MM",
				Action: func(c *cli.Context) error {
					at, err := timeArg(c.Args().First())
					if err != nil {
						return err
					}
					if err := a.session.Appointments.RemoveCustomSlot(c.Context, at); err != nil {
						return err
					}
					fmt.Fprintf(a.out, "Removed %s\n", at)
					return nil
				},
			},
		},
	}
}

func (a *App) patientsCommand() *cli.Command {
	return &cli.Command{
		Name:  "patients",
		Usage: "Search patients by name, phone or serial number.",
		Flags: []cli.Flag{&cli.StringFlag{Name: "search", Aliases: []string{"s"}}},
		Action: func(c *cli.Context) error {
			patients, err := a.session.Patients.List(c.Context, &model.PatientFilters{SearchTerm: c.String("search")})
			if err != nil {
				if errors.CodeOf(err) == 0 {
					err = errors.NewCollaborator("fetch patients", err)
				}
				return err
			}
			return renderPatients(a.out, patients)
		},
	}
}

func (a *App) exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write all appointments to a CSV or iCalendar file.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "csv", Usage: "csv or ics"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "file name (default: appointments_data_YYYYMMDD.<format>)"},
		},
		Action: func(c *cli.Context) error {
			format := c.String("format")
			if format != "csv" && format != "ics" {
				return errors.NewValidation(fmt.Sprintf("unknown format %q", format))
			}
			appts, err := a.session.Appointments.All(c.Context)
			if err != nil {
				return err
			}

			now := a.session.Now()
			name := c.String("out")
			if name == "" {
				name = export.Filename("appointments", format, now.In(a.session.Location))
			}
			f, err := os.Create(name)
			if err != nil {
				return err
			}
			defer f.Close()

			if format == "ics" {
				err = export.WriteAppointmentsICS(f, appts, a.session.Location, now)
			} else {
				err = export.WriteAppointmentsCSV(f, appts)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Wrote %d appointments to %s\n", len(appts), name)
			return f.Close()
		},
	}
}

func (a *App) watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Redraw a day's grid periodically so other desks' bookings show up.",
		Flags: []cli.Flag{
			dateFlag,
			&cli.DurationFlag{Name: "interval", Value: 30 * time.Second},
		},
		Action: func(c *cli.Context) error {
			date, err := a.date(c)
			if err != nil {
				return err
			}
			ticker := time.NewTicker(c.Duration("interval"))
			defer ticker.Stop()

			for {
				if err := a.session.Appointments.Refresh(c.Context); err != nil {
					fmt.Fprintln(a.out, Explain(err))
				} else if day, err := a.session.Appointments.DaySlots(c.Context, date); err == nil {
					fmt.Fprintf(a.out, "-- %s --\n", a.session.Now().In(a.session.Location).Format(time.Kitchen))
					if err := renderDay(a.out, day); err != nil {
						return err
					}
				}

				select {
				case <-c.Context.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
}
