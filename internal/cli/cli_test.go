package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/repository/memory"
	"github.com/jwalitptl/frontdesk/internal/service/appointment"
	"github.com/jwalitptl/frontdesk/pkg/errors"
)

type fixture struct {
	session *Session
	patient *model.Patient
	out     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	p := &model.Patient{SerialNumber: "S-001", Name: "Asha Rao", Phone: "9800000001", Age: 34, TimesOfVisit: 1}
	patients := memory.NewPatientRepository(p)
	svc := appointment.NewService(memory.NewAppointmentRepository(), patients, memory.NewSlotRepository(), appointment.Options{})

	return &fixture{
		session: &Session{
			Appointments: svc,
			Patients:     patients,
			Location:     time.UTC,
			Now:          func() time.Time { return time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC) },
		},
		patient: p,
		out:     &bytes.Buffer{},
	}
}

func (f *fixture) run(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	f.out.Reset()
	app := NewApp(f.out, strings.NewReader(stdin), func() (*Session, error) { return f.session, nil })
	return app.Run(append([]string{"frontdesk"}, args...))
}

func (f *fixture) book(t *testing.T, date, at string) *model.Appointment {
	t.Helper()
	appt, err := f.session.Appointments.Book(context.Background(), appointment.BookRequest{
		PatientID: f.patient.ID,
		Date:      model.MustParseDate(date),
		Time:      model.MustParseTimeOfDay(at),
		Duration:  30,
	})
	require.NoError(t, err)
	return appt
}

func TestBookDefaultsToToday(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "", "book", "--patient", f.patient.ID.String(), "10:00"))
	assert.Contains(t, f.out.String(), "Booked Asha Rao on 2024-06-10 at 10:00 for 30 min")

	appts, err := f.session.Appointments.ListForDate(context.Background(), model.MustParseDate("2024-06-10"))
	require.NoError(t, err)
	require.Len(t, appts, 1)
}

func TestBookConflictIsExplained(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2024-06-10", "10:00")

	err := f.run(t, "", "book", "--patient", f.patient.ID.String(), "--date", "2024-06-10", "--duration", "45", "09:30")
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.True(t, strings.HasSuffix(Explain(err), "Pick another time."))
}

func TestBookRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	err := f.run(t, "", "book", "--patient", "nobody", "10:00")
	assert.True(t, errors.IsValidation(err))

	err = f.run(t, "", "book", "--patient", f.patient.ID.String(), "25:00")
	assert.True(t, errors.IsValidation(err))

	err = f.run(t, "", "book", "--patient", f.patient.ID.String(), "--date", "10/06/2024", "10:00")
	assert.True(t, errors.IsValidation(err))
}

func TestCancelAsksFirst(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, "2024-06-10", "11:00")

	require.NoError(t, f.run(t, "n\n", "cancel", appt.ID.String()))
	assert.Contains(t, f.out.String(), "Left unchanged.")
	got, err := f.session.Appointments.Get(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, got.Status)

	require.NoError(t, f.run(t, "y\n", "cancel", appt.ID.String()))
	assert.Contains(t, f.out.String(), "Cancelled Asha Rao")
	got, err = f.session.Appointments.Get(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, got.Status)
}

func TestCancelledSlotIsFreeAgain(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, "2024-06-10", "11:00")

	require.NoError(t, f.run(t, "", "check", "11:00"))
	assert.Contains(t, f.out.String(), "is taken")

	require.NoError(t, f.run(t, "", "cancel", "--yes", appt.ID.String()))
	require.NoError(t, f.run(t, "", "check", "11:00"))
	assert.Contains(t, f.out.String(), "2024-06-10 11:00 is free")
}

func TestRescheduleAndComplete(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, "2024-06-10", "09:00")

	require.NoError(t, f.run(t, "", "reschedule", "--date", "2024-06-11", appt.ID.String(), "14:30"))
	assert.Contains(t, f.out.String(), "Moved Asha Rao to 2024-06-11 at 14:30")

	require.NoError(t, f.run(t, "", "complete", appt.ID.String()))
	assert.Contains(t, f.out.String(), "Completed Asha Rao on 2024-06-11 at 14:30")

	err := f.run(t, "", "reschedule", appt.ID.String(), "15:00")
	assert.True(t, errors.IsValidation(err))
}

func TestRescheduleKeepsDateByDefault(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, "2024-06-17", "09:00")

	require.NoError(t, f.run(t, "", "reschedule", appt.ID.String(), "14:00"))
	assert.Contains(t, f.out.String(), "Moved Asha Rao to 2024-06-17 at 14:00")

	got, err := f.session.Appointments.Get(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MustParseDate("2024-06-17"), got.Date)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, "2024-06-10", "09:00")

	require.NoError(t, f.run(t, "", "remove", "--yes", appt.ID.String()))
	assert.Contains(t, f.out.String(), "Removed.")

	err := f.run(t, "", "remove", "--yes", appt.ID.String())
	assert.True(t, errors.IsNotFound(err))
}

func TestListAndWeek(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2024-06-10", "10:00")
	f.book(t, "2024-06-12", "15:00")

	require.NoError(t, f.run(t, "", "list"))
	assert.Contains(t, f.out.String(), "10:00")
	assert.Contains(t, f.out.String(), "10:30")
	assert.NotContains(t, f.out.String(), "15:00")

	require.NoError(t, f.run(t, "", "list", "--date", "2024-06-11"))
	assert.Contains(t, f.out.String(), "No appointments.")

	require.NoError(t, f.run(t, "", "week"))
	out := f.out.String()
	assert.Contains(t, out, "Sun 2024-06-09")
	assert.Contains(t, out, "Sat 2024-06-15")
	assert.Contains(t, out, "15:00")
}

func TestSlotsMarksBookedAndCustom(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2024-06-10", "10:00")

	require.NoError(t, f.run(t, "", "slot", "add", "19:15"))
	assert.Contains(t, f.out.String(), "Added 19:15")

	require.NoError(t, f.run(t, "", "slots"))
	out := f.out.String()
	assert.Regexp(t, `10:00\s+booked`, out)
	assert.Regexp(t, `10:30\s+free`, out)
	assert.Regexp(t, `19:15\s+free\s+custom`, out)

	require.NoError(t, f.run(t, "", "available"))
	assert.NotContains(t, f.out.String(), "10:00\n")
	assert.Contains(t, f.out.String(), "19:15")

	require.NoError(t, f.run(t, "", "slot", "remove", "19:15"))
	require.NoError(t, f.run(t, "", "slot", "list"))
	assert.Empty(t, strings.TrimSpace(f.out.String()))
}

func TestAddingDuplicateCustomSlotConflicts(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "", "slot", "add", "19:00"))
	err := f.run(t, "", "slot", "add", "19:00")
	assert.True(t, errors.IsConflict(err))
}

func TestPatientsSearch(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "", "patients", "--search", "asha"))
	assert.Contains(t, f.out.String(), "S-001")

	require.NoError(t, f.run(t, "", "patients", "--search", "zed"))
	assert.Contains(t, f.out.String(), "No patients found.")
}

func TestExportWritesFile(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2024-06-10", "10:00")
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "out.csv")
	require.NoError(t, f.run(t, "", "export", "--out", csvPath))
	assert.Contains(t, f.out.String(), "Wrote 1 appointments")
	raw, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Asha Rao")

	icsPath := filepath.Join(dir, "out.ics")
	require.NoError(t, f.run(t, "", "export", "--format", "ics", "--out", icsPath))
	raw, err = os.ReadFile(icsPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "BEGIN:VEVENT")

	err = f.run(t, "", "export", "--format", "pdf")
	assert.True(t, errors.IsValidation(err))
}

func TestHelpDoesNotConnect(t *testing.T) {
	out := &bytes.Buffer{}
	app := NewApp(out, strings.NewReader(""), func() (*Session, error) {
		t.Fatal("connect called")
		return nil, nil
	})

	require.NoError(t, app.Run([]string{"frontdesk"}))
	assert.Contains(t, out.String(), "book")
}

func TestExplain(t *testing.T) {
	assert.Equal(t, "The clinic server could not be reached. Try again later.",
		Explain(errors.NewCollaborator("fetch appointments", context.DeadlineExceeded)))
	assert.Equal(t, "Date is required", Explain(errors.NewValidation("date is required")))
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("FRONTDESK_API_URL", "https://desk.example.com/api/v1")
	t.Setenv("FRONTDESK_TIMEOUT", "3s")
	t.Setenv("FRONTDESK_TIMEZONE", "Asia/Kolkata")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "https://desk.example.com/api/v1", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.PatientCacheTTL)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())

	cfg.Timezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}

func TestWatchRendersUntilCancelled(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2024-06-10", "09:30")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	app := NewApp(f.out, strings.NewReader(""), func() (*Session, error) { return f.session, nil })

	require.NoError(t, app.RunContext(ctx, []string{"frontdesk", "watch", "--interval", "1h"}))
	assert.Contains(t, f.out.String(), "-- 8:00AM --")
	assert.Regexp(t, `09:30\s+booked`, f.out.String())
}
