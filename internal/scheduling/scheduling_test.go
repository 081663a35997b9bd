package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fleetHQ/internal/apperr"
	"fleetHQ/internal/auth"
	"fleetHQ/internal/events"
	"fleetHQ/internal/testutil"
	"fleetHQ/models"
	"fleetHQ/repository"
)

var t0 = time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC)

type recorder struct {
	mu  sync.Mutex
	evs []events.Event
}

func (r *recorder) Publish(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, ev)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.evs))
	for _, ev := range r.evs {
		out = append(out, ev.Type+":"+ev.To)
	}
	return out
}

type fixture struct {
	store *repository.SQLStore
	svc   *Service
	pub   *recorder
	op    auth.Caller
	other auth.Caller
	admin auth.Caller
}

func newFixture(t *testing.T, name string, mode ConflictMode) *fixture {
	t.Helper()
	s := testutil.NewStore(t, name)
	pub := &recorder{}
	caller := func(u *models.User) auth.Caller {
		return auth.Caller{UserID: u.ID, Username: u.Username, Role: u.Role}
	}
	return &fixture{
		store: s,
		svc:   NewService(s, Options{ConflictMode: mode, Publisher: pub}),
		pub:   pub,
		op:    caller(testutil.SeedUser(t, s, "op", models.RoleOperator)),
		other: caller(testutil.SeedUser(t, s, "other", models.RoleManager)),
		admin: caller(testutil.SeedUser(t, s, "root", models.RoleAdmin)),
	}
}

func (f *fixture) drone(t *testing.T, c auth.Caller, serial string) *models.Drone {
	t.Helper()
	d, err := f.svc.CreateDrone(context.Background(), c, CreateDroneInput{SerialNumber: serial, Name: "d-" + serial, Model: "M30", MaxFlightTime: 40})
	if err != nil {
		t.Fatalf("create drone %s: %v", serial, err)
	}
	return d
}

func missionInput(droneID int64, at time.Time) CreateMissionInput {
	return CreateMissionInput{
		Name:    "survey",
		DroneID: droneID,
		SurveyArea: []models.Coordinate{
			{Latitude: 0, Longitude: 0}, {Latitude: 0, Longitude: 0.01}, {Latitude: 0.01, Longitude: 0.01},
		},
		FlightParameters: FlightParametersInput{Altitude: 100, Speed: 10},
		Schedule:         models.Schedule{DateTime: at},
	}
}

func (f *fixture) mission(t *testing.T, c auth.Caller, droneID int64, at time.Time) *models.MissionView {
	t.Helper()
	m, err := f.svc.CreateMission(context.Background(), c, missionInput(droneID, at))
	if err != nil {
		t.Fatalf("create mission: %v", err)
	}
	return m
}

func status(s models.MissionStatus) *models.MissionStatus { return &s }

func expectKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", kind)
	}
	if apperr.KindOf(err) != kind {
		t.Fatalf("expected %s, got %s (%v)", kind, apperr.KindOf(err), err)
	}
}

func droneStatus(t *testing.T, f *fixture, id int64) models.DroneStatus {
	t.Helper()
	d, err := f.store.Drones().GetByID(context.Background(), id)
	if err != nil || d == nil {
		t.Fatalf("reload drone %d: %v", id, err)
	}
	return d.Status
}

func TestScenarioA_DoubleBookingConflicts(t *testing.T) {
	f := newFixture(t, "scenarioA", ConflictOverlap)
	d1 := f.drone(t, f.op, "A-1")
	m1 := f.mission(t, f.op, d1.ID, t0)
	if m1.Status != models.MissionStatusScheduled {
		t.Fatalf("new mission should be scheduled: %s", m1.Status)
	}
	_, err := f.svc.CreateMission(context.Background(), f.op, missionInput(d1.ID, t0))
	expectKind(t, err, apperr.KindConflict)
	// partial overlap is a conflict as well
	_, err = f.svc.CreateMission(context.Background(), f.op, missionInput(d1.ID, t0.Add(59*time.Minute)))
	expectKind(t, err, apperr.KindConflict)
	// back-to-back is fine
	f.mission(t, f.op, d1.ID, t0.Add(time.Hour))
}

func TestScenarioB_StatusCascade(t *testing.T) {
	f := newFixture(t, "scenarioB", ConflictOverlap)
	ctx := context.Background()
	d1 := f.drone(t, f.op, "B-1")
	m1 := f.mission(t, f.op, d1.ID, t0)

	if _, err := f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Status: status(models.MissionStatusInProgress)}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := droneStatus(t, f, d1.ID); got != models.DroneStatusInMission {
		t.Fatalf("drone should be in-mission, is %s", got)
	}

	desc := "edited"
	_, err := f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Description: &desc})
	expectKind(t, err, apperr.KindInvalidState)
	_, err = f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Description: &desc, Status: status(models.MissionStatusCompleted)})
	expectKind(t, err, apperr.KindInvalidState)
	_, err = f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Status: status(models.MissionStatusScheduled)})
	expectKind(t, err, apperr.KindInvalidState)

	done, err := f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Status: status(models.MissionStatusCompleted)})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != models.MissionStatusCompleted {
		t.Fatalf("status: %s", done.Status)
	}
	if got := droneStatus(t, f, d1.ID); got != models.DroneStatusAvailable {
		t.Fatalf("drone should be available again, is %s", got)
	}

	want := []string{"drone.status:in-mission", "mission.status:in-progress", "drone.status:available", "mission.status:completed"}
	got := f.pub.types()
	if len(got) != len(want) {
		t.Fatalf("events: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events: %v", got)
		}
	}
}

func TestScenarioC_AvailabilityExcludesPartialOverlap(t *testing.T) {
	f := newFixture(t, "scenarioC", ConflictOverlap)
	ctx := context.Background()
	d1 := f.drone(t, f.op, "C-1")
	d2 := f.drone(t, f.op, "C-2")
	f.mission(t, f.op, d1.ID, t0.Add(-30*time.Minute))

	end := t0.Add(2 * time.Hour)
	got, err := f.svc.ListAvailableDrones(ctx, f.op, &t0, &end)
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if len(got) != 1 || got[0].ID != d2.ID {
		t.Fatalf("expected only d2: %+v", got)
	}

	// without an end the time filter is skipped
	got, _ = f.svc.ListAvailableDrones(ctx, f.op, &t0, nil)
	if len(got) != 2 {
		t.Fatalf("expected both drones without end: %+v", got)
	}
	// a window starting after the booking ends sees d1 again
	later := t0.Add(30 * time.Minute)
	end = later.Add(time.Hour)
	got, _ = f.svc.ListAvailableDrones(ctx, f.op, &later, &end)
	if len(got) != 2 {
		t.Fatalf("expected both drones after booking: %+v", got)
	}
}

func TestScenarioD_DeleteDroneWithActiveMission(t *testing.T) {
	f := newFixture(t, "scenarioD", ConflictOverlap)
	ctx := context.Background()
	d1 := f.drone(t, f.op, "D-1")
	m1 := f.mission(t, f.op, d1.ID, t0)
	if _, err := f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Status: status(models.MissionStatusInProgress)}); err != nil {
		t.Fatalf("start: %v", err)
	}
	expectKind(t, f.svc.DeleteDrone(ctx, f.op, d1.ID), apperr.KindHasActiveMissions)

	if _, err := f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Status: status(models.MissionStatusAborted)}); err != nil {
		t.Fatalf("abort: %v", err)
	}
	if err := f.svc.DeleteDrone(ctx, f.op, d1.ID); err != nil {
		t.Fatalf("delete after abort: %v", err)
	}
	expectKind(t, f.svc.DeleteDrone(ctx, f.op, d1.ID), apperr.KindNotFound)
}

func TestScenarioE_DeleteMissionInProgress(t *testing.T) {
	f := newFixture(t, "scenarioE", ConflictOverlap)
	ctx := context.Background()
	d1 := f.drone(t, f.op, "E-1")
	m1 := f.mission(t, f.op, d1.ID, t0)
	if _, err := f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Status: status(models.MissionStatusInProgress)}); err != nil {
		t.Fatalf("start: %v", err)
	}
	expectKind(t, f.svc.DeleteMission(ctx, f.op, m1.ID), apperr.KindInvalidState)
	if _, err := f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Status: status(models.MissionStatusCompleted)}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := f.svc.DeleteMission(ctx, f.op, m1.ID); err != nil {
		t.Fatalf("delete completed: %v", err)
	}
	_, err := f.svc.GetMission(ctx, f.op, m1.ID)
	expectKind(t, err, apperr.KindNotFound)
}

func TestDeleteMissionLeavesDroneAlone(t *testing.T) {
	f := newFixture(t, "deletenocascade", ConflictOverlap)
	ctx := context.Background()
	d1 := f.drone(t, f.op, "N-1")
	m1 := f.mission(t, f.op, d1.ID, t0)
	maint := models.DroneStatusMaintenance
	if _, err := f.svc.UpdateDrone(ctx, f.op, d1.ID, DronePatch{Status: &maint}); err != nil {
		t.Fatalf("maintenance: %v", err)
	}
	if err := f.svc.DeleteMission(ctx, f.op, m1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := droneStatus(t, f, d1.ID); got != models.DroneStatusMaintenance {
		t.Fatalf("delete must not touch drone status, got %s", got)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	f := newFixture(t, "ownership", ConflictOverlap)
	ctx := context.Background()
	mine := f.drone(t, f.op, "O-1")
	theirs := f.drone(t, f.other, "O-2")
	mm := f.mission(t, f.op, mine.ID, t0)
	tm := f.mission(t, f.other, theirs.ID, t0)

	drones, _ := f.svc.ListDrones(ctx, f.op)
	if len(drones) != 1 || drones[0].OwnerID != f.op.UserID {
		t.Fatalf("operator saw foreign drones: %+v", drones)
	}
	missions, _ := f.svc.ListMissions(ctx, f.op)
	if len(missions) != 1 || missions[0].ID != mm.ID {
		t.Fatalf("operator saw foreign missions: %+v", missions)
	}
	all, _ := f.svc.ListMissions(ctx, f.admin)
	if len(all) != 2 {
		t.Fatalf("admin should see every mission: %+v", all)
	}
	allDrones, _ := f.svc.ListDrones(ctx, f.admin)
	if len(allDrones) != 2 {
		t.Fatalf("admin should see every drone: %+v", allDrones)
	}

	_, err := f.svc.GetDrone(ctx, f.op, theirs.ID)
	expectKind(t, err, apperr.KindForbidden)
	_, err = f.svc.GetMission(ctx, f.op, tm.ID)
	expectKind(t, err, apperr.KindForbidden)
	name := "mine now"
	_, err = f.svc.UpdateDrone(ctx, f.op, theirs.ID, DronePatch{Name: &name})
	expectKind(t, err, apperr.KindForbidden)
	_, err = f.svc.UpdateMission(ctx, f.op, tm.ID, MissionPatch{Name: &name})
	expectKind(t, err, apperr.KindForbidden)
	expectKind(t, f.svc.DeleteDrone(ctx, f.op, theirs.ID), apperr.KindForbidden)
	expectKind(t, f.svc.DeleteMission(ctx, f.op, tm.ID), apperr.KindForbidden)
	// booking someone else's drone
	_, err = f.svc.CreateMission(ctx, f.op, missionInput(theirs.ID, t0.Add(5*time.Hour)))
	expectKind(t, err, apperr.KindForbidden)

	// the availability query is scoped too
	end := t0.Add(10 * time.Hour)
	start := t0.Add(8 * time.Hour)
	avail, _ := f.svc.ListAvailableDrones(ctx, f.op, &start, &end)
	if len(avail) != 1 || avail[0].ID != mine.ID {
		t.Fatalf("availability leaked: %+v", avail)
	}

	// admin may mutate anything
	if _, err := f.svc.UpdateMission(ctx, f.admin, tm.ID, MissionPatch{Name: &name}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	_, err = f.svc.GetDrone(ctx, f.op, 9999)
	expectKind(t, err, apperr.KindNotFound)
}

func TestMissionJoinAndMetrics(t *testing.T) {
	f := newFixture(t, "missionjoin", ConflictOverlap)
	d := f.drone(t, f.op, "J-1")
	m := f.mission(t, f.op, d.ID, t0)
	if m.Drone == nil || m.Drone.SerialNumber != "J-1" || m.Drone.Model != "M30" {
		t.Fatalf("drone not joined: %+v", m.Drone)
	}
	if m.Owner == nil || m.Owner.Username != "op" {
		t.Fatalf("owner not joined: %+v", m.Owner)
	}
	if m.SurveyAreaM2 <= 0 || m.SurveyPerimeterM <= 0 {
		t.Fatalf("metrics missing: %v %v", m.SurveyAreaM2, m.SurveyPerimeterM)
	}
	if m.FlightParameters.Overlap != models.DefaultOverlap || m.FlightParameters.Pattern != models.PatternGrid {
		t.Fatalf("defaults missing: %+v", m.FlightParameters)
	}
}

func TestIdempotentReRead(t *testing.T) {
	f := newFixture(t, "reread", ConflictOverlap)
	ctx := context.Background()
	d := f.drone(t, f.op, "R-1")
	m := f.mission(t, f.op, d.ID, t0)

	desc := "north field"
	overlap := 40.0
	p := MissionPatch{Description: &desc, FlightParameters: &FlightParametersInput{Altitude: 200, Speed: 5, Pattern: models.PatternCrosshatch, Overlap: &overlap}}
	if _, err := f.svc.UpdateMission(ctx, f.op, m.ID, p); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := f.svc.GetMission(ctx, f.op, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != desc || got.FlightParameters.Altitude != 200 || got.FlightParameters.Overlap != 40 ||
		got.FlightParameters.Pattern != models.PatternCrosshatch {
		t.Fatalf("patched fields not reflected: %+v", got.Mission)
	}
	if got.Name != m.Name || !got.Schedule.DateTime.Equal(m.Schedule.DateTime) || got.DroneID != m.DroneID ||
		got.Status != m.Status || len(got.SurveyArea) != len(m.SurveyArea) {
		t.Fatalf("unpatched fields changed: %+v vs %+v", got.Mission, m.Mission)
	}
}

func TestCreateMissionFailures(t *testing.T) {
	f := newFixture(t, "createfail", ConflictOverlap)
	ctx := context.Background()
	d := f.drone(t, f.op, "F-1")

	_, err := f.svc.CreateMission(ctx, f.op, missionInput(0, t0))
	expectKind(t, err, apperr.KindInvalidRequest)
	_, err = f.svc.CreateMission(ctx, f.op, missionInput(4242, t0))
	expectKind(t, err, apperr.KindNotFound)

	bad := missionInput(d.ID, t0)
	bad.FlightParameters.Altitude = 5
	_, err = f.svc.CreateMission(ctx, f.op, bad)
	expectKind(t, err, apperr.KindValidation)

	off := models.DroneStatusOffline
	if _, err := f.svc.UpdateDrone(ctx, f.op, d.ID, DronePatch{Status: &off}); err != nil {
		t.Fatalf("offline: %v", err)
	}
	_, err = f.svc.CreateMission(ctx, f.op, missionInput(d.ID, t0))
	expectKind(t, err, apperr.KindUnavailable)
}

func TestUpdateMissionReassignAndReschedule(t *testing.T) {
	f := newFixture(t, "reassign", ConflictOverlap)
	ctx := context.Background()
	d1 := f.drone(t, f.op, "RS-1")
	d2 := f.drone(t, f.op, "RS-2")
	m1 := f.mission(t, f.op, d1.ID, t0)
	f.mission(t, f.op, d2.ID, t0.Add(30*time.Minute))

	// moving m1 onto d2 collides with d2's booking
	_, err := f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{DroneID: &d2.ID})
	expectKind(t, err, apperr.KindConflict)
	// unless the new dateTime in the same patch clears it
	later := models.Schedule{Type: models.ScheduleOneTime, DateTime: t0.Add(2 * time.Hour)}
	moved, err := f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{DroneID: &d2.ID, Schedule: &later})
	if err != nil {
		t.Fatalf("reassign with new time: %v", err)
	}
	if moved.DroneID != d2.ID || moved.Drone.ID != d2.ID {
		t.Fatalf("not reassigned: %+v", moved)
	}

	missing := int64(777)
	_, err = f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{DroneID: &missing})
	expectKind(t, err, apperr.KindNotFound)

	maint := models.DroneStatusMaintenance
	if _, err := f.svc.UpdateDrone(ctx, f.op, d1.ID, DronePatch{Status: &maint}); err != nil {
		t.Fatalf("maintenance: %v", err)
	}
	_, err = f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{DroneID: &d1.ID})
	expectKind(t, err, apperr.KindUnavailable)

	// rescheduling on the same drone onto an occupied slot conflicts
	clash := models.Schedule{Type: models.ScheduleOneTime, DateTime: t0.Add(45 * time.Minute)}
	_, err = f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Schedule: &clash})
	expectKind(t, err, apperr.KindConflict)
	// keeping its own slot is not a conflict with itself
	same := models.Schedule{Type: models.ScheduleOneTime, DateTime: t0.Add(2 * time.Hour)}
	if _, err := f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Schedule: &same}); err != nil {
		t.Fatalf("same slot: %v", err)
	}
}

func TestDraftReactivationChecksSlot(t *testing.T) {
	f := newFixture(t, "draft", ConflictOverlap)
	ctx := context.Background()
	d := f.drone(t, f.op, "DR-1")
	m1 := f.mission(t, f.op, d.ID, t0)
	if _, err := f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Status: status(models.MissionStatusDraft)}); err != nil {
		t.Fatalf("to draft: %v", err)
	}
	// the slot is free while m1 is a draft
	m2 := f.mission(t, f.op, d.ID, t0)
	_, err := f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Status: status(models.MissionStatusScheduled)})
	expectKind(t, err, apperr.KindConflict)
	if _, err := f.svc.UpdateMission(ctx, f.op, m2.ID, MissionPatch{Status: status(models.MissionStatusCancelled)}); err != nil {
		t.Fatalf("cancel m2: %v", err)
	}
	if _, err := f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Status: status(models.MissionStatusScheduled)}); err != nil {
		t.Fatalf("reschedule m1: %v", err)
	}
	// cancelled is terminal
	_, err = f.svc.UpdateMission(ctx, f.op, m2.ID, MissionPatch{Status: status(models.MissionStatusScheduled)})
	expectKind(t, err, apperr.KindInvalidState)
}

func TestDraftReactivationNeedsExistingDrone(t *testing.T) {
	f := newFixture(t, "draftgone", ConflictOverlap)
	ctx := context.Background()
	d := f.drone(t, f.op, "DG-1")
	m := f.mission(t, f.op, d.ID, t0)
	if _, err := f.svc.UpdateMission(ctx, f.op, m.ID, MissionPatch{Status: status(models.MissionStatusDraft)}); err != nil {
		t.Fatalf("to draft: %v", err)
	}
	if err := f.svc.DeleteDrone(ctx, f.op, d.ID); err != nil {
		t.Fatalf("delete drone with only a draft: %v", err)
	}
	_, err := f.svc.UpdateMission(ctx, f.op, m.ID, MissionPatch{Status: status(models.MissionStatusScheduled)})
	expectKind(t, err, apperr.KindNotFound)
	got, err := f.svc.GetMission(ctx, f.op, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.MissionStatusDraft {
		t.Fatalf("mission should stay a draft, got %s", got.Status)
	}

	// reassigning while reactivating is fine
	other := f.drone(t, f.op, "DG-2")
	up, err := f.svc.UpdateMission(ctx, f.op, m.ID, MissionPatch{DroneID: &other.ID, Status: status(models.MissionStatusScheduled)})
	if err != nil {
		t.Fatalf("reactivate on new drone: %v", err)
	}
	if up.Status != models.MissionStatusScheduled || up.Drone == nil || up.Drone.ID != other.ID {
		t.Fatalf("unexpected mission after reassign: %+v", up)
	}
}

func TestCompletedMissionRules(t *testing.T) {
	f := newFixture(t, "completed", ConflictOverlap)
	ctx := context.Background()
	d := f.drone(t, f.op, "CM-1")
	m := f.mission(t, f.op, d.ID, t0)
	for _, s := range []models.MissionStatus{models.MissionStatusInProgress, models.MissionStatusCompleted} {
		if _, err := f.svc.UpdateMission(ctx, f.op, m.ID, MissionPatch{Status: status(s)}); err != nil {
			t.Fatalf("to %s: %v", s, err)
		}
	}
	name := "rename"
	_, err := f.svc.UpdateMission(ctx, f.op, m.ID, MissionPatch{Name: &name})
	expectKind(t, err, apperr.KindInvalidState)
	_, err = f.svc.UpdateMission(ctx, f.op, m.ID, MissionPatch{Status: status(models.MissionStatusScheduled)})
	expectKind(t, err, apperr.KindInvalidState)
	// restating the current status is a no-op and writes nothing
	before, err := f.store.Missions().GetByID(ctx, m.ID)
	if err != nil || before == nil {
		t.Fatalf("reload: %v", err)
	}
	seen := len(f.pub.types())
	time.Sleep(2 * time.Millisecond)
	if _, err := f.svc.UpdateMission(ctx, f.op, m.ID, MissionPatch{Status: status(models.MissionStatusCompleted)}); err != nil {
		t.Fatalf("no-op status: %v", err)
	}
	after, err := f.store.Missions().GetByID(ctx, m.ID)
	if err != nil || after == nil {
		t.Fatalf("reload: %v", err)
	}
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("no-op rewrote updatedAt: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}
	if n := len(f.pub.types()); n != seen {
		t.Fatalf("no-op published %d events", n-seen)
	}
	_, err = f.svc.UpdateMission(ctx, f.op, m.ID, MissionPatch{Status: status("paused")})
	expectKind(t, err, apperr.KindValidation)
}

func TestStartRequiresAvailableDrone(t *testing.T) {
	f := newFixture(t, "startavail", ConflictOverlap)
	ctx := context.Background()
	d := f.drone(t, f.op, "SA-1")
	m1 := f.mission(t, f.op, d.ID, t0)
	m2 := f.mission(t, f.op, d.ID, t0.Add(3*time.Hour))
	if _, err := f.svc.UpdateMission(ctx, f.op, m1.ID, MissionPatch{Status: status(models.MissionStatusInProgress)}); err != nil {
		t.Fatalf("start m1: %v", err)
	}
	_, err := f.svc.UpdateMission(ctx, f.op, m2.ID, MissionPatch{Status: status(models.MissionStatusInProgress)})
	expectKind(t, err, apperr.KindUnavailable)
	// the failed start rolled back: m2 is still scheduled
	got, _ := f.svc.GetMission(ctx, f.op, m2.ID)
	if got.Status != models.MissionStatusScheduled {
		t.Fatalf("m2 status leaked: %s", got.Status)
	}
}

func TestDroneOperations(t *testing.T) {
	f := newFixture(t, "droneops", ConflictOverlap)
	ctx := context.Background()

	d := f.drone(t, f.op, "DO-1")
	if d.Status != models.DroneStatusAvailable || d.BatteryLevel != 100 || d.HealthStatus != models.HealthGood || d.OwnerID != f.op.UserID {
		t.Fatalf("defaults: %+v", d)
	}
	if d.Location.Latitude != 0 || d.Location.Longitude != 0 || d.Location.Altitude != 0 {
		t.Fatalf("default location: %+v", d.Location)
	}
	_, err := f.svc.CreateDrone(ctx, f.other, CreateDroneInput{SerialNumber: "DO-1", Name: "dup", Model: "x", MaxFlightTime: 30})
	expectKind(t, err, apperr.KindDuplicateKey)
	_, err = f.svc.CreateDrone(ctx, f.op, CreateDroneInput{SerialNumber: "DO-X", Name: "x", Model: "x", MaxFlightTime: 200})
	expectKind(t, err, apperr.KindValidation)
	_, err = f.svc.CreateDrone(ctx, f.op, CreateDroneInput{SerialNumber: "DO-Y", Name: "x", Model: "x", MaxFlightTime: 30, Status: models.DroneStatusInMission})
	expectKind(t, err, apperr.KindInvalidState)

	d2 := f.drone(t, f.op, "DO-2")
	serial := "DO-1"
	_, err = f.svc.UpdateDrone(ctx, f.op, d2.ID, DronePatch{SerialNumber: &serial})
	expectKind(t, err, apperr.KindDuplicateKey)
	serial = "DO-3"
	battery := 55
	loc := models.Location{Latitude: 40.7, Longitude: -74, Altitude: 12, Name: "pad 3"}
	up, err := f.svc.UpdateDrone(ctx, f.op, d2.ID, DronePatch{SerialNumber: &serial, BatteryLevel: &battery, Location: &loc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if up.SerialNumber != "DO-3" || up.BatteryLevel != 55 || up.Location.Name != "pad 3" || up.Location.LastUpdated.IsZero() {
		t.Fatalf("update not applied: %+v", up)
	}
	battery = -1
	_, err = f.svc.UpdateDrone(ctx, f.op, d2.ID, DronePatch{BatteryLevel: &battery})
	expectKind(t, err, apperr.KindValidation)

	inMission := models.DroneStatusInMission
	_, err = f.svc.UpdateDrone(ctx, f.op, d2.ID, DronePatch{Status: &inMission})
	expectKind(t, err, apperr.KindInvalidState)

	m := f.mission(t, f.op, d2.ID, t0)
	if _, err := f.svc.UpdateMission(ctx, f.op, m.ID, MissionPatch{Status: status(models.MissionStatusInProgress)}); err != nil {
		t.Fatalf("start: %v", err)
	}
	off := models.DroneStatusOffline
	_, err = f.svc.UpdateDrone(ctx, f.op, d2.ID, DronePatch{Status: &off})
	expectKind(t, err, apperr.KindInvalidState)
	// other fields stay editable mid-flight
	battery = 40
	if _, err := f.svc.UpdateDrone(ctx, f.op, d2.ID, DronePatch{BatteryLevel: &battery}); err != nil {
		t.Fatalf("battery mid-flight: %v", err)
	}
}

func TestAvailabilityInputsAndCrossOwnerBookings(t *testing.T) {
	f := newFixture(t, "availinputs", ConflictOverlap)
	ctx := context.Background()
	_, err := f.svc.ListAvailableDrones(ctx, f.op, nil, nil)
	expectKind(t, err, apperr.KindInvalidRequest)
	before := t0.Add(-time.Hour)
	_, err = f.svc.ListAvailableDrones(ctx, f.op, &t0, &before)
	expectKind(t, err, apperr.KindInvalidRequest)

	d := f.drone(t, f.op, "AV-1")
	// an admin books the operator's drone; it still counts
	if _, err := f.svc.CreateMission(ctx, f.admin, missionInput(d.ID, t0)); err != nil {
		t.Fatalf("admin booking: %v", err)
	}
	end := t0.Add(time.Hour)
	got, _ := f.svc.ListAvailableDrones(ctx, f.op, &t0, &end)
	if len(got) != 0 {
		t.Fatalf("drone booked by another user reported available: %+v", got)
	}
	maint := models.DroneStatusMaintenance
	f.drone(t, f.op, "AV-2")
	d3 := f.drone(t, f.op, "AV-3")
	if _, err := f.svc.UpdateDrone(ctx, f.op, d3.ID, DronePatch{Status: &maint}); err != nil {
		t.Fatalf("maintenance: %v", err)
	}
	got, _ = f.svc.ListAvailableDrones(ctx, f.op, &t0, nil)
	if len(got) != 2 {
		t.Fatalf("maintenance drone must be excluded: %+v", got)
	}
}

func TestExactConflictMode(t *testing.T) {
	f := newFixture(t, "exactmode", ConflictExact)
	ctx := context.Background()
	d := f.drone(t, f.op, "EX-1")
	f.mission(t, f.op, d.ID, t0)
	_, err := f.svc.CreateMission(ctx, f.op, missionInput(d.ID, t0))
	expectKind(t, err, apperr.KindConflict)
	// exact mode lets partially overlapping bookings through
	f.mission(t, f.op, d.ID, t0.Add(30*time.Minute))
}

func TestFailedUpdatePublishesNothing(t *testing.T) {
	f := newFixture(t, "noevents", ConflictOverlap)
	ctx := context.Background()
	d := f.drone(t, f.op, "NE-1")
	m := f.mission(t, f.op, d.ID, t0)
	_, err := f.svc.UpdateMission(ctx, f.op, m.ID, MissionPatch{Status: status(models.MissionStatusCompleted)})
	expectKind(t, err, apperr.KindInvalidState)
	if got := f.pub.types(); len(got) != 0 {
		t.Fatalf("events published for a failed update: %v", got)
	}
	if err := f.svc.DeleteMission(ctx, f.op, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := f.pub.types(); len(got) != 1 || got[0] != "mission.deleted:" {
		t.Fatalf("delete event: %v", got)
	}
}

func TestConcurrentBookingsOneWins(t *testing.T) {
	f := newFixture(t, "concurrent", ConflictOverlap)
	d := f.drone(t, f.op, "CC-1")

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// staggered starts inside one hour: every pair overlaps
			_, err := f.svc.CreateMission(context.Background(), f.op, missionInput(d.ID, t0.Add(time.Duration(i)*5*time.Minute)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one booking to win, got %d", ok)
	}
}
