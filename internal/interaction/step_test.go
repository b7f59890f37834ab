package interaction

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apptcal/internal/dialog"
	"apptcal/internal/model"
)

func at(day, hour, min int) time.Time {
	return time.Date(2024, 1, day, hour, min, 0, 0, time.Local)
}

func newTestState(view View) State {
	return NewState(DefaultConfig(), view, at(10, 8, 0))
}

func sampleEvent() model.Event {
	return model.Event{
		ID:       7,
		Title:    "Ada - Checkup",
		Start:    at(10, 9, 0),
		End:      at(10, 9, 30),
		HasEnd:   true,
		ClientID: 1,
	}
}

func run(t *testing.T, st State, events ...Event) (State, []Effect) {
	t.Helper()
	var all []Effect
	for _, ev := range events {
		var effects []Effect
		st, effects = Step(st, ev)
		all = append(all, effects...)
	}
	return st, all
}

func TestDoubleClickSlotSchedulesAppointment(t *testing.T) {
	st := newTestState(Week)
	slot := Range{Start: at(10, 9, 0), End: at(10, 9, 30)}

	st, effects := Step(st, SlotDoubleClick{Range: slot})
	require.Empty(t, effects)
	require.Equal(t, DialogOpen, st.Mode)
	require.Equal(t, dialog.ScheduleCreate, st.Dialog.Kind())
	assert.True(t, st.Dialog.Create.Start.Equal(slot.Start))
	assert.Equal(t, 30*time.Minute, st.Dialog.Create.Duration())
	require.NotNil(t, st.SlotRange)

	st, effects = Step(st, CreateSubmit{ClientID: 1})
	require.Len(t, effects, 1)
	create, ok := effects[0].(CreateAppointment)
	require.True(t, ok)
	assert.Equal(t, int64(1), *create.Input.ClientID)
	assert.True(t, slot.Start.Equal(create.Input.AppointmentTime))
	assert.True(t, slot.End.Equal(*create.Input.EndTime))
	assert.Equal(t, 1, st.Pending)
	assert.Equal(t, DialogOpen, st.Mode)

	st, _ = Step(st, WriteSucceeded{Op: OpCreate})
	assert.Equal(t, Idle, st.Mode)
	assert.False(t, st.Dialog.Open())
	assert.Nil(t, st.SlotRange)
	assert.Nil(t, st.Slots)
	assert.Equal(t, 0, st.Pending)
}

func TestCreateWithoutClientNeverWrites(t *testing.T) {
	st := newTestState(Week)
	st, _ = Step(st, SlotDoubleClick{Range: Range{Start: at(10, 9, 0), End: at(10, 9, 30)}})

	st, effects := Step(st, CreateSubmit{Description: "Checkup"})
	assert.Empty(t, effects)
	assert.True(t, errors.Is(st.Dialog.Err, dialog.ErrClientRequired))
	assert.Equal(t, DialogOpen, st.Mode)
	assert.Equal(t, 0, st.Pending)
}

func TestCreateFailureKeepsDialogOpen(t *testing.T) {
	st := newTestState(Week)
	st, effects := run(t, st,
		SlotDoubleClick{Range: Range{Start: at(10, 9, 0), End: at(10, 9, 30)}},
		CreateSubmit{ClientID: 99},
	)
	require.Len(t, effects, 1)

	st, _ = Step(st, WriteFailed{Op: OpCreate, Err: errors.New("boom")})
	assert.Equal(t, DialogOpen, st.Mode)
	assert.Equal(t, dialog.ScheduleCreate, st.Dialog.Kind())
	var writeErr *WriteError
	require.True(t, errors.As(st.Banner, &writeErr))
	assert.Equal(t, OpCreate, writeErr.Op)

	st, _ = Step(st, DismissBanner{})
	assert.Nil(t, st.Banner)
}

func TestSubmitWhileSavingIsIgnored(t *testing.T) {
	st := newTestState(Week)
	st, effects := run(t, st,
		SlotDoubleClick{Range: Range{Start: at(10, 9, 0), End: at(10, 9, 30)}},
		CreateSubmit{ClientID: 99},
		CreateSubmit{ClientID: 99},
	)
	assert.Len(t, effects, 1, "one create per outstanding write")
	assert.True(t, st.Dialog.Saving)
	assert.Equal(t, 1, st.Pending)

	st, _ = Step(st, WriteFailed{Op: OpCreate, Err: errors.New("boom")})
	assert.False(t, st.Dialog.Saving)
	_, effects = Step(st, CreateSubmit{ClientID: 99})
	assert.Len(t, effects, 1, "a failed create can be retried")

	_, effects = run(t, newTestState(Week),
		AppointmentClick{Event: sampleEvent()},
		KeyDelete{},
		DeleteConfirm{},
		DeleteConfirm{},
	)
	assert.Len(t, effects, 1)
}

func TestDropOnTimeGridUsesTargetVerbatim(t *testing.T) {
	st := newTestState(Week)
	ev := sampleEvent()
	target := Range{Start: at(12, 9, 0), End: at(12, 9, 30)}

	st, effects := run(t, st,
		DragStart{Event: ev},
		DragOver{Target: target},
		Drop{Target: target},
	)
	require.Len(t, effects, 1)
	update := effects[0].(UpdateAppointment)
	assert.Equal(t, OpMove, update.Op)
	assert.Equal(t, ev.ID, update.ID)
	assert.Equal(t, ev.ClientID, *update.Input.ClientID)
	assert.True(t, target.Start.Equal(update.Input.AppointmentTime))
	assert.True(t, target.End.Equal(*update.Input.EndTime))
	assert.Nil(t, update.Input.Description)

	assert.Equal(t, Dragging, st.Mode)
	require.NotNil(t, st.Drag)
	assert.True(t, st.Drag.Saving)

	st, _ = Step(st, WriteSucceeded{Op: OpMove})
	assert.Equal(t, Idle, st.Mode)
	assert.Nil(t, st.Drag)
}

func TestDropOnDayCellsKeepsTimeOfDay(t *testing.T) {
	st := newTestState(Month)
	ev := model.Event{ID: 3, ClientID: 2, Start: at(10, 9, 15), End: at(11, 17, 45), HasEnd: true}
	ev.Start = ev.Start.Add(20 * time.Second)

	target := Range{Start: at(20, 0, 0), End: at(21, 0, 0)}
	_, effects := run(t, st, DragStart{Event: ev, AllDay: true}, Drop{Target: target})
	require.Len(t, effects, 1)

	in := effects[0].(UpdateAppointment).Input
	assert.True(t, time.Date(2024, 1, 20, 9, 15, 20, 0, time.Local).Equal(in.AppointmentTime))
	assert.True(t, time.Date(2024, 1, 21, 17, 45, 0, 0, time.Local).Equal(*in.EndTime))
}

func TestResizeUsesSamePolicy(t *testing.T) {
	st := newTestState(Day)
	ev := sampleEvent()
	target := Range{Start: ev.Start, End: at(10, 11, 0)}

	st, effects := run(t, st, ResizeStart{Event: ev}, ResizeEnd{Target: target})
	require.Len(t, effects, 1)
	update := effects[0].(UpdateAppointment)
	assert.Equal(t, OpResize, update.Op)
	assert.True(t, target.End.Equal(*update.Input.EndTime))

	st, _ = Step(st, WriteFailed{Op: OpResize, Err: errors.New("nope")})
	assert.Equal(t, Idle, st.Mode)
	assert.Nil(t, st.Drag)
	assert.Error(t, st.Banner)
}

func TestEventsIgnoredWhileDragging(t *testing.T) {
	st := newTestState(Week)
	ev := sampleEvent()
	st, _ = Step(st, DragStart{Event: ev})

	before := st
	st, effects := run(t, st,
		SlotClick{Range: Range{Start: at(11, 9, 0), End: at(11, 9, 30)}},
		SlotDoubleClick{Range: Range{Start: at(11, 9, 0), End: at(11, 9, 30)}},
		AppointmentClick{Event: model.Event{ID: 8}},
		AppointmentDoubleClick{Event: model.Event{ID: 8}},
		ContextMenu{X: 3, Y: 4},
		KeyDelete{},
		MenuDelete{},
		ViewChange{View: Month},
	)
	assert.Empty(t, effects)
	assert.Equal(t, before.Mode, st.Mode)
	assert.Equal(t, before.Selected, st.Selected)
	assert.Nil(t, st.Menu)
	assert.Equal(t, Week, st.View)
	assert.False(t, st.Dialog.Open())

	st, effects = Step(st, DragCancel{})
	assert.Empty(t, effects)
	assert.Equal(t, Idle, st.Mode)
}

func TestSavingDragIgnoresSecondDrop(t *testing.T) {
	st := newTestState(Week)
	target := Range{Start: at(12, 9, 0), End: at(12, 9, 30)}
	st, effects := run(t, st, DragStart{Event: sampleEvent()}, Drop{Target: target}, Drop{Target: target}, DragCancel{})
	assert.Len(t, effects, 1)
	assert.Equal(t, Dragging, st.Mode)
}

func TestContextMenuItems(t *testing.T) {
	st := newTestState(Week)
	st.SlotRange = &Range{Start: at(10, 9, 0), End: at(10, 9, 30)}

	empty, _ := Step(st, ContextMenu{X: 10, Y: 5})
	require.NotNil(t, empty.Menu)
	assert.Equal(t, []MenuItem{ItemSchedule}, empty.Menu.Items)
	assert.Equal(t, 5+st.Config.MenuOffset, empty.Menu.Y)
	assert.Equal(t, ContextMenuOpen, empty.Mode)
	assert.Nil(t, empty.SlotRange)
	assert.Nil(t, empty.Selected)

	hit := sampleEvent()
	withHit, _ := Step(st, ContextMenu{X: 10, Y: 5, Hit: &hit})
	assert.Equal(t, []MenuItem{ItemEdit, ItemDelete}, withHit.Menu.Items)
	require.NotNil(t, withHit.Selected)
	assert.Equal(t, hit.ID, withHit.Selected.ID)

	selected := st
	selected.Selected = &model.Event{ID: 1}
	other := model.Event{ID: 2}
	kept, _ := Step(selected, ContextMenu{Hit: &other})
	assert.Equal(t, int64(1), kept.Selected.ID)
	assert.Equal(t, []MenuItem{ItemEdit, ItemDelete}, kept.Menu.Items)
}

func TestMenuActions(t *testing.T) {
	now := at(10, 14, 0)

	st, _ := run(t, newTestState(Week), ContextMenu{}, MenuSchedule{Now: now})
	assert.Equal(t, dialog.ScheduleCreate, st.Dialog.Kind())
	assert.True(t, now.Equal(st.Dialog.Create.Start))
	assert.True(t, now.Add(30*time.Minute).Equal(st.Dialog.Create.End))
	assert.Nil(t, st.Menu)

	slot := Range{Start: at(10, 9, 0), End: at(10, 10, 0)}
	keyed := newTestState(Week)
	keyed.SlotRange = &slot
	keyed, _ = Step(keyed, MenuSchedule{Now: now})
	assert.True(t, slot.End.Equal(keyed.Dialog.Create.End))

	st, _ = run(t, newTestState(Week), ContextMenu{}, MenuEdit{})
	assert.Equal(t, Idle, st.Mode)
	assert.ErrorIs(t, st.Banner, ErrNoSelectionEdit)

	st, _ = run(t, newTestState(Week), ContextMenu{}, MenuDelete{})
	assert.ErrorIs(t, st.Banner, ErrNoSelectionDelete)
	assert.False(t, st.Dialog.Open())

	hit := sampleEvent()
	st, _ = run(t, newTestState(Week), ContextMenu{Hit: &hit}, MenuEdit{})
	assert.Equal(t, dialog.Edit, st.Dialog.Kind())
	assert.Equal(t, "2024-01-10 09:00", st.Dialog.Edit.Start)

	st, _ = run(t, newTestState(Week), ContextMenu{}, MenuDismiss{})
	assert.Equal(t, Idle, st.Mode)
	assert.Nil(t, st.Menu)
}

func TestDeleteKey(t *testing.T) {
	st, effects := Step(newTestState(Week), KeyDelete{})
	assert.Empty(t, effects)
	assert.Equal(t, Idle, st.Mode)
	assert.Nil(t, st.Banner)

	st, _ = run(t, newTestState(Week), AppointmentClick{Event: sampleEvent()}, KeyDelete{})
	assert.Equal(t, DialogOpen, st.Mode)
	assert.Equal(t, dialog.DeleteConfirm, st.Dialog.Kind())

	st, effects = Step(st, DeleteConfirm{})
	require.Equal(t, []Effect{DeleteAppointment{ID: 7}}, effects)

	st, _ = Step(st, WriteSucceeded{Op: OpDelete})
	assert.Equal(t, Idle, st.Mode)
	assert.Nil(t, st.Selected)
}

func TestDeleteFailureClosesDialog(t *testing.T) {
	st, _ := run(t, newTestState(Week), AppointmentClick{Event: sampleEvent()}, KeyDelete{}, DeleteConfirm{})
	st, _ = Step(st, WriteFailed{Op: OpDelete, Err: errors.New("gone")})
	assert.Equal(t, Idle, st.Mode)
	assert.False(t, st.Dialog.Open())
	assert.NotNil(t, st.Selected)
	assert.Error(t, st.Banner)
}

func TestEditSubmit(t *testing.T) {
	st, _ := Step(newTestState(Week), AppointmentDoubleClick{Event: sampleEvent()})
	require.Equal(t, dialog.Edit, st.Dialog.Kind())
	require.NotNil(t, st.Selected)

	st, effects := Step(st, EditSubmit{ClientID: 1, Start: ""})
	assert.Empty(t, effects)
	assert.ErrorIs(t, st.Dialog.Err, dialog.ErrEditFieldsRequired)

	st, effects = Step(st, EditSubmit{ClientID: 2, Start: "2024-01-11 10:00", End: "2024-01-11 11:00", Description: "Follow-up"})
	require.Len(t, effects, 1)
	update := effects[0].(UpdateAppointment)
	assert.Equal(t, OpEdit, update.Op)
	assert.Equal(t, int64(7), update.ID)
	assert.Equal(t, int64(2), *update.Input.ClientID)
	assert.Equal(t, "Follow-up", *update.Input.Description)
	assert.Nil(t, st.Dialog.Err)

	st, _ = Step(st, WriteSucceeded{Op: OpEdit})
	assert.Equal(t, Idle, st.Mode)
	assert.Nil(t, st.Selected)
}

func TestEditEndBeforeStartPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy.RequireEndAfterStart = true
	st := NewState(cfg, Week, at(10, 8, 0))
	st, _ = Step(st, AppointmentDoubleClick{Event: sampleEvent()})

	st, effects := Step(st, EditSubmit{ClientID: 1, Start: "2024-01-11 10:00", End: "2024-01-11 09:00"})
	assert.Empty(t, effects)
	assert.ErrorIs(t, st.Dialog.Err, dialog.ErrEndBeforeStart)
}

func TestDialogCancelDiscardsForm(t *testing.T) {
	st, _ := run(t, newTestState(Week),
		SlotDoubleClick{Range: Range{Start: at(10, 9, 0), End: at(10, 9, 30)}},
		CreateSubmit{},
		DialogCancel{},
	)
	assert.Equal(t, Idle, st.Mode)
	assert.False(t, st.Dialog.Open())
	assert.Nil(t, st.Dialog.Err)
}

func TestSlotClickWeekAndMonth(t *testing.T) {
	slot := Range{Start: at(10, 9, 0), End: at(10, 10, 30)}

	week := newTestState(Week)
	week.Selected = &model.Event{ID: 1}
	week, _ = Step(week, SlotClick{Range: slot})
	assert.Nil(t, week.Selected)
	require.NotNil(t, week.SlotRange)
	assert.Equal(t, 90, week.SlotRange.Minutes())
	want := []time.Time{at(10, 9, 0), at(10, 9, 30), at(10, 10, 0)}
	require.Len(t, week.Slots, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(week.Slots[i]))
	}
	assert.Equal(t, Idle, week.Mode)

	month := newTestState(Month)
	prev := Range{Start: at(3, 9, 0), End: at(3, 9, 30)}
	month.SlotRange = &prev
	month, _ = Step(month, SlotClick{Range: Range{Start: at(15, 0, 0), End: at(16, 0, 0)}})
	require.NotNil(t, month.HighlightedDay)
	assert.True(t, at(15, 0, 0).Equal(*month.HighlightedDay))
	assert.Equal(t, &prev, month.SlotRange)
	assert.False(t, month.Dialog.Open())
}

func TestPressDragSelection(t *testing.T) {
	st, _ := run(t, newTestState(Week),
		SlotSelectStart{Range: Range{Start: at(10, 9, 0), End: at(10, 9, 30)}},
		SlotSelectExtend{Range: Range{Start: at(10, 9, 0), End: at(10, 11, 0)}},
	)
	assert.Equal(t, SlotSelecting, st.Mode)
	require.NotNil(t, st.Selecting)

	st, _ = Step(st, SlotClick{Range: *st.Selecting})
	assert.Equal(t, Idle, st.Mode)
	assert.Nil(t, st.Selecting)
	assert.Len(t, st.Slots, 4)
}

func TestMonthDoubleClickCoversWholeDay(t *testing.T) {
	st, _ := Step(newTestState(Month), SlotDoubleClick{Range: Range{Start: at(15, 0, 0), End: at(16, 0, 0)}})
	require.Equal(t, dialog.ScheduleCreate, st.Dialog.Kind())
	assert.True(t, at(15, 0, 0).Equal(st.Dialog.Create.Start))
	assert.Equal(t, 23, st.Dialog.Create.End.Hour())
	assert.Equal(t, 59, st.Dialog.Create.End.Second())
	assert.Equal(t, 15, st.Dialog.Create.End.Day())
}

func TestViewChangeRecentersOnHighlightedDay(t *testing.T) {
	st := newTestState(Month)
	st, _ = Step(st, SlotClick{Range: Range{Start: at(17, 0, 0), End: at(18, 0, 0)}})

	day, _ := Step(st, ViewChange{View: Day})
	assert.True(t, at(17, 0, 0).Equal(day.Focus))

	week, _ := Step(st, ViewChange{View: Week})
	// Jan 17 2024 is a Wednesday; the Sunday week starts on the 14th
	assert.True(t, at(14, 0, 0).Equal(week.Focus))

	month, _ := Step(st, ViewChange{View: Month})
	assert.True(t, st.Focus.Equal(month.Focus))
}

func TestNavigate(t *testing.T) {
	st := newTestState(Week)
	st, _ = Step(st, Navigate{Direction: Next})
	assert.True(t, at(17, 0, 0).Equal(st.Focus))

	st.View = Month
	st, _ = Step(st, Navigate{Direction: Prev})
	assert.Equal(t, time.December, st.Focus.Month())

	st, _ = Step(st, Navigate{Direction: Today, Now: at(10, 15, 0)})
	assert.True(t, at(10, 0, 0).Equal(st.Focus))
}

func TestLoadedReconcilesSelection(t *testing.T) {
	ev := sampleEvent()
	st, _ := Step(newTestState(Week), AppointmentClick{Event: ev})

	moved := ev
	moved.Start = at(12, 9, 0)
	st, _ = Step(st, Loaded{Events: []model.Event{moved}})
	require.NotNil(t, st.Selected)
	assert.True(t, moved.Start.Equal(st.Selected.Start))

	st, _ = Step(st, Loaded{Events: nil})
	assert.Nil(t, st.Selected)
	assert.Empty(t, st.Events)
}

func TestStartOfWeek(t *testing.T) {
	wed := at(17, 13, 0)
	assert.True(t, at(14, 0, 0).Equal(StartOfWeek(wed, time.Sunday)))
	assert.True(t, at(15, 0, 0).Equal(StartOfWeek(wed, time.Monday)))
	assert.True(t, at(14, 0, 0).Equal(StartOfWeek(at(14, 0, 0), time.Sunday)))
}

func TestMachineDispatch(t *testing.T) {
	m := NewMachine(newTestState(Week))
	effects := m.Dispatch(AppointmentDoubleClick{Event: sampleEvent()})
	assert.Empty(t, effects)
	assert.Equal(t, DialogOpen, m.State().Mode)

	effects = m.Dispatch(EditSubmit{ClientID: 1, Start: "2024-01-10 09:00"})
	assert.Len(t, effects, 1)
	assert.Equal(t, OpEdit, EffectOp(effects[0]))
	assert.Equal(t, 1, m.State().Pending)
}
