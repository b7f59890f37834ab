package interaction

import (
	"apptcal/internal/dialog"
	"apptcal/internal/model"
)

// Step applies one event to st and returns the next state and the writes to perform.
// It is pure: the caller owns effect execution and feeds results back as events.
func Step(st State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case Loaded:
		return loaded(st, ev), nil
	case WriteSucceeded:
		return writeSucceeded(st, ev), nil
	case WriteFailed:
		return writeFailed(st, ev), nil
	case LoadFailed:
		st.Banner = ev.Err
		return st, nil
	case DismissBanner:
		st.Banner = nil
		return st, nil
	}

	switch st.Mode {
	case Dragging, Resizing:
		return stepDragging(st, ev)
	case DialogOpen:
		return stepDialog(st, ev)
	case ContextMenuOpen:
		return stepMenu(st, ev)
	case SlotSelecting:
		return stepSelecting(st, ev)
	default:
		return stepIdle(st, ev)
	}
}

func stepIdle(st State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case SlotSelectStart:
		st.Mode = SlotSelecting
		st.Selecting = &ev.Range
		return st, nil
	case SlotClick:
		return slotClick(st, ev.Range), nil
	case SlotDoubleClick:
		return slotDoubleClick(st, ev.Range), nil
	case AppointmentClick:
		st.Selected = eventPtr(ev.Event)
		return st, nil
	case AppointmentDoubleClick:
		return openEdit(st, ev.Event), nil
	case ContextMenu:
		return contextMenu(st, ev), nil
	case MenuSchedule:
		return schedule(st, ev), nil
	case MenuEdit:
		return menuEdit(st), nil
	case MenuDelete:
		return menuDelete(st), nil
	case KeyDelete:
		if st.Selected == nil {
			return st, nil
		}
		return openDelete(st, *st.Selected), nil
	case DragStart:
		st.Mode = Dragging
		st.Drag = &DragState{Event: ev.Event, AllDay: ev.AllDay}
		return st, nil
	case ResizeStart:
		st.Mode = Resizing
		st.Drag = &DragState{Event: ev.Event, AllDay: ev.AllDay}
		return st, nil
	case ViewChange:
		return viewChange(st, ev.View), nil
	case Navigate:
		return navigate(st, ev), nil
	}
	return st, nil
}

func stepSelecting(st State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case SlotSelectExtend:
		st.Selecting = &ev.Range
		return st, nil
	case SlotClick:
		return slotClick(st, ev.Range), nil
	case SlotDoubleClick:
		return slotDoubleClick(st, ev.Range), nil
	case DragCancel:
		st.Mode = Idle
		st.Selecting = nil
		return st, nil
	}
	return st, nil
}

func stepMenu(st State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case ContextMenu:
		return contextMenu(st, ev), nil
	case MenuSchedule:
		return schedule(st, ev), nil
	case MenuEdit:
		return menuEdit(st), nil
	case MenuDelete:
		return menuDelete(st), nil
	case MenuDismiss, DragCancel:
		return closeMenu(st), nil
	case SlotDoubleClick:
		return slotDoubleClick(closeMenu(st), ev.Range), nil
	case AppointmentDoubleClick:
		return openEdit(closeMenu(st), ev.Event), nil
	}
	return st, nil
}

func stepDragging(st State, ev Event) (State, []Effect) {
	if st.Drag == nil {
		st.Mode = Idle
		return st, nil
	}
	if st.Drag.Saving {
		return st, nil
	}

	switch ev := ev.(type) {
	case DragOver:
		drag := *st.Drag
		drag.Target = &ev.Target
		st.Drag = &drag
		return st, nil
	case Drop:
		if st.Mode != Dragging {
			return st, nil
		}
		return release(st, OpMove, ev.Target)
	case ResizeEnd:
		if st.Mode != Resizing {
			return st, nil
		}
		return release(st, OpResize, ev.Target)
	case DragCancel:
		st.Mode = Idle
		st.Drag = nil
		return st, nil
	}
	return st, nil
}

func stepDialog(st State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case DialogCancel:
		st.Dialog = st.Dialog.Close()
		st.Mode = Idle
		return st, nil
	case CreateSubmit:
		if st.Dialog.Kind() != dialog.ScheduleCreate || st.Dialog.Saving {
			return st, nil
		}
		st.Dialog.Create.ClientID = ev.ClientID
		st.Dialog.Create.Description = ev.Description
		in, err := st.Dialog.Create.Input()
		st.Dialog = st.Dialog.WithError(err)
		if err != nil {
			return st, nil
		}
		st.Dialog.Saving = true
		st.Pending++
		return st, []Effect{CreateAppointment{Input: in}}
	case EditSubmit:
		if st.Dialog.Kind() != dialog.Edit || st.Dialog.Saving {
			return st, nil
		}
		st.Dialog.Edit.ClientID = ev.ClientID
		st.Dialog.Edit.Start = ev.Start
		st.Dialog.Edit.End = ev.End
		st.Dialog.Edit.Description = ev.Description
		in, err := st.Dialog.Edit.Input(st.Config.Policy)
		st.Dialog = st.Dialog.WithError(err)
		if err != nil {
			return st, nil
		}
		st.Dialog.Saving = true
		st.Pending++
		return st, []Effect{UpdateAppointment{Op: OpEdit, ID: st.Dialog.Edit.AppointmentID, Input: in}}
	case DeleteConfirm:
		if st.Dialog.Kind() != dialog.DeleteConfirm || st.Dialog.Saving {
			return st, nil
		}
		target := st.Dialog.Target
		if target == nil || target.ID == 0 {
			st.Dialog = st.Dialog.Close()
			st.Mode = Idle
			st.Banner = ErrNoSelectionDelete
			return st, nil
		}
		st.Dialog.Saving = true
		st.Pending++
		return st, []Effect{DeleteAppointment{ID: target.ID}}
	}
	return st, nil
}

func slotClick(st State, r Range) State {
	st.Mode = Idle
	st.Selecting = nil
	if st.View == Month {
		day := StartOfDay(r.Start)
		st.HighlightedDay = &day
		return st
	}
	st.Selected = nil
	st.SlotRange = &r
	st.Slots = r.Slots(st.Config.Slot)
	return st
}

func slotDoubleClick(st State, r Range) State {
	if st.View == Month {
		r = Range{Start: StartOfDay(r.Start), End: EndOfDay(r.Start)}
	}
	st.Selecting = nil
	st.SlotRange = &r
	st.Slots = r.Slots(st.Config.Slot)
	st.Dialog = st.Dialog.OpenCreate(r.Start, r.End)
	st.Mode = DialogOpen
	return st
}

func contextMenu(st State, ev ContextMenu) State {
	st.SlotRange = nil
	st.Slots = nil
	st.Selecting = nil
	if st.Selected == nil && ev.Hit != nil {
		st.Selected = eventPtr(*ev.Hit)
	}

	items := []MenuItem{ItemSchedule}
	if st.Selected != nil {
		items = []MenuItem{ItemEdit, ItemDelete}
	}
	st.Menu = &Menu{X: ev.X, Y: ev.Y + st.Config.MenuOffset, Items: items}
	st.Mode = ContextMenuOpen
	return st
}

func schedule(st State, ev MenuSchedule) State {
	st = closeMenu(st)
	r := Range{Start: ev.Now, End: ev.Now.Add(st.Config.DefaultSchedule)}
	if st.SlotRange != nil {
		r = *st.SlotRange
	}
	st.Dialog = st.Dialog.OpenCreate(r.Start, r.End)
	st.Mode = DialogOpen
	return st
}

func menuEdit(st State) State {
	st = closeMenu(st)
	if st.Selected == nil {
		st.Banner = ErrNoSelectionEdit
		return st
	}
	return openEdit(st, *st.Selected)
}

func menuDelete(st State) State {
	st = closeMenu(st)
	if st.Selected == nil {
		st.Banner = ErrNoSelectionDelete
		return st
	}
	return openDelete(st, *st.Selected)
}

func openEdit(st State, ev model.Event) State {
	st.Selected = eventPtr(ev)
	st.Dialog = st.Dialog.OpenEdit(ev)
	st.Mode = DialogOpen
	return st
}

func openDelete(st State, ev model.Event) State {
	st.Dialog = st.Dialog.OpenDelete(ev)
	st.Mode = DialogOpen
	return st
}

func closeMenu(st State) State {
	st.Menu = nil
	if st.Mode == ContextMenuOpen {
		st.Mode = Idle
	}
	return st
}

func release(st State, op Op, target Range) (State, []Effect) {
	drag := *st.Drag
	start, end := Reschedule(drag.Event, target, drag.AllDay)
	drag.Target = &target
	drag.Saving = true
	st.Drag = &drag
	st.Pending++

	in := model.AppointmentInput{
		ClientID:        model.Ptr(drag.Event.ClientID),
		AppointmentTime: start,
		EndTime:         model.Ptr(end),
	}
	return st, []Effect{UpdateAppointment{Op: op, ID: drag.Event.ID, Input: in}}
}

func viewChange(st State, v View) State {
	if st.HighlightedDay != nil {
		switch v {
		case Day:
			st.Focus = *st.HighlightedDay
		case Week:
			st.Focus = StartOfWeek(*st.HighlightedDay, st.Config.WeekStart)
		}
	}
	st.View = v
	return st
}

func navigate(st State, ev Navigate) State {
	switch ev.Direction {
	case Prev:
		st.Focus = shift(st.Focus, st.View, -1)
	case Next:
		st.Focus = shift(st.Focus, st.View, 1)
	default:
		st.Focus = StartOfDay(ev.Now)
	}
	return st
}

func loaded(st State, ev Loaded) State {
	st.Events = ev.Events
	if st.Selected != nil {
		if fresh, ok := st.Find(st.Selected.ID); ok {
			st.Selected = eventPtr(fresh)
		} else {
			st.Selected = nil
		}
	}
	return st
}

func writeSucceeded(st State, ev WriteSucceeded) State {
	st = donePending(st)
	switch ev.Op {
	case OpMove, OpResize:
		st = endDrag(st)
	case OpCreate:
		if st.Mode == DialogOpen && st.Dialog.Kind() == dialog.ScheduleCreate {
			st.Dialog = st.Dialog.Close()
			st.Mode = Idle
			st.SlotRange = nil
			st.Slots = nil
			st.HighlightedDay = nil
		}
	case OpEdit:
		if st.Mode == DialogOpen && st.Dialog.Kind() == dialog.Edit {
			st.Dialog = st.Dialog.Close()
			st.Mode = Idle
			st.Selected = nil
		}
	case OpDelete:
		if st.Mode == DialogOpen && st.Dialog.Kind() == dialog.DeleteConfirm {
			st.Dialog = st.Dialog.Close()
			st.Mode = Idle
		}
		st.Selected = nil
	}
	return st
}

func writeFailed(st State, ev WriteFailed) State {
	st = donePending(st)
	st.Banner = &WriteError{Op: ev.Op, Err: ev.Err}
	switch ev.Op {
	case OpMove, OpResize:
		st = endDrag(st)
	case OpCreate, OpEdit:
		st.Dialog.Saving = false
	case OpDelete:
		if st.Mode == DialogOpen && st.Dialog.Kind() == dialog.DeleteConfirm {
			st.Dialog = st.Dialog.Close()
			st.Mode = Idle
		}
	}
	return st
}

func endDrag(st State) State {
	if (st.Mode == Dragging || st.Mode == Resizing) && st.Drag != nil && st.Drag.Saving {
		st.Mode = Idle
		st.Drag = nil
	}
	return st
}

func donePending(st State) State {
	if st.Pending > 0 {
		st.Pending--
	}
	return st
}

func eventPtr(ev model.Event) *model.Event {
	return &ev
}
