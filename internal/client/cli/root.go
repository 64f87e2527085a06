package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mpetrenko/shiftnotes/internal/client/config"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.shiftName != "" {
		s += a.shiftName
		if a.patientName != "" {
			s += " / " + a.patientName
		}
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root restores the persisted shift selection (local mode), prompts for a
// login when running against a server, and enters the command loop.
func (a *App) Root(ctx context.Context) {

	log.Printf("Welcome to shiftnotes CLI, %s mode (type 'help' for commands)", a.config.Mode)
	scanner := bufio.NewScanner(os.Stdin)

	if a.config.Mode == config.ModeRemote {
		_ = a.Login(ctx)
	} else {
		a.restoreSelection(ctx)
	}

	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) restoreSelection(ctx context.Context) {
	shifts, err := a.repo.ListShifts(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}

	cur := ""
	if a.keeper != nil {
		if id, err := a.keeper.CurrentShiftID(ctx); err == nil {
			cur = id
		}
	}

	a.sel = a.sel.SwitchShift(shifts, cur).ShiftsChanged(shifts)
	a.shiftName = shiftNameByID(shifts, a.sel.ShiftID)

	if a.keeper != nil && a.sel.ShiftID != cur {
		_ = a.keeper.SetCurrentShiftID(ctx, a.sel.ShiftID)
	}
}
