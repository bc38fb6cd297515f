package command

import (
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"

	"github.com/oktw/galaxy/server/task"
)

// testCommand opens a window listing every teleporter. A player may only run
// it once at a time.
type testCommand struct {
	playerOnly
	t    Teleporters
	lock *task.KeyedLock[uuid.UUID]
}

// NewTest returns the /test command. lock guards concurrent runs per player.
func NewTest(t Teleporters, lock *task.KeyedLock[uuid.UUID]) cmd.Command {
	return cmd.New("test", "Opens the test window.", nil, testCommand{t: t, lock: lock})
}

func (c testCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	p := src.(*player.Player)
	if err := runLocked(c.lock, p.UUID(), func() error { return c.t.OpenTest(p) }); err != nil {
		o.Errorf("%v", err)
	}
}

// runLocked runs fn while holding the lock of id. It fails with
// task.ErrLocked instead of waiting if the lock is held.
func runLocked(lock *task.KeyedLock[uuid.UUID], id uuid.UUID, fn func() error) error {
	release, ok := lock.TryLock(id)
	if !ok {
		return task.ErrLocked
	}
	defer release()
	return fn()
}
