package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Op string

const (
	OpGet     Op = "g"
	OpOpen    Op = "o"
	OpFlag    Op = "f"
	OpChord   Op = "c"
	OpForfeit Op = "r"
	OpRestart Op = "n"
)

// Maps known ops to number of arguments
var opNargs = map[Op]int{
	OpGet:     0,
	OpOpen:    2,
	OpFlag:    2,
	OpChord:   2,
	OpForfeit: 0,
	OpRestart: 0,
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidArgs    = errors.New("invalid command arguments")
)

type Command struct {
	Op   Op
	X, Y int
}

func (c Command) positional() bool {
	return opNargs[c.Op] == 2
}

func (c Command) String() string {
	if c.positional() {
		return fmt.Sprintf("%s %d %d", c.Op, c.X, c.Y)
	}
	return string(c.Op)
}

func parseXY(args []string) (x int, y int, err error) {
	if x, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, fmt.Errorf("%w: first argument must be an int", ErrInvalidArgs)
	}
	if y, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, fmt.Errorf("%w: second argument must be an int", ErrInvalidArgs)
	}
	return x, y, nil
}

// ParseCommand reads a single line such as "o 3 4".
func ParseCommand(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, ErrUnknownCommand
	}
	op := Op(parts[0])
	nargs, ok := opNargs[op]
	if !ok {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, parts[0])
	}
	if nargs != len(parts)-1 {
		return Command{}, fmt.Errorf(
			"%w: %s takes %d, got %d", ErrInvalidArgs, op, nargs, len(parts)-1,
		)
	}
	cmd := Command{Op: op}
	if nargs == 2 {
		x, y, err := parseXY(parts[1:])
		if err != nil {
			return Command{}, err
		}
		cmd.X, cmd.Y = x, y
	}
	return cmd, nil
}

// ParseCommands reads newline separated commands, skipping blank lines.
func ParseCommands(message string) ([]Command, error) {
	var cmds []Command
	for _, line := range strings.Split(message, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}
