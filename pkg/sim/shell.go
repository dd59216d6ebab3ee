package sim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
)

var ErrUsage = errors.New("wrong number of arguments")

// NewShell returns an interactive shell driving p. Lines of the send command
// are written to input terminated by a carriage return.
func NewShell(p *Player, input chan<- byte) *ishell.Shell {
	sh := ishell.New()
	sh.SetPrompt("accx> ")

	add := func(name, help string, run func(args []string) error) {
		sh.AddCmd(&ishell.Cmd{
			Name: name,
			Help: help,
			Func: func(c *ishell.Context) {
				if err := run(c.Args); err != nil {
					c.Err(err)
				}
			},
		})
	}

	add("card", "card <channel> <id>: swipe a 26 bit card", func(args []string) error {
		return card(p, args)
	})
	add("keys", "keys <channel> <keys>: press keys, * is escape, # is enter", func(args []string) error {
		return keys(p, args)
	})
	add("frame", "frame <channel> <bits>: send raw bits, e.g. 1011", func(args []string) error {
		return frame(p, args)
	})
	add("send", "send <command>: send a command line to the console", func(args []string) error {
		for _, b := range []byte(strings.Join(args, " ") + "\r") {
			input <- b
		}
		return nil
	})

	return sh
}

func card(p *Player, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	ch, err := channel(args[0])
	if err != nil {
		return err
	}
	id, err := strconv.ParseUint(args[1], 10, 24)
	if err != nil {
		return fmt.Errorf("card id: %w", err)
	}

	p.Card(ch, uint32(id))
	return nil
}

func keys(p *Player, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	ch, err := channel(args[0])
	if err != nil {
		return err
	}
	return p.Keys(ch, args[1])
}

func frame(p *Player, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	ch, err := channel(args[0])
	if err != nil {
		return err
	}
	if len(args[1]) == 0 || len(args[1]) > 32 {
		return fmt.Errorf("frame of %d bits: %w", len(args[1]), ErrUsage)
	}
	v, err := strconv.ParseUint(args[1], 2, 32)
	if err != nil {
		return fmt.Errorf("frame bits: %w", err)
	}

	p.Frame(ch, uint32(v), len(args[1]))
	return nil
}

func channel(s string) (int, error) {
	ch, err := strconv.Atoi(s)
	if err != nil || ch < 1 || ch > 2 {
		return 0, fmt.Errorf("channel %q: expected 1 or 2", s)
	}
	return ch, nil
}
