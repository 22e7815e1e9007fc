package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Alia5/joycore/apiclient"
	"github.com/Alia5/joycore/apitypes"
	"github.com/Alia5/joycore/internal/configpaths"
)

// Ctl talks to a running daemon over the management API.
type Ctl struct {
	Addr        string `help:"API server address" default:"127.0.0.1:3252" env:"JOYCORE_API_ADDR"`
	Password    string `help:"API password (defaults to the local key file)" env:"JOYCORE_API_PASSWORD"`
	AskPassword bool   `help:"Prompt for the API password"`

	Ping      CtlPing      `cmd:"" help:"Check daemon liveness and version"`
	List      CtlList      `cmd:"" help:"List attached controllers"`
	Units     CtlUnits     `cmd:"" help:"List paired logical gamepads"`
	Rumble    CtlRumble    `cmd:"" help:"Drive a controller's vibration actuators"`
	Lights    CtlLights    `cmd:"" help:"Set a controller's player indicator LEDs"`
	HomeLight CtlHomeLight `cmd:"" name:"homelight" help:"Set a controller's home button light"`
	Events    CtlEvents    `cmd:"" help:"Stream input events as JSON lines"`
}

// client resolves the password (flag, prompt, key file, none) and builds the
// API client.
func (c *Ctl) client() (*apiclient.Client, error) {
	pwd := c.Password
	if c.AskPassword {
		fmt.Fprint(os.Stderr, "Password: ")
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		pwd = string(b)
	}
	if pwd == "" {
		if dir, err := configpaths.DefaultConfigDir(); err == nil {
			if b, err := os.ReadFile(path.Join(dir, keyFileName)); err == nil {
				pwd = strings.TrimSpace(string(b))
			}
		}
	}
	if pwd == "" {
		return apiclient.New(c.Addr), nil
	}
	return apiclient.NewWithPassword(c.Addr, pwd), nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

type CtlPing struct{}

func (p *CtlPing) Run(parent *Ctl, logger *slog.Logger) error {
	c, err := parent.client()
	if err != nil {
		return err
	}
	resp, err := c.Ping()
	if err != nil {
		return err
	}
	return printJSON(resp)
}

type CtlList struct{}

func (l *CtlList) Run(parent *Ctl, logger *slog.Logger) error {
	c, err := parent.client()
	if err != nil {
		return err
	}
	resp, err := c.ControllerList()
	if err != nil {
		return err
	}
	return printJSON(resp)
}

type CtlUnits struct{}

func (u *CtlUnits) Run(parent *Ctl, logger *slog.Logger) error {
	c, err := parent.client()
	if err != nil {
		return err
	}
	resp, err := c.UnitList()
	if err != nil {
		return err
	}
	return printJSON(resp)
}

type CtlRumble struct {
	ID       int    `arg:"" help:"Controller ID"`
	LowFreq  uint16 `help:"Low band frequency in Hz" default:"160"`
	HighFreq uint16 `help:"High band frequency in Hz" default:"320"`
	Amp      uint16 `help:"Amplitude 0..1000 (0 stops rumble)" default:"500"`
}

func (r *CtlRumble) Run(parent *Ctl, logger *slog.Logger) error {
	c, err := parent.client()
	if err != nil {
		return err
	}
	resp, err := c.Rumble(r.ID, apitypes.RumbleRequest{
		LowFreq:  r.LowFreq,
		HighFreq: r.HighFreq,
		Amp:      r.Amp,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

type CtlLights struct {
	ID      int  `arg:"" help:"Controller ID"`
	Pattern byte `arg:"" help:"LED bit pattern (bits 0..3 solid, 4..7 flashing)"`
}

func (l *CtlLights) Run(parent *Ctl, logger *slog.Logger) error {
	c, err := parent.client()
	if err != nil {
		return err
	}
	resp, err := c.Lights(l.ID, l.Pattern)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

type CtlHomeLight struct {
	ID        int  `arg:"" help:"Controller ID"`
	Intensity byte `arg:"" help:"Light intensity 0..15"`
}

func (h *CtlHomeLight) Run(parent *Ctl, logger *slog.Logger) error {
	c, err := parent.client()
	if err != nil {
		return err
	}
	resp, err := c.HomeLight(h.ID, h.Intensity)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

type CtlEvents struct{}

// Run streams events to stdout until the connection drops or the process is
// interrupted.
func (e *CtlEvents) Run(parent *Ctl, logger *slog.Logger) error {
	c, err := parent.client()
	if err != nil {
		return err
	}
	stream, err := c.OpenEvents(context.Background())
	if err != nil {
		return err
	}
	defer stream.Close()

	enc := json.NewEncoder(os.Stdout)
	for {
		ev, err := stream.Next()
		if err != nil {
			return nil
		}
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
}
