package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/google/gousb"

	"github.com/Alia5/joycore/internal/configpaths"
	"github.com/Alia5/joycore/internal/hub"
	"github.com/Alia5/joycore/internal/log"
	"github.com/Alia5/joycore/internal/server/api"
	"github.com/Alia5/joycore/internal/server/api/auth"
	"github.com/Alia5/joycore/internal/server/api/handler"
	"github.com/Alia5/joycore/joycon"
	"github.com/Alia5/joycore/joycon/hiddev"
	"github.com/Alia5/joycore/joycon/serdev"
)

const keyFileName = "joycore.key.txt"

// Version is stamped at build time.
var Version = "dev"

// Daemon runs the controller engine: it attaches rail and USB controllers,
// pairs them into logical gamepads and serves the management API.
type Daemon struct {
	ApiServerConfig api.ServerConfig `embed:"" prefix:"api."`

	Serial       []string      `help:"Serial device paths carrying rail-attached controllers" env:"JOYCORE_SERIAL"`
	WakePin      string        `help:"GPIO pin name of the controller detect line (single rail only)" env:"JOYCORE_WAKE_PIN"`
	USB          bool          `help:"Scan USB for controllers" default:"true" negatable:""`
	PollInterval time.Duration `help:"Input report poll period for rail controllers" default:"15ms" env:"JOYCORE_POLL_INTERVAL"`
}

// Run is called by Kong when the daemon command is executed.
func (d *Daemon) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return d.Start(ctx, logger, rawLogger)
}

func (d *Daemon) Start(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	logger.Info("Starting joycore daemon", "addr", d.ApiServerConfig.Addr)

	if err := d.loadOrCreateKey(logger); err != nil {
		return err
	}

	if d.ApiServerConfig.Addr == "" {
		return fmt.Errorf("API server address must be set (default :3252)")
	}

	h := hub.New(logger)

	apiSrv, err := api.New(h, d.ApiServerConfig, logger)
	if err != nil {
		return err
	}
	r := apiSrv.Router()
	r.Register("ping", handler.Ping(Version))
	r.Register("controller/list", handler.ControllerList(h))
	r.Register("unit/list", handler.UnitList(h))
	r.Register("controller/{id}/rumble", handler.Rumble(h))
	r.Register("controller/{id}/lights", handler.Lights(h))
	r.Register("controller/{id}/homelight", handler.HomeLight(h))
	r.RegisterStream("events", handler.Events(h))

	var controllers []*joycon.Controller
	var closers []func()

	// A wake pin edge stream has one consumer; it only helps when a single
	// rail is configured.
	var wake <-chan struct{}
	if d.WakePin != "" {
		if len(d.Serial) != 1 {
			logger.Warn("wake pin ignored: requires exactly one serial rail", "pin", d.WakePin)
		} else {
			pin, err := serdev.OpenWakePin(d.WakePin, logger)
			if err != nil {
				return fmt.Errorf("open wake pin %s: %w", d.WakePin, err)
			}
			wake = pin.C()
			closers = append(closers, func() { _ = pin.Close() })
		}
	}

	for _, devPath := range d.Serial {
		port, err := serdev.Open(devPath, logger)
		if err != nil {
			return fmt.Errorf("open serial device %s: %w", devPath, err)
		}
		c := joycon.New(port, joycon.Config{
			Logger:       logger,
			Raw:          rawLogger,
			Variant:      joycon.VariantUART,
			PollInterval: d.PollInterval,
			Wake:         wake,
			Hooks:        h.Hooks(),
		})
		go port.ReadLoop(c.Receive)
		c.Start()
		controllers = append(controllers, c)
		logger.Info("serial rail attached", "device", devPath)
	}

	if d.USB {
		usbCtx := gousb.NewContext()
		closers = append(closers, func() { _ = usbCtx.Close() })
		devices, err := hiddev.OpenAll(usbCtx, logger)
		if err != nil {
			logger.Warn("USB scan failed", "error", err)
		}
		for _, dev := range devices {
			c := joycon.New(dev, joycon.Config{
				Logger:  logger,
				Raw:     rawLogger,
				Variant: joycon.VariantHID,
				Hooks:   h.Hooks(),
			})
			go dev.ReadLoop(c.Receive)
			c.Start()
			controllers = append(controllers, c)
			logger.Info("USB controller attached", "product", fmt.Sprintf("%04x", uint16(dev.Product())))
		}
	}

	if err := apiSrv.Start(); err != nil {
		logger.Error("failed to start API server", "error", err)
		return err
	}

	<-ctx.Done()
	logger.Info("Shutting down")
	apiSrv.Close()
	for _, c := range controllers {
		_ = c.Close()
	}
	for _, closeFn := range closers {
		closeFn()
	}
	return nil
}

// loadOrCreateKey resolves the API password: an explicit config value wins,
// then the key file, and a fresh key is generated on first run.
func (d *Daemon) loadOrCreateKey(logger *slog.Logger) error {
	if d.ApiServerConfig.Password != "" {
		return nil
	}
	keyFileDir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return fmt.Errorf("failed to resolve key file path: %w", err)
	}
	keyFilePath := path.Join(keyFileDir, keyFileName)
	if pwd, err := os.ReadFile(keyFilePath); err == nil {
		d.ApiServerConfig.Password = strings.TrimSpace(string(pwd))
		return nil
	}
	newPwd, err := auth.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate new API password: %w", err)
	}
	if err := os.MkdirAll(keyFileDir, 0o700); err != nil {
		return fmt.Errorf("failed to create config dir for key file: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newPwd), 0o600); err != nil {
		return fmt.Errorf("failed to write new API password to file: %w", err)
	}
	d.ApiServerConfig.Password = newPwd
	logger.Info("Generated API server password", "path", keyFilePath)
	logger.Info("-------------------------------------")
	logger.Info("Your joycore API password is:")
	logger.Info("-------------------------------------")
	logger.Info(newPwd)
	logger.Info("-------------------------------------")
	logger.Info("You can change this password at any time by editing the file")
	return nil
}
