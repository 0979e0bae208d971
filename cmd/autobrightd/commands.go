package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/godbus/dbus/v5"
	"github.com/oceania/autobright/internal/client"
	"github.com/oceania/autobright/internal/config"
	"github.com/oceania/autobright/internal/daemon"
	"github.com/oceania/autobright/internal/errdefs"
	"github.com/oceania/autobright/internal/log"
	"github.com/oceania/autobright/internal/notify"
	"github.com/oceania/autobright/internal/tui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const callTimeout = 5 * time.Second

var rootCmd = &cobra.Command{
	Use:   "autobrightd",
	Short: "Ambient light driven display brightness",
	Long:  "autobrightd reads an ambient light sensor and keeps display brightness in step with it.\n\nThe user offset can be nudged over D-Bus, from the tray menu or with the tune command.",
	Run: func(cmd *cobra.Command, args []string) {
		runDaemon(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run:   runVersion,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the brightness daemon",
	Long:  "Run the control loop, register org.oceania.Autobright on the session bus and show the tray menu",
	Run: func(cmd *cobra.Command, args []string) {
		runDaemon(cmd)
	},
}

var increaseCmd = &cobra.Command{
	Use:   "increase <amount>",
	Short: "Raise the brightness offset",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := adjustOffset(args[0], true); err != nil {
			log.Fatalf("Error increasing offset: %v", err)
		}
	},
}

var decreaseCmd = &cobra.Command{
	Use:   "decrease <amount>",
	Short: "Lower the brightness offset",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := adjustOffset(args[0], false); err != nil {
			log.Fatalf("Error decreasing offset: %v", err)
		}
	},
}

var offsetCmd = &cobra.Command{
	Use:   "offset",
	Short: "Print the current brightness offset",
	Run: func(cmd *cobra.Command, args []string) {
		if err := printOffset(); err != nil {
			log.Fatalf("Error reading offset: %v", err)
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the offset and the last dispatched brightness",
	Run: func(cmd *cobra.Command, args []string) {
		if err := printStatus(); err != nil {
			log.Fatalf("Error reading status: %v", err)
		}
	},
}

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Adjust the offset interactively",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runTuner(cmd); err != nil {
			log.Fatalf("Error running tuner: %v", err)
		}
	},
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Println(tui.Banner())
	fmt.Printf("autobrightd %s\n", Version)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return config.Load(afero.NewOsFs(), path)
}

func runDaemon(cmd *cobra.Command) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	if level != "" {
		if err := log.SetLevel(level); err != nil {
			log.Warnf("Ignoring log level: %v", err)
		}
	}
	if noTray, _ := cmd.Flags().GetBool("no-tray"); noTray {
		cfg.Tray = false
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		log.Fatal(errdefs.Wrap(errdefs.ErrTypeBus, errdefs.ErrNoSessionBus.Error(), err))
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("Starting autobrightd %s (sensor %s, %d display(s))", Version, cfg.Sensor, len(cfg.Displays))
	d := daemon.New(cfg, daemon.Deps{
		Conn:     conn,
		Notifier: notify.New(cfg.Notifier, conn),
	})
	if err := d.Run(ctx); err != nil {
		log.Fatal(err)
	}
	log.Info("autobrightd stopped")
}

func parseAmount(arg string) (int, error) {
	v, err := strconv.ParseInt(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", arg, err)
	}
	return int(v), nil
}

func adjustOffset(arg string, up bool) error {
	amount, err := parseAmount(arg)
	if err != nil {
		return err
	}

	c, err := client.Connect()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	var status string
	if up {
		status, err = c.Increase(ctx, amount)
	} else {
		status, err = c.Decrease(ctx, amount)
	}
	if err != nil {
		return err
	}
	fmt.Println(status)
	return nil
}

func printOffset() error {
	c, err := client.Connect()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	v, err := c.Offset(ctx)
	if err != nil {
		return err
	}
	fmt.Println(v)
	return nil
}

func printStatus() error {
	c, err := client.Connect()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	off, err := c.Offset(ctx)
	if err != nil {
		return err
	}
	b, err := c.Brightness(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Offset:     %d\n", off)
	fmt.Printf("Brightness: %d\n", b)
	return nil
}

func runTuner(cmd *cobra.Command) error {
	step, minimum, maximum := config.DefaultStep, config.DefaultMinimum, config.DefaultMaximum
	if cfg, err := loadConfig(cmd); err == nil {
		step, minimum, maximum = cfg.Step, cfg.Minimum, cfg.Maximum
	} else {
		log.Debugf("Tuner using defaults: %v", err)
	}

	c, err := client.Connect()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watch, err := c.WatchOffset(ctx)
	if err != nil {
		log.Warnf("Offset changes from other sources will show on refresh only: %v", err)
		watch = nil
	}

	model := tui.NewModel(c, watch, step, minimum, maximum)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run tuner: %w", err)
	}
	return nil
}
