package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yourusername/vdm-cli/internal/config"
	"github.com/yourusername/vdm-cli/internal/filter"
	"github.com/yourusername/vdm-cli/internal/logging"
	"github.com/yourusername/vdm-cli/internal/output"
	"github.com/yourusername/vdm-cli/internal/vd"
	"github.com/yourusername/vdm-cli/internal/watch"
)

var (
	configPath string
	jsonOutput bool
	noColor    bool
	debugMode  bool

	// Color functions
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	keyColor     = color.New(color.FgYellow)
)

// exitNoBackend is the exit status when neither backend can be used
const exitNoBackend = 3

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "vdm",
	Short: "Windows virtual desktop manager",
	Long: `vdm switches, names and organizes Windows virtual desktops.

It uses VirtualDesktopAccessor.dll when one is found next to the executable
or on the search path, and the shell's own interfaces otherwise. Filters
route windows to desktops by title, process and position.`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

// withApp runs fn with a started app and closes it afterwards
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		printError(err.Error())
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// MARK: - Backend Commands

// backendCmd reports which backend is in use
var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Show the selected desktop backend",
	Long:  `Shows which backend was selected, which library paths were probed and whether desktop changes are pushed or polled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			sel := vd.ActiveSelection()
			count, err := a.backend.DesktopCount()
			if err != nil {
				return err
			}
			mode := watch.New(a.backend, a.state, watch.Options{}).Mode()

			if jsonOutput {
				return printJSON(map[string]interface{}{
					"selection": sel,
					"desktops":  count,
					"watchMode": mode,
				})
			}

			output.PrintSelection(os.Stdout, sel)
			keyColor.Print("Desktops: ")
			fmt.Println(count)
			keyColor.Print("Watch mode: ")
			fmt.Println(mode)
			return nil
		})
	},
}

// MARK: - Desktop Commands

var desktopCmd = &cobra.Command{
	Use:   "desktop",
	Short: "Manage virtual desktops",
}

var desktopListStrip bool

// desktopListCmd lists desktops
var desktopListCmd = &cobra.Command{
	Use:   "list",
	Short: "List desktops",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			desktops, current, err := vd.DesktopsWithCurrent(a.backend)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(map[string]interface{}{
					"desktops": desktops,
					"current":  current,
				})
			}

			if desktopListStrip {
				a.state.Update(snapshotOf(desktops, current))
				fmt.Println(output.RenderStrip(a.state.Snapshot(), output.DefaultStripOptions()))
				return nil
			}
			output.PrintDesktopsTable(os.Stdout, desktops, current)
			return nil
		})
	},
}

// desktopCurrentCmd prints the current desktop
var desktopCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current desktop",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			current, err := a.backend.CurrentDesktop()
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(current)
			}
			fmt.Println(current.Label())
			return nil
		})
	},
}

// desktopCreateCmd adds a desktop at the end
var desktopCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a desktop",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			d, err := a.backend.CreateDesktop()
			if err != nil {
				printError(fmt.Sprintf("Failed to create desktop: %v", err))
				return err
			}
			if len(args) > 0 {
				if err := a.backend.SetDesktopName(d, args[0]); err != nil {
					printError(fmt.Sprintf("Created desktop %d but failed to name it: %v", d.Number(), err))
					return err
				}
				d.Name = args[0]
			}

			if jsonOutput {
				return printJSON(d)
			}
			successColor.Printf("✓ Created desktop %s\n", d.Label())
			return nil
		})
	},
}

var removeFallback string

// desktopRemoveCmd removes a desktop, moving its windows to the fallback
var desktopRemoveCmd = &cobra.Command{
	Use:   "remove <desktop>",
	Short: "Remove a desktop",
	Long: `Removes a desktop given by number or id. Its windows move to the fallback
desktop, which defaults to the neighbouring one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			target, err := resolveDesktopArg(a.backend, args[0])
			if err != nil {
				printError(err.Error())
				return err
			}

			var fallback vd.Desktop
			if removeFallback != "" {
				fallback, err = resolveDesktopArg(a.backend, removeFallback)
			} else {
				var desktops []vd.Desktop
				desktops, err = a.backend.Desktops()
				if err == nil {
					fallback, err = neighbour(desktops, target)
				}
			}
			if err != nil {
				printError(err.Error())
				return err
			}
			if vd.SameDesktop(target, fallback) {
				err := fmt.Errorf("fallback must differ from the removed desktop")
				printError(err.Error())
				return err
			}

			if err := a.backend.RemoveDesktop(target, fallback); err != nil {
				printError(fmt.Sprintf("Failed to remove desktop: %v", err))
				return err
			}

			if jsonOutput {
				return printJSON(map[string]interface{}{"removed": target, "fallback": fallback})
			}
			successColor.Printf("✓ Removed desktop %s\n", target.Label())
			fmt.Printf("Windows moved to desktop %s\n", fallback.Label())
			return nil
		})
	},
}

// desktopRenameCmd sets a desktop's name
var desktopRenameCmd = &cobra.Command{
	Use:   "rename <desktop> <name>",
	Short: "Rename a desktop",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			d, err := resolveDesktopArg(a.backend, args[0])
			if err != nil {
				printError(err.Error())
				return err
			}
			if err := a.backend.SetDesktopName(d, args[1]); err != nil {
				printError(fmt.Sprintf("Failed to rename desktop: %v", err))
				return err
			}
			d.Name = args[1]

			if jsonOutput {
				return printJSON(d)
			}
			successColor.Printf("✓ Renamed desktop to %s\n", d.Label())
			return nil
		})
	},
}

// MARK: - Switch Command

var (
	switchNext     bool
	switchBack     bool
	switchSmooth   bool
	switchNoSmooth bool
)

// switchCmd changes the current desktop
var switchCmd = &cobra.Command{
	Use:   "switch [desktop]",
	Short: "Switch to a desktop",
	Long: `Switches to a desktop given by number or id, or to the next or previous one.
Next and back stop at the first and last desktop.

Switches animate unless smoothSwitch is off in the config or --no-smooth is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 1) == (switchNext || switchBack) || (switchNext && switchBack) {
			return fmt.Errorf("give exactly one of a desktop, --next or --back")
		}

		return withApp(cmd, func(ctx context.Context, a *app) error {
			var target vd.Desktop
			var err error
			if len(args) == 1 {
				target, err = resolveDesktopArg(a.backend, args[0])
			} else {
				target, err = stepFromCurrent(a.backend, switchNext)
			}
			if err != nil {
				printError(err.Error())
				return err
			}

			smoothOn := a.cfg.SmoothSwitchEnabled()
			if cmd.Flags().Changed("smooth") {
				smoothOn = switchSmooth
			}
			if switchNoSmooth {
				smoothOn = false
			}

			if smoothOn {
				s, serr := a.switcher()
				if serr != nil {
					logging.Warn().Err(serr).Msg("smooth switching unavailable")
					err = a.backend.SwitchTo(target)
				} else {
					err = s.SwitchTo(ctx, target)
				}
			} else {
				err = a.backend.SwitchTo(target)
			}
			if err != nil {
				printError(fmt.Sprintf("Failed to switch: %v", err))
				return err
			}

			if jsonOutput {
				return printJSON(map[string]interface{}{"current": target, "smooth": smoothOn})
			}
			successColor.Printf("✓ Switched to desktop %s\n", target.Label())
			return nil
		})
	},
}

func stepFromCurrent(b vd.Backend, next bool) (vd.Desktop, error) {
	desktops, current, err := vd.DesktopsWithCurrent(b)
	if err != nil {
		return vd.Desktop{}, err
	}
	if len(desktops) == 0 {
		return vd.Desktop{}, vd.ErrDesktopNotFound
	}
	delta := -1
	if next {
		delta = 1
	}
	return stepTarget(desktops, current, delta), nil
}

// MARK: - Window Commands

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Inspect and move windows",
}

// windowListCmd lists the windows filters can act on
var windowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List top-level windows and their desktops",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			e, err := a.enumerator()
			if err != nil {
				printError(err.Error())
				return err
			}
			windows, err := e.List(ctx)
			if err != nil {
				printError(fmt.Sprintf("Failed to list windows: %v", err))
				return err
			}

			if jsonOutput {
				return printJSON(windows)
			}
			output.PrintWindowsTable(os.Stdout, windows)
			infoColor.Printf("%d windows\n", len(windows))
			return nil
		})
	},
}

// windowMoveCmd moves one window to a desktop
var windowMoveCmd = &cobra.Command{
	Use:   "move <hwnd> <desktop>",
	Short: "Move a window to a desktop",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hwnd, err := parseHandle(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			d, err := resolveDesktopArg(a.backend, args[1])
			if err != nil {
				printError(err.Error())
				return err
			}
			if err := a.backend.MoveWindow(hwnd, d); err != nil {
				printError(fmt.Sprintf("Failed to move window: %v", err))
				return err
			}
			if jsonOutput {
				return printJSON(map[string]interface{}{"handle": hwnd, "desktop": d})
			}
			successColor.Printf("✓ Moved window %s to desktop %s\n", hwnd, d.Label())
			return nil
		})
	},
}

// windowPinCmd shows a window on every desktop
var windowPinCmd = &cobra.Command{
	Use:   "pin <hwnd>",
	Short: "Show a window on all desktops",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return pinCommand(cmd, args[0], true)
	},
}

// windowUnpinCmd returns a pinned window to a single desktop
var windowUnpinCmd = &cobra.Command{
	Use:   "unpin <hwnd>",
	Short: "Show a window only on its desktop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return pinCommand(cmd, args[0], false)
	},
}

func pinCommand(cmd *cobra.Command, arg string, pin bool) error {
	hwnd, err := parseHandle(arg)
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		verb := "Unpinned"
		if pin {
			verb = "Pinned"
			err = a.backend.PinWindow(hwnd)
		} else {
			err = a.backend.UnpinWindow(hwnd)
		}
		if err != nil {
			printError(fmt.Sprintf("Failed to update window %s: %v", hwnd, err))
			return err
		}
		if jsonOutput {
			return printJSON(map[string]interface{}{"handle": hwnd, "pinned": pin})
		}
		successColor.Printf("✓ %s window %s\n", verb, hwnd)
		return nil
	})
}

// MARK: - Filter Commands

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Route windows to desktops with the configured filters",
}

// filtersListCmd prints the configured rules
var filtersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rules, err := cfg.Rules()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(rules)
		}
		output.PrintRulesTable(os.Stdout, rules)
		return nil
	},
}

// filtersCheckCmd shows what apply would do
var filtersCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Show which filter matches each window without changing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			rules, err := a.rules()
			if err != nil {
				return err
			}
			e, err := a.enumerator()
			if err != nil {
				printError(err.Error())
				return err
			}
			windows, err := e.List(ctx)
			if err != nil {
				printError(fmt.Sprintf("Failed to list windows: %v", err))
				return err
			}

			decisions := filter.Evaluate(windows, rules)
			if jsonOutput {
				return printJSON(decisions)
			}
			output.PrintDecisionsTable(os.Stdout, decisions)
			infoColor.Printf("%d of %d windows matched\n", len(decisions), len(windows))
			return nil
		})
	},
}

var applyStopFlashing bool

// filtersApplyCmd moves, pins and unpins matched windows
var filtersApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply filters to all windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			rules, err := a.rules()
			if err != nil {
				return err
			}
			r, err := a.runner(nil)
			if err != nil {
				printError(err.Error())
				return err
			}

			summary, err := r.RunOnce(ctx, rules, applyOptions(a, applyStopFlashing))
			if err != nil {
				printError(fmt.Sprintf("Failed to list windows: %v", err))
				return err
			}

			if jsonOutput {
				if err := printJSON(summary); err != nil {
					return err
				}
			} else {
				printSummary(summary)
			}
			if summary.Failed() > 0 {
				return fmt.Errorf("%d windows could not be handled", summary.Failed())
			}
			return nil
		})
	},
}

// filtersStopFlashingCmd stops taskbar flashing on every window
var filtersStopFlashingCmd = &cobra.Command{
	Use:   "stop-flashing",
	Short: "Stop taskbar flashing on all windows",
	Long: `Stop taskbar flashing on all windows.

Each window is briefly hidden and shown again so its taskbar button stops
flashing, and is then kept on the desktop it was on.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			r, err := a.runner(nil)
			if err != nil {
				printError(err.Error())
				return err
			}
			if err := r.StopAllFlashing(ctx); err != nil {
				printError(fmt.Sprintf("Failed to stop flashing: %v", err))
				return err
			}
			successColor.Println("✓ Stopped flashing")
			return nil
		})
	},
}

func applyOptions(a *app, stopFlashing bool) filter.ApplyOptions {
	return filter.ApplyOptions{StopFlashing: stopFlashing || a.cfg.Settings.StopFlashingOnApply}
}

func printSummary(s filter.Summary) {
	if s.Failed() == 0 {
		successColor.Printf("✓ %s\n", s)
		return
	}
	errorColor.Printf("✗ %s\n", s)
	output.PrintFailuresTable(os.Stdout, s.Failures)
}

// MARK: - Watch Command

var (
	watchPolling bool
	watchApply   bool
)

// watchCmd follows desktop changes until interrupted
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print desktop changes as they happen",
	Long: `Prints an event each time a desktop is created, removed, renamed or switched to.
With --apply the filters run at start and again after every change; requests
that arrive while a run is in progress are merged into one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			w := watch.New(a.backend, a.state, watch.Options{
				Interval: a.cfg.GetPollInterval(),
				Polling:  watchPolling,
			})

			var submit func()
			if watchApply {
				rules, err := a.rules()
				if err != nil {
					return err
				}
				r, err := a.runner(func(s filter.Summary) {
					if jsonOutput {
						printJSONLine(map[string]interface{}{"kind": "applied", "summary": s})
						return
					}
					printSummary(s)
				})
				if err != nil {
					printError(err.Error())
					return err
				}
				go r.Run(ctx)
				opts := applyOptions(a, false)
				submit = func() { r.Submit(rules, opts) }
				submit()
			}

			if !jsonOutput {
				infoColor.Printf("Watching desktops (%s), press Ctrl+C to stop\n", w.Mode())
			}

			err := w.Run(ctx, func(e watch.Event) {
				if jsonOutput {
					printJSONLine(e)
				} else {
					printEvent(e)
					fmt.Println(output.RenderStrip(a.state.Snapshot(), output.DefaultStripOptions()))
				}
				if submit != nil {
					submit()
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	},
}

func printEvent(e watch.Event) {
	switch e.Kind {
	case watch.EventChanged:
		keyColor.Print("changed   ")
		fmt.Printf("%s -> %s\n", e.Previous.Label(), e.Desktop.Label())
	case watch.EventCreated:
		keyColor.Print("created   ")
		fmt.Printf("%s (%d desktops)\n", e.Desktop.Label(), e.Count)
	case watch.EventDestroyed:
		keyColor.Print("destroyed ")
		fmt.Printf("%s, now on %s (%d desktops)\n", e.Desktop.Label(), e.Previous.Label(), e.Count)
	case watch.EventRenamed:
		keyColor.Print("renamed   ")
		fmt.Println(e.Desktop.Label())
	}
}

// MARK: - Config Commands

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for showing, validating and creating the vdm configuration.`,
}

// configShowCmd shows current config
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return printJSON(cfg)
	},
}

// configValidateCmd validates config file
var configValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) > 0 {
			path = args[0]
		}

		cfg, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		rules, err := cfg.Rules()
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		active := 0
		for _, r := range rules {
			if r.Active() {
				active++
			}
		}

		successColor.Println("✓ Configuration is valid")
		fmt.Printf("  Filters: %d (%d active)\n", len(rules), active)
		fmt.Printf("  Smooth switch: %v\n", cfg.SmoothSwitchEnabled())
		fmt.Printf("  Poll interval: %s\n", cfg.GetPollInterval())
		return nil
	},
}

// configInitCmd creates default config
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.GetConfigPath()
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		successColor.Printf("✓ Created default config at: %s\n", path)
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: user config dir)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(backendCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(watchCmd)

	// Desktop commands
	rootCmd.AddCommand(desktopCmd)
	desktopCmd.AddCommand(desktopListCmd)
	desktopCmd.AddCommand(desktopCurrentCmd)
	desktopCmd.AddCommand(desktopCreateCmd)
	desktopCmd.AddCommand(desktopRemoveCmd)
	desktopCmd.AddCommand(desktopRenameCmd)
	desktopListCmd.Flags().BoolVar(&desktopListStrip, "strip", false, "Print desktops on one line")
	desktopRemoveCmd.Flags().StringVar(&removeFallback, "fallback", "", "Desktop that receives the removed desktop's windows")

	// Switch flags
	switchCmd.Flags().BoolVar(&switchNext, "next", false, "Switch to the next desktop")
	switchCmd.Flags().BoolVar(&switchBack, "back", false, "Switch to the previous desktop")
	switchCmd.Flags().BoolVar(&switchSmooth, "smooth", true, "Animate the switch")
	switchCmd.Flags().BoolVar(&switchNoSmooth, "no-smooth", false, "Switch without animation")

	// Window commands
	rootCmd.AddCommand(windowCmd)
	windowCmd.AddCommand(windowListCmd)
	windowCmd.AddCommand(windowMoveCmd)
	windowCmd.AddCommand(windowPinCmd)
	windowCmd.AddCommand(windowUnpinCmd)

	// Filter commands
	rootCmd.AddCommand(filtersCmd)
	filtersCmd.AddCommand(filtersListCmd)
	filtersCmd.AddCommand(filtersCheckCmd)
	filtersCmd.AddCommand(filtersApplyCmd)
	filtersCmd.AddCommand(filtersStopFlashingCmd)
	filtersApplyCmd.Flags().BoolVar(&applyStopFlashing, "stop-flashing", false, "Stop taskbar flashing on every handled window")

	// Watch flags
	watchCmd.Flags().BoolVar(&watchPolling, "polling", false, "Poll even when the backend pushes changes")
	watchCmd.Flags().BoolVar(&watchApply, "apply", false, "Apply filters at start and after every change")

	// Config commands
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)

	// Disable color if requested, enable debug logging if requested
	cobra.OnInitialize(func() {
		if noColor {
			color.NoColor = true
		}
		if debugMode {
			logging.SetDebug(true)
		}
	})
}

func main() {
	// Initialize logging
	if err := logging.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: logging disabled:", err)
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		logging.Close()
		if errors.Is(err, vd.ErrNoBackendFound) {
			os.Exit(exitNoBackend)
		}
		os.Exit(1)
	}
}

// Helper functions

func printJSON(data interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printJSONLine writes one compact JSON value per line for streaming output
func printJSONLine(data interface{}) {
	if err := json.NewEncoder(os.Stdout).Encode(data); err != nil {
		logging.Warn().Err(err).Msg("failed to encode event")
	}
}

func printError(msg string) {
	if noColor {
		fmt.Fprintln(os.Stderr, "Error:", msg)
	} else {
		errorColor.Fprint(os.Stderr, "✗ Error: ")
		fmt.Fprintln(os.Stderr, msg)
	}
}

func parseHandle(s string) (vd.WindowHandle, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid window handle %q: want a number such as 0x1A2B", s)
	}
	return vd.WindowHandle(v), nil
}
