package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/dixieflatline76/Paperize/config"
	"github.com/dixieflatline76/Paperize/pkg/alarm"
	"github.com/dixieflatline76/Paperize/pkg/catalog"
	"github.com/dixieflatline76/Paperize/pkg/display"
	"github.com/dixieflatline76/Paperize/pkg/hotkey"
	"github.com/dixieflatline76/Paperize/pkg/power"
	"github.com/dixieflatline76/Paperize/pkg/ui"
	"github.com/dixieflatline76/Paperize/pkg/wallpaper"
	"github.com/dixieflatline76/Paperize/util"
	"github.com/dixieflatline76/Paperize/util/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the wallpaper scheduler in the system tray",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.ConfigFileUsed != "" {
				log.Printf("Using config file %s", cfg.ConfigFileUsed)
			}

			ok, err := acquireLock(cfg.DataDir)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("another instance of %s is already running", config.AppName)
			}
			defer releaseLock()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a := app.NewWithID(config.AppID)
			d, err := newDaemon(ctx, cancel, cfg, a)
			if err != nil {
				return err
			}
			defer d.close()

			d.start(ctx)
			go func() {
				<-ctx.Done()
				fyne.Do(a.Quit)
			}()
			a.Run()
			return nil
		},
	}
}

// daemon is the wired scheduler behind `paperize run`.
type daemon struct {
	cfg        *config.Config
	app        fyne.App
	appCfg     *config.AppConfig
	settings   *wallpaper.Config
	store      *catalog.Store
	alarms     *alarm.Manager
	power      power.Source
	dispatcher *wallpaper.Dispatcher
	tray       *ui.Tray
}

func newDaemon(ctx context.Context, quit context.CancelFunc, cfg *config.Config, a fyne.App) (*daemon, error) {
	store, err := openCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	src, err := power.New(ctx, cfg.Power)
	if err != nil {
		store.Close()
		return nil, err
	}

	prefs := a.Preferences()
	d := &daemon{
		cfg:      cfg,
		app:      a,
		appCfg:   config.NewAppConfig(prefs),
		settings: wallpaper.NewConfig(prefs),
		store:    store,
		power:    src,
	}

	d.tray = ui.NewTray(a, !d.settings.GetEnableChanger(), ui.TrayActions{
		ChangeNow:   func() { go d.changeNow(ctx) },
		TogglePause: func() { go d.togglePause(ctx) },
		Quit:        quit,
	})

	state := wallpaper.NewStateStore(prefs)
	committer := display.NewCommitter(cfg.CacheDir)
	changer := wallpaper.NewChanger(d.settings, state, store, store, committer, wallpaper.WithCropHinter(committer))

	// Alarms are only armed by boot, after the dispatcher exists.
	d.alarms = alarm.New(ctx, func(ctx context.Context, a wallpaper.Alarm) {
		d.dispatcher.OnAlarmFired(ctx, a)
	}, alarm.WithExactPolicy(func() bool { return cfg.Alarms.Exact }))

	scheduler := wallpaper.NewScheduler(d.settings, state, d.alarms, changer, wallpaper.WithNotifier(d.tray, d.appCfg))
	deferred := wallpaper.NewDeferredStore(afero.NewOsFs(), cfg.DeferredFile)
	d.dispatcher = wallpaper.NewDispatcher(d.settings, state, scheduler, changer, deferred, src, wallpaper.WithRefresher(store))
	return d, nil
}

// start begins watching the screen, binds the hotkeys and arms the alarms.
func (d *daemon) start(ctx context.Context) {
	go func() {
		if err := d.power.Run(ctx, d.dispatcher); err != nil {
			log.Printf("[Power] %v", err)
		}
	}()

	if d.cfg.Hotkeys {
		hotkey.StartListeners(ctx, hotkey.Actions{
			ChangeNow:   func() { d.changeNow(ctx) },
			TogglePause: func() { d.togglePause(ctx) },
		})
	}

	go d.boot(ctx)

	if d.appCfg.GetUpdateCheckEnabled() {
		go d.checkForUpdates(ctx)
	}
}

func (d *daemon) boot(ctx context.Context) {
	if err := d.dispatcher.Boot(ctx, d.appCfg.IsFirstLaunch()); err != nil {
		log.Printf("Failed to arm wallpaper alarms: %v", err)
		return
	}
	d.appCfg.MarkLaunched()
	for _, p := range d.alarms.Pending() {
		log.Debugf("Pending %s alarm %s at %s", p.Kind, p.Code, p.TriggerAt.Format(time.RFC3339))
	}
}

func (d *daemon) changeNow(ctx context.Context) {
	if _, err := d.dispatcher.ChangeNow(ctx); err != nil {
		log.Printf("Change now failed: %v", err)
	}
}

func (d *daemon) togglePause(ctx context.Context) {
	enabled, err := d.dispatcher.TogglePaused(ctx)
	if err != nil {
		log.Printf("Failed to toggle pause: %v", err)
	}
	d.tray.SetPaused(!enabled)
}

func (d *daemon) checkForUpdates(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, updateCheckTimeout)
	defer cancel()
	res, err := util.CheckForUpdates(ctx, httpClient, appVersion())
	if err != nil {
		log.Debugf("Update check failed: %v", err)
		return
	}
	if res.UpdateAvailable && d.appCfg.GetAppNotificationsEnabled() {
		d.tray.Notify(config.AppName, fmt.Sprintf("Version %s is available", res.LatestVersion))
	}
}

func (d *daemon) close() {
	if err := d.power.Close(); err != nil {
		log.Debugf("[Power] close: %v", err)
	}
	if err := d.store.Close(); err != nil {
		log.Printf("Failed to close catalog: %v", err)
	}
}
