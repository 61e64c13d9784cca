// Package app wires the mpv connection, the segment worker and the playback
// controller together and runs the event loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/llehouerou/mpv-sponsorblock/internal/config"
	"github.com/llehouerou/mpv-sponsorblock/internal/controller"
	"github.com/llehouerou/mpv-sponsorblock/internal/errmsg"
	"github.com/llehouerou/mpv-sponsorblock/internal/mpv"
	"github.com/llehouerou/mpv-sponsorblock/internal/notify"
	"github.com/llehouerou/mpv-sponsorblock/internal/sponsorblock"
	"github.com/llehouerou/mpv-sponsorblock/internal/worker"
	"github.com/llehouerou/mpv-sponsorblock/internal/ytid"
)

// Observer ids of the properties the loop follows.
const (
	observeTimePos int64 = 1
	observeMute    int64 = 2
)

const readyBuffer = 8

// readiness is a finished lookup as reported by the worker.
type readiness struct {
	videoID string
	gen     uint64
}

// Options holds the optional collaborators of an App.
type Options struct {
	Logger *slog.Logger
	// Recorder receives skips for statistics; nil disables them.
	Recorder controller.Recorder
	// Desktop shows notices outside mpv when the config asks for it.
	Desktop notify.Sink
	// HTTPClient overrides the client used for segment lookups.
	HTTPClient *http.Client
}

// App reacts to one mpv instance.
type App struct {
	client     *mpv.Client
	ctrl       *controller.Controller
	worker     *worker.Worker
	matcher    *ytid.Matcher
	ready      chan readiness
	poiMessage string
	timeout    time.Duration
	log        *slog.Logger
}

// New builds the application for the player behind client.
func New(cfg *config.Config, client *mpv.Client, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	categories, err := cfg.LookupCategories()
	if err != nil {
		return nil, err
	}
	sb := sponsorblock.NewClient(sponsorblock.Options{
		ServerAddress: cfg.ServerAddress,
		Categories:    categories,
		Actions:       cfg.LookupActions(),
		PrivacyAPI:    cfg.PrivacyAPI,
		Timeout:       cfg.Timeout(),
		HTTPClient:    opts.HTTPClient,
		Logger:        log.With("component", "lookup"),
	})
	cache, err := sponsorblock.NewCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	a := &App{
		client:     client,
		matcher:    ytid.New(cfg.Domains),
		ready:      make(chan readiness, readyBuffer),
		poiMessage: cfg.POIMessage,
		timeout:    mpv.DefaultCommandTimeout,
		log:        log,
	}

	a.worker = worker.New(cache.Wrap(sb.Fetch), worker.Options{
		Timeout: cfg.Timeout(),
		Logger:  log.With("component", "worker"),
		OnReady: a.onReady,
	})

	host := mpv.NewHost(client, a.timeout, log.With("component", "mpv"))

	var sinks notify.Multi
	if cfg.UseOSD() {
		sinks = append(sinks, host)
	}
	if cfg.UseDesktop() && opts.Desktop != nil {
		sinks = append(sinks, opts.Desktop)
	}

	a.ctrl = controller.New(host, a.worker, controller.Options{
		SkipNotice: cfg.SkipNotice,
		Logger:     log.With("component", "controller"),
		Notifier:   sinks,
		Recorder:   opts.Recorder,
	})
	return a, nil
}

// Controller returns the playback controller.
func (a *App) Controller() *controller.Controller {
	return a.ctrl
}

// onReady runs on the worker goroutine and must not block.
func (a *App) onReady(videoID string, gen uint64) {
	select {
	case a.ready <- readiness{videoID: videoID, gen: gen}:
	default:
		a.log.Warn("dropping lookup notification", "video", videoID)
	}
}

// Run processes mpv events until mpv shuts down, the connection ends or
// ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.observe(ctx); err != nil {
		return err
	}
	defer a.ctrl.Unload()

	// A file may already be playing when we attach.
	a.startFile(ctx)

	events := a.client.Events()
	for {
		select {
		case <-ctx.Done():
			a.log.Debug("stopping", "reason", ctx.Err())
			return nil
		case r := <-a.ready:
			a.segmentsReady(r)
		case ev, ok := <-events:
			if !ok {
				a.log.Info("mpv connection closed")
				return nil
			}
			if !a.handle(ctx, ev) {
				return nil
			}
		}
	}
}

// segmentsReady forwards r unless a later Load or Unload has replaced the
// lookup it belongs to, which can happen when the same video is reloaded.
func (a *App) segmentsReady(r readiness) {
	if r.gen != a.worker.Generation() {
		a.log.Debug("ignoring superseded lookup", "video", r.videoID, "generation", r.gen)
		return
	}
	a.ctrl.SegmentsReady(r.videoID)
}

func (a *App) observe(ctx context.Context) error {
	props := []struct {
		id   int64
		name string
	}{
		{observeTimePos, "time-pos"},
		{observeMute, "mute"},
	}
	for _, p := range props {
		cctx, cancel := context.WithTimeout(ctx, a.timeout)
		err := a.client.ObserveProperty(cctx, p.id, p.name)
		cancel()
		if err != nil {
			return fmt.Errorf("observe %s: %w", p.name, err)
		}
	}
	return nil
}

// handle dispatches one event. It returns false when the loop should end.
func (a *App) handle(ctx context.Context, ev mpv.Event) bool {
	switch ev.Name {
	case "start-file":
		a.startFile(ctx)
	case "end-file":
		a.log.Debug("file ended", "reason", ev.Reason)
		a.ctrl.Unload()
	case "property-change":
		a.propertyChange(ev)
	case "client-message":
		if len(ev.Args) > 0 && ev.Args[0] == a.poiMessage {
			a.ctrl.RequestPointOfInterest()
		}
	case "shutdown":
		a.log.Info("mpv is shutting down")
		return false
	}
	return true
}

func (a *App) startFile(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var path string
	if err := a.client.GetProperty(cctx, "path", &path); err != nil {
		var cmdErr *mpv.CommandError
		if !errors.As(err, &cmdErr) {
			a.log.Warn(errmsg.Format(errmsg.OpReadPath, err))
		}
		a.ctrl.Unload()
		return
	}

	id, ok := a.matcher.Extract(path)
	if !ok {
		a.log.Debug("not a YouTube video", "path", path)
		a.ctrl.Unload()
		return
	}
	a.log.Info("YouTube video detected", "video", id)
	a.ctrl.Load(id)
}

func (a *App) propertyChange(ev mpv.Event) {
	switch ev.ID {
	case observeTimePos:
		if t, ok := ev.Float(); ok {
			a.ctrl.OnPosition(t)
		}
	case observeMute:
		if muted, ok := ev.Bool(); ok {
			a.ctrl.OnMuteChanged(muted)
		}
	}
}
