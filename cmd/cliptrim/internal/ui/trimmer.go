package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"sync"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"cliptrim/cmd/cliptrim/internal/theme"
	"cliptrim/internal/config"
	"cliptrim/internal/library"
	"cliptrim/internal/logging"
	"cliptrim/internal/media"
	"cliptrim/internal/player"
	"cliptrim/internal/selection"
	"cliptrim/internal/store"
	"cliptrim/internal/thumbs"
	"cliptrim/internal/timeline"
	"cliptrim/internal/workflow"
)

// Services are the long-lived dependencies the trimmer screen drives.
// Prefs may be nil when the session store is disabled.
type Services struct {
	Config     *config.Config
	Library    *library.Library
	Prober     *media.Prober
	Thumbs     *thumbs.Generator
	Prefs      *store.Store
	Sync       *player.Synchronizer
	Model      *selection.Model
	Log        *logging.Logger
	Invalidate func()
}

type probeResult struct {
	probed media.ProbedDuration
}

// Trimmer is the main screen: workflow picker, sample library, timeline
// and transport controls.
type Trimmer struct {
	th  *theme.Theme
	svc Services
	log *logging.Logger

	timeline *timeline.Widget

	presets    map[workflow.Kind]workflow.Preset
	kinds      []workflow.Kind
	activeKind workflow.Kind
	itemCount  int
	splitOn    bool

	// Staged results from loader goroutines, applied on the next
	// frame. The selection model and synchronizer loop state are only
	// touched from the window event loop.
	mu           sync.Mutex
	status       string
	statusErr    bool
	loadGen      int
	cancel       context.CancelFunc
	source       *media.Source
	pendingProbe *probeResult
	pendingStrip *thumbs.Strip
	stripDirty   bool
	widthPx      int

	lastCommit *selection.Commit

	fileList     widget.List
	fileClicks   map[string]*widget.Clickable
	presetClicks map[workflow.Kind]*widget.Clickable
	playBtn      widget.Clickable
	muteBtn      widget.Clickable
	confirmBtn   widget.Clickable
	moreBtn      widget.Clickable
	fewerBtn     widget.Clickable
	splitBtn     widget.Clickable
}

// NewTrimmer builds the screen over the shared services.
func NewTrimmer(t *theme.Theme, svc Services) *Trimmer {
	presets := workflow.MustLoad()
	kinds := workflow.Kinds(presets)

	tr := &Trimmer{
		th:           t,
		svc:          svc,
		log:          svc.Log.WithComponent("ui"),
		presets:      presets,
		kinds:        kinds,
		activeKind:   workflow.KindVideoToVideo,
		itemCount:    1,
		widthPx:      960,
		status:       "Pick a sample to start",
		fileClicks:   make(map[string]*widget.Clickable),
		presetClicks: make(map[workflow.Kind]*widget.Clickable),
	}
	tr.fileList = widget.List{List: layout.List{Axis: layout.Vertical}}
	for _, k := range kinds {
		tr.presetClicks[k] = new(widget.Clickable)
	}
	if p, ok := presets[tr.activeKind]; ok {
		tr.itemCount = p.DefaultItems
	}

	tr.timeline = timeline.NewWidget(svc.Model, svc.Sync, func(sel selection.Selection) {
		tr.setStatus(fmt.Sprintf("Selection %.2fs – %.2fs", sel.StartOffset, sel.End()), false)
	})
	tr.timeline.SetPalette(timelinePalette(t))

	tr.restorePrefs()
	return tr
}

func timelinePalette(t *theme.Theme) timeline.Palette {
	p := timeline.DefaultPalette()
	p.SelectionBorder = t.Palette.Primary
	p.Handle = t.Palette.Primary
	p.PlayheadActive = t.Palette.Accent
	return p
}

func (t *Trimmer) restorePrefs() {
	if t.svc.Prefs == nil {
		return
	}
	if v, err := t.svc.Prefs.GetPref(store.PrefMuted, "0"); err == nil && v == "1" {
		t.svc.Sync.SetMuted(true)
	}
}

func (t *Trimmer) setStatus(msg string, isErr bool) {
	t.mu.Lock()
	t.status = msg
	t.statusErr = isErr
	t.mu.Unlock()
	if t.svc.Invalidate != nil {
		t.svc.Invalidate()
	}
}

// Open starts loading a source, cancelling any load in flight.
func (t *Trimmer) Open(src *media.Source) {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.loadGen++
	gen := t.loadGen
	t.status = "Loading " + filepath.Base(src.URL)
	t.statusErr = false
	width := t.widthPx
	t.mu.Unlock()

	go t.load(ctx, gen, src, width)
}

func (t *Trimmer) load(ctx context.Context, gen int, src *media.Source, widthPx int) {
	if t.svc.Invalidate != nil {
		defer t.svc.Invalidate()
	}

	if err := src.Resolve(ctx, nil); err != nil {
		t.loadFailed(gen, src, err)
		return
	}
	probed, err := t.svc.Prober.Probe(ctx, src)
	if err != nil {
		t.loadFailed(gen, src, err)
		return
	}

	t.mu.Lock()
	if gen != t.loadGen {
		t.mu.Unlock()
		src.Close()
		return
	}
	if t.source != nil {
		t.source.Close()
	}
	t.source = src
	t.pendingProbe = &probeResult{probed: probed}
	t.pendingStrip = nil
	t.stripDirty = true
	t.status = fmt.Sprintf("%s · %.2fs", filepath.Base(src.URL), probed.Seconds)
	t.statusErr = false
	t.mu.Unlock()
	if t.svc.Invalidate != nil {
		t.svc.Invalidate()
	}

	strip, err := t.svc.Thumbs.Generate(ctx, src, probed, widthPx)
	if err != nil {
		// Stripless fallback: the gradient track stays up.
		t.log.Warn("thumbnail strip unavailable", "source", src.URL, "error", err)
		return
	}

	t.mu.Lock()
	if gen != t.loadGen {
		t.mu.Unlock()
		return
	}
	t.pendingStrip = strip
	t.stripDirty = true
	t.mu.Unlock()
}

func (t *Trimmer) loadFailed(gen int, src *media.Source, err error) {
	src.Close()
	t.mu.Lock()
	stale := gen != t.loadGen
	if !stale {
		t.status = "Load failed: " + err.Error()
		t.statusErr = true
	}
	t.mu.Unlock()
	if !stale {
		t.log.Error("source load failed", "source", src.URL, "error", err)
	}
}

// applyStaged moves loader results into the model on the event loop.
func (t *Trimmer) applyStaged() {
	t.mu.Lock()
	p := t.pendingProbe
	t.pendingProbe = nil
	s := t.pendingStrip
	dirty := t.stripDirty
	t.stripDirty = false
	t.mu.Unlock()

	if p != nil {
		t.svc.Model.SetSource(p.probed.Seconds)
		t.svc.Sync.SetSourceDuration(p.probed.Seconds)
		t.svc.Model.SetConstraints(t.itemCount, t.splitOn)
		t.timeline.ApplyModel()
		t.svc.Sync.SeekTo(t.svc.Model.Selection().StartOffset)
	}
	if dirty {
		t.timeline.SetStrip(s)
	}
}

func (t *Trimmer) handleInput(gtx layout.Context) {
	if t.playBtn.Clicked(gtx) {
		if err := t.svc.Sync.Toggle(); err != nil {
			t.setStatus("Playback refused: "+err.Error(), true)
		}
	}
	if t.muteBtn.Clicked(gtx) {
		muted := !t.svc.Sync.Muted()
		t.svc.Sync.SetMuted(muted)
		if t.svc.Prefs != nil {
			v := "0"
			if muted {
				v = "1"
			}
			if err := t.svc.Prefs.SetPref(store.PrefMuted, v); err != nil {
				t.log.Warn("persist mute pref", "error", err)
			}
		}
	}
	if t.moreBtn.Clicked(gtx) {
		t.setItemCount(t.itemCount + 1)
	}
	if t.fewerBtn.Clicked(gtx) {
		t.setItemCount(t.itemCount - 1)
	}
	if t.splitBtn.Clicked(gtx) {
		t.toggleSplit()
	}
	if t.confirmBtn.Clicked(gtx) {
		t.confirm()
	}
	for _, k := range t.kinds {
		if t.presetClicks[k].Clicked(gtx) {
			t.selectPreset(k)
		}
	}
}

func (t *Trimmer) preset() workflow.Preset {
	return t.presets[t.activeKind]
}

func (t *Trimmer) setItemCount(n int) {
	p := t.preset()
	lo, hi := 1, t.svc.Config.Trimmer.MaxItems
	if p.SupportsSplit {
		lo, hi = p.MinItems, min(p.MaxItems, hi)
	}
	if n < lo {
		n = lo
	}
	if n > hi {
		n = hi
	}
	if n == t.itemCount {
		return
	}
	t.itemCount = n
	if t.splitOn && !t.svc.Model.CanEnableSplitMode(n) {
		t.splitOn = false
	}
	t.svc.Model.SetConstraints(t.itemCount, t.splitOn)
	t.timeline.ApplyModel()
}

func (t *Trimmer) toggleSplit() {
	p := t.preset()
	if !p.SupportsSplit {
		return
	}
	if !t.splitOn && !t.svc.Model.CanEnableSplitMode(t.itemCount) {
		t.setStatus(fmt.Sprintf("Source too short to split into %d clips", t.itemCount), true)
		return
	}
	t.splitOn = !t.splitOn
	t.svc.Model.SetConstraints(t.itemCount, t.splitOn)
	t.timeline.ApplyModel()
}

func (t *Trimmer) selectPreset(k workflow.Kind) {
	if k == t.activeKind {
		return
	}
	t.activeKind = k
	p := t.preset()
	t.itemCount = p.DefaultItems
	if t.itemCount < 1 {
		t.itemCount = 1
	}
	if !p.SupportsSplit {
		t.splitOn = false
	}
	t.svc.Model.SetConstraints(t.itemCount, t.splitOn)
	t.timeline.ApplyModel()
}

func (t *Trimmer) confirm() {
	t.mu.Lock()
	src := t.source
	t.mu.Unlock()
	if src == nil {
		t.setStatus("Nothing to trim yet", true)
		return
	}

	c := t.svc.Model.Commit()
	t.lastCommit = &c

	t.svc.Sync.Pause()
	if t.svc.Prefs != nil {
		if err := t.svc.Prefs.SetPref(store.PrefLastSource, src.URL); err != nil {
			t.log.Warn("persist last source", "error", err)
		}
	}

	if c.SplitMode {
		t.setStatus(fmt.Sprintf("Trim confirmed: %.2fs from %.2fs, %d clips of %.2fs",
			c.Duration, c.StartOffset, c.ItemCount, c.PerItemDuration), false)
	} else {
		t.setStatus(fmt.Sprintf("Trim confirmed: %.2fs from %.2fs", c.Duration, c.StartOffset), false)
	}
	t.log.Info("trim confirmed",
		"source", src.URL,
		"start", c.StartOffset,
		"duration", c.Duration,
		"split", c.SplitMode,
		"items", c.ItemCount)
}

// LastCommit returns the most recent confirmed trim, if any.
func (t *Trimmer) LastCommit() *selection.Commit {
	return t.lastCommit
}

// Layout renders the screen.
func (t *Trimmer) Layout(gtx layout.Context) layout.Dimensions {
	t.applyStaged()
	t.handleInput(gtx)

	paint.Fill(gtx.Ops, t.th.Palette.Background)

	return layout.Flex{
		Axis: layout.Horizontal,
	}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X = gtx.Dp(240)
			gtx.Constraints.Max.X = gtx.Dp(240)
			return t.layoutSidebar(gtx)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			size := image.Pt(gtx.Dp(1), gtx.Constraints.Max.Y)
			rect := clip.Rect{Max: size}.Op()
			paint.FillShape(gtx.Ops, t.th.Palette.Border, rect)
			return layout.Dimensions{Size: size}
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return t.layoutContent(gtx)
		}),
	)
}

func (t *Trimmer) layoutSidebar(gtx layout.Context) layout.Dimensions {
	return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				title := material.H6(t.th.Theme, "CLIPTRIM")
				title.Color = t.th.Palette.Primary
				title.TextSize = t.th.Config.FontTitle
				return title.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(24)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutPresets(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(24)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				l := material.Body2(t.th.Theme, "Samples")
				l.Color = t.th.Palette.TextMuted
				return l.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return t.layoutLibrary(gtx)
			}),
		)
	})
}

func (t *Trimmer) layoutPresets(gtx layout.Context) layout.Dimensions {
	children := make([]layout.FlexChild, 0, len(t.kinds)*2)
	for _, k := range t.kinds {
		k := k
		p := t.presets[k]
		children = append(children,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				btn := material.Button(t.th.Theme, t.presetClicks[k], p.Title)
				btn.CornerRadius = t.th.Config.CornerRadius
				if k == t.activeKind {
					btn.Background = t.th.Palette.Primary
				} else {
					btn.Background = t.th.Palette.Panel
				}
				return btn.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: t.th.Config.Spacing}.Layout),
		)
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

func (t *Trimmer) layoutLibrary(gtx layout.Context) layout.Dimensions {
	files := t.svc.Library.Files()
	if len(files) == 0 {
		l := material.Caption(t.th.Theme, "No samples found")
		l.Color = t.th.Palette.TextMuted
		return l.Layout(gtx)
	}

	for _, f := range files {
		if _, ok := t.fileClicks[f]; !ok {
			t.fileClicks[f] = new(widget.Clickable)
		}
	}

	list := material.List(t.th.Theme, &t.fileList)
	return list.Layout(gtx, len(files), func(gtx layout.Context, i int) layout.Dimensions {
		path := files[i]
		click := t.fileClicks[path]
		if click.Clicked(gtx) {
			t.Open(&media.Source{Kind: media.KindSample, URL: path})
		}
		return click.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Top: unit.Dp(6), Bottom: unit.Dp(6)}.Layout(gtx,
				func(gtx layout.Context) layout.Dimensions {
					l := material.Body2(t.th.Theme, filepath.Base(path))
					l.Color = t.th.Palette.Text
					return l.Layout(gtx)
				})
		})
	})
}

func (t *Trimmer) layoutContent(gtx layout.Context) layout.Dimensions {
	t.mu.Lock()
	t.widthPx = gtx.Constraints.Max.X - 2*gtx.Dp(t.th.Config.Padding)
	status := t.status
	statusErr := t.statusErr
	t.mu.Unlock()

	return layout.UniformInset(t.th.Config.Padding).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				h := material.H5(t.th.Theme, t.preset().Title)
				h.Color = t.th.Palette.Text
				return h.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
			layout.Rigid(t.timeline.Layout),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutTransport(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutSelectionInfo(gtx)
			}),
			layout.Flexed(1, layout.Spacer{}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				l := material.Caption(t.th.Theme, status)
				if statusErr {
					l.Color = t.th.Palette.Error
				} else {
					l.Color = t.th.Palette.TextMuted
				}
				return l.Layout(gtx)
			}),
		)
	})
}

func (t *Trimmer) layoutTransport(gtx layout.Context) layout.Dimensions {
	playLabel := "Play"
	if t.svc.Sync.Playing() {
		playLabel = "Pause"
	}
	muteLabel := "Mute"
	if t.svc.Sync.Muted() {
		muteLabel = "Unmute"
	}
	p := t.preset()
	splitLabel := "Split Off"
	if t.splitOn {
		splitLabel = "Split On"
	}

	spacer := layout.Rigid(layout.Spacer{Width: t.th.Config.Spacing}.Layout)
	children := []layout.FlexChild{
		layout.Rigid(t.button(&t.playBtn, playLabel, t.th.Palette.Primary)),
		spacer,
		layout.Rigid(t.button(&t.muteBtn, muteLabel, t.th.Palette.Panel)),
		spacer,
	}
	if p.SupportsSplit {
		children = append(children,
			layout.Rigid(t.button(&t.fewerBtn, "−", t.th.Palette.Panel)),
			spacer,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				l := material.Body1(t.th.Theme, fmt.Sprintf("%d clips", t.itemCount))
				l.Color = t.th.Palette.Text
				return layout.Inset{Top: unit.Dp(8)}.Layout(gtx, l.Layout)
			}),
			spacer,
			layout.Rigid(t.button(&t.moreBtn, "+", t.th.Palette.Panel)),
			spacer,
			layout.Rigid(t.button(&t.splitBtn, splitLabel, t.th.Palette.Panel)),
			spacer,
		)
	}
	children = append(children,
		layout.Flexed(1, layout.Spacer{}.Layout),
		layout.Rigid(t.button(&t.confirmBtn, "Confirm Trim", t.th.Palette.Success)),
	)

	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, children...)
}

func (t *Trimmer) button(c *widget.Clickable, label string, bg color.NRGBA) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		btn := material.Button(t.th.Theme, c, label)
		btn.CornerRadius = t.th.Config.CornerRadius
		btn.Background = bg
		return btn.Layout(gtx)
	}
}

func (t *Trimmer) layoutSelectionInfo(gtx layout.Context) layout.Dimensions {
	sel := t.svc.Model.Selection()
	c := t.svc.Model.Constraints()
	txt := fmt.Sprintf("%.2fs – %.2fs  ·  %.2fs of %.2fs  ·  bounds %.2f–%.2fs step %.2fs",
		sel.StartOffset, sel.End(), sel.Duration, t.svc.Model.SourceDuration(), c.Min, c.Max, c.Step)
	l := material.Caption(t.th.Theme, txt)
	l.Color = t.th.Palette.TextMuted
	return l.Layout(gtx)
}

// Close tears down the loader and current source.
func (t *Trimmer) Close() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	src := t.source
	t.source = nil
	t.mu.Unlock()
	if src != nil {
		src.Close()
	}
}
