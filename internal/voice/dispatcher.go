package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/logger"
	"github.com/spigell/nexus/internal/settings"
)

// ScrollDirection tells the Surface where to scroll.
type ScrollDirection string

const (
	ScrollTop    ScrollDirection = "top"
	ScrollBottom ScrollDirection = "bottom"
	ScrollUp     ScrollDirection = "up"
	ScrollDown   ScrollDirection = "down"
)

// ErrUnknownSection is returned by a Surface for sections it does not have.
var ErrUnknownSection = errors.New("unknown section")

// Surface is the user interface the voice channel drives.
type Surface interface {
	Navigate(section string) error
	Scroll(direction ScrollDirection)
	SetAccessibilityPanel(open bool)
	CurrentSection() string
	OpenProfileForm()
	SaveProfile(ctx context.Context) error
	MatchJobs(ctx context.Context) error
	FilterJobs(filter string) error
}

// SettingsStore persists the accessibility settings.
// *store.Document[settings.Settings] implements it.
type SettingsStore interface {
	Load(ctx context.Context) (settings.Settings, error)
	Update(ctx context.Context, fn func(*settings.Settings) error) (settings.Settings, error)
}

// Outcome is the result of dispatching an action.
type Outcome struct {
	// Announcement is spoken after dispatch when the resolution had no
	// response of its own, or always when Force is set.
	Announcement string
	Force        bool

	StartListening bool
	StopListening  bool
}

// Handler performs one action.
type Handler func(ctx context.Context, params map[string]any) (Outcome, error)

// Dispatcher maps actions to handlers. Unknown actions are ignored.
type Dispatcher struct {
	surface  Surface
	settings SettingsStore
	speaker  Speaker
	logger   *zap.Logger

	handlers map[string]Handler
}

func NewDispatcher(surface Surface, store SettingsStore, speaker Speaker, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		surface:  surface,
		settings: store,
		speaker:  speaker,
		logger:   logger.ForComponent(log, "dispatcher"),
		handlers: make(map[string]Handler),
	}
	d.registerDefaults()
	return d
}

// Register adds or replaces the handler of action.
func (d *Dispatcher) Register(action string, handler Handler) {
	d.handlers[action] = handler
}

// Actions lists the registered action names.
func (d *Dispatcher) Actions() []string {
	out := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		out = append(out, name)
	}
	return out
}

// Dispatch runs the handler for r.Action. Handler failures are logged and
// turned into a spoken apology.
func (d *Dispatcher) Dispatch(ctx context.Context, r Resolution) Outcome {
	action := strings.TrimSpace(r.Action)
	if action == "" || action == ActionNone {
		return Outcome{}
	}

	handler, ok := d.handlers[action]
	if !ok {
		d.logger.Debug("unknown action ignored", zap.String("action", action))
		return Outcome{}
	}

	outcome, err := handler(ctx, r.Params)
	if err != nil {
		d.logger.Warn("action failed", zap.String("action", action), zap.Error(err))
		return Outcome{Announcement: MsgProcessingFail, Force: true}
	}

	d.logger.Debug("action dispatched", zap.String("action", action), zap.String("source", string(r.Source)))
	return outcome
}

type sectionParams struct {
	Section string `mapstructure:"section"`
}

type toggleParams struct {
	Value *bool `mapstructure:"value"`
}

type modeParams struct {
	Mode string `mapstructure:"mode"`
}

type filterParams struct {
	Filter string `mapstructure:"filter"`
}

// decodeParams decodes loosely typed model output, so "true" and true are
// both accepted for booleans.
func decodeParams(params map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(params); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}
