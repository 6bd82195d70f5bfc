package scanner

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/scandoo/scandoo/internal/models"
	"github.com/scandoo/scandoo/internal/utils"
)

// State enumerates the controller states.
type State string

const (
	// StateScanning means the camera is active and awaiting a detected code.
	StateScanning State = "scanning"
	// StateResolving means a lookup is in flight and the camera is paused.
	StateResolving State = "resolving"
	// StateShowingProduct means the last lookup succeeded.
	StateShowingProduct State = "showing_product"
	// StateShowingNotFound means the last lookup found no record; the create
	// flow is offered.
	StateShowingNotFound State = "showing_not_found"
	// StateShowingError means the last lookup failed for a non-NotFound reason.
	StateShowingError State = "showing_error"
	// StateEditing means the create/edit form is open and the camera is paused.
	StateEditing State = "editing"
)

// ProductAPI is the repository surface the controller resolves codes
// against. Satisfied by the HTTP client adapter in cmd/scanner and by fakes
// in tests.
type ProductAPI interface {
	FetchByCode(ctx context.Context, code string) (*models.Product, error)
	Create(ctx context.Context, title, code string, price float64) (*models.Product, error)
	UpdateByCode(ctx context.Context, code, title, newCode string, price float64) (*models.Product, error)
}

// Snapshot is the render-ready view of the controller state. Exactly one of
// Product-present and ScannedCode-present holds; both empty means nothing
// has been resolved yet.
type Snapshot struct {
	State       State
	Product     *models.Product
	ScannedCode string
	Err         string
}

// Controller coordinates the camera, code lookups, and the create/edit form.
// It owns the camera pause/resume lifecycle and tolerates late-arriving
// lookup responses: each lookup carries a sequence token, and a result is
// applied only if its token is still the latest issued one.
type Controller struct {
	mu       sync.Mutex
	api      ProductAPI
	detector CodeDetector

	state     State
	prevState State // state to restore on form cancel
	product   *models.Product
	code      string // last scanned/searched code pending creation
	errMsg    string
	seq       uint64 // token of the latest issued lookup
}

// NewController creates a Controller in the Scanning state.
func NewController(api ProductAPI, detector CodeDetector) *Controller {
	return &Controller{
		api:      api,
		detector: detector,
		state:    StateScanning,
	}
}

// Snapshot returns the current render state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:       c.state,
		Product:     c.product,
		ScannedCode: c.code,
		Err:         c.errMsg,
	}
}

// CodeDetected handles a code decoded by the camera. Detections arriving
// outside the Scanning state are ignored; the camera is paused while a
// lookup is in flight, so there is no queuing.
func (c *Controller) CodeDetected(code string) {
	c.mu.Lock()
	if c.state != StateScanning || code == "" {
		c.mu.Unlock()
		return
	}
	token := c.beginResolve(code)
	c.mu.Unlock()

	go c.lookup(token, code, nil)
}

// ManualSearch resolves a manually entered code. An empty or whitespace
// code is a no-op: no lookup, no state change, no callback. The done
// callback, if non-nil, fires exactly once when resolution finishes so
// the initiator can reset its own searching affordance; it fires even when
// the result arrives stale and is discarded.
func (c *Controller) ManualSearch(code string, done func()) {
	code = strings.TrimSpace(code)
	if code == "" {
		return
	}

	c.mu.Lock()
	if c.state == StateResolving || c.state == StateEditing {
		// Single in-flight lookup; no queuing behind the form either.
		c.mu.Unlock()
		if done != nil {
			done()
		}
		return
	}
	token := c.beginResolve(code)
	c.mu.Unlock()

	go c.lookup(token, code, done)
}

// beginResolve issues a new lookup token and moves to Resolving.
// Caller must hold c.mu.
func (c *Controller) beginResolve(code string) uint64 {
	c.seq++
	c.state = StateResolving
	c.detector.Pause()
	log.Debug().Str("code", code).Uint64("token", c.seq).Msg("lookup started")
	return c.seq
}

// lookup performs the fetch and applies the outcome.
func (c *Controller) lookup(token uint64, code string, done func()) {
	p, err := c.api.FetchByCode(context.Background(), code)
	c.apply(token, code, p, err)
	if done != nil {
		done()
	}
}

// apply installs a lookup outcome, unless the token has been superseded by
// a newer lookup or a camera toggle. Stale outcomes are discarded without
// touching state.
func (c *Controller) apply(token uint64, code string, p *models.Product, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.seq {
		log.Debug().Str("code", code).Uint64("token", token).Uint64("current", c.seq).
			Msg("stale lookup result discarded")
		return
	}

	switch {
	case err == nil:
		c.state = StateShowingProduct
		c.product = p
		c.code = ""
		c.errMsg = ""
	case errors.Is(err, utils.ErrNotFound):
		// Expected outcome, not an error: offer the create flow.
		c.state = StateShowingNotFound
		c.product = nil
		c.code = code
		c.errMsg = ""
	default:
		c.state = StateShowingError
		c.product = nil
		c.code = ""
		c.errMsg = err.Error()
	}
	log.Debug().Str("state", string(c.state)).Str("code", code).Msg("lookup resolved")
}

// ToggleCamera returns to Scanning from any state and resumes the camera.
// Any in-flight lookup is invalidated so its late response cannot be
// applied. The last fetched product is kept as a display-only cached copy.
func (c *Controller) ToggleCamera() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++ // invalidate in-flight lookups
	c.state = StateScanning
	c.code = ""
	c.errMsg = ""
	c.detector.Resume()
}

// Retry clears the error after a failed lookup and resumes scanning. It is
// only meaningful in the ShowingError state.
func (c *Controller) Retry() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateShowingError {
		return
	}
	c.state = StateScanning
	c.errMsg = ""
	c.detector.Resume()
}

// OpenForm opens the create form (from ShowingNotFound) or the edit form
// (from ShowingProduct). The camera remains paused.
func (c *Controller) OpenForm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateShowingProduct && c.state != StateShowingNotFound {
		return
	}
	c.prevState = c.state
	c.state = StateEditing
}

// CancelForm discards form edits and restores the prior non-editing state.
func (c *Controller) CancelForm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateEditing {
		return
	}
	c.state = c.prevState
}

// SubmitForm validates the form fields and performs the create or update.
// Field errors are returned without calling the API and leave the form
// open; so do API failures. On success the returned record becomes the
// displayed product and any pending code is cleared.
func (c *Controller) SubmitForm(ctx context.Context, title, code, priceText string) error {
	title = strings.TrimSpace(title)
	code = strings.TrimSpace(code)

	if title == "" {
		return errors.New("Title is required")
	}
	if code == "" {
		return errors.New("Code is required")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(priceText), 64)
	if err != nil || price < 0 {
		return errors.New("Please enter a valid price")
	}

	c.mu.Lock()
	if c.state != StateEditing {
		c.mu.Unlock()
		return errors.New("no form is open")
	}
	existing := c.product
	editing := c.prevState == StateShowingProduct && existing != nil
	c.mu.Unlock()

	var p *models.Product
	if editing {
		p, err = c.api.UpdateByCode(ctx, existing.Code, title, code, price)
	} else {
		p, err = c.api.Create(ctx, title, code, price)
	}
	if err != nil {
		log.Warn().Err(err).Str("code", code).Msg("form submit failed")
		return err
	}

	c.mu.Lock()
	c.state = StateShowingProduct
	c.product = p
	c.code = ""
	c.errMsg = ""
	c.mu.Unlock()
	return nil
}
