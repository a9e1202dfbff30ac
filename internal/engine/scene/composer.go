package scene

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/arscene/internal/engine/layout"
	"github.com/Faultbox/arscene/pkg/experience"
)

// Loader builds content for one asset.
type Loader interface {
	// Immediate reports whether assets of type t are built inline during
	// composition instead of on a background task.
	Immediate(t experience.AssetType) bool
	// Load builds the content. baseDir resolves relative URLs.
	Load(ctx context.Context, baseDir string, a experience.Asset) (*Content, error)
}

type loadResult struct {
	gen     uint64
	index   int
	content *Content
	err     error
}

// Composer owns the nodes of the mounted experience. All methods must be
// called from the frame thread; only load tasks run elsewhere.
type Composer struct {
	loader Loader
	params layout.Params
	log    *zap.Logger

	exp     *experience.Experience
	nodes   []*Node
	gen     uint64
	cancel  context.CancelFunc
	results chan loadResult
	pending int
}

// NewComposer creates an empty composer.
func NewComposer(loader Loader, params layout.Params, log *zap.Logger) *Composer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Composer{loader: loader, params: params, log: log}
}

// Compose discards any previous nodes and builds one node per asset of exp.
// Immediate assets get content before Compose returns; the rest are loaded
// in the background and attached by Drain.
func (c *Composer) Compose(ctx context.Context, exp *experience.Experience) {
	c.Reset()
	if exp == nil {
		return
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.exp = exp
	total := len(exp.Assets)
	c.nodes = make([]*Node, total)
	// Sized so no task ever blocks on send, even after a Reset drops the channel.
	c.results = make(chan loadResult, total)
	gen := c.gen

	for i, a := range exp.Assets {
		n := newNode(i, a, layout.Position(i, total, c.params))
		c.nodes[i] = n

		if c.loader.Immediate(a.Type) {
			content, err := safeLoad(ctx, c.loader, exp.BaseDir, a)
			c.apply(loadResult{gen: gen, index: i, content: content, err: err})
			continue
		}

		c.pending++
		go func(out chan<- loadResult, i int, a experience.Asset) {
			content, err := safeLoad(ctx, c.loader, exp.BaseDir, a)
			out <- loadResult{gen: gen, index: i, content: content, err: err}
		}(c.results, i, a)
	}

	c.log.Info("composed experience",
		zap.String("title", exp.Title),
		zap.Int("nodes", total),
		zap.Int("pending", c.pending),
		zap.Uint64("generation", gen))
}

// safeLoad turns a loader panic into an error so one bad asset cannot take
// down the frame loop.
func safeLoad(ctx context.Context, l Loader, baseDir string, a experience.Asset) (content *Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			content, err = nil, fmt.Errorf("loader panic: %v", r)
		}
	}()
	return l.Load(ctx, baseDir, a)
}

// Drain attaches every finished load. It never blocks and returns how many
// results were consumed.
func (c *Composer) Drain() int {
	n := 0
	for {
		select {
		case r := <-c.results:
			c.pending--
			c.apply(r)
			n++
		default:
			return n
		}
	}
}

func (c *Composer) apply(r loadResult) {
	if r.gen != c.gen || r.index < 0 || r.index >= len(c.nodes) {
		return
	}
	node := c.nodes[r.index]
	if r.err != nil {
		node.State = Failed
		c.log.Warn("asset load failed",
			zap.Int("index", r.index),
			zap.String("asset", node.Asset.DisplayName()),
			zap.Stringer("type", node.Asset.Type),
			zap.Error(r.err))
		return
	}
	if r.content == nil {
		node.State = Failed
		return
	}
	if node.attach(r.content) {
		c.log.Debug("asset attached",
			zap.Int("index", r.index),
			zap.String("asset", node.Asset.DisplayName()),
			zap.Int("triangles", r.content.TriangleCount()))
	}
}

// Reset drops all nodes and cancels outstanding loads. Results that arrive
// later belong to an old generation and are ignored.
func (c *Composer) Reset() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.nodes = nil
	c.results = nil
	c.pending = 0
	c.exp = nil
}

// Experience returns the composed experience, or nil.
func (c *Composer) Experience() *experience.Experience { return c.exp }

// Nodes returns the current nodes in asset order.
func (c *Composer) Nodes() []*Node { return c.nodes }

// Node returns node i, or nil when out of range.
func (c *Composer) Node(i int) *Node {
	if i < 0 || i >= len(c.nodes) {
		return nil
	}
	return c.nodes[i]
}

// Len returns the number of nodes.
func (c *Composer) Len() int { return len(c.nodes) }

// Pending returns how many background loads have not been drained yet.
func (c *Composer) Pending() int { return c.pending }

// Generation identifies the current node set; it changes on every Compose and Reset.
func (c *Composer) Generation() uint64 { return c.gen }
